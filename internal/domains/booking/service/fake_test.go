package service_test

import (
	"context"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"roombooking/internal/domains/booking/event"
	"roombooking/internal/domains/booking/model"
	photoModel "roombooking/internal/domains/photo/model"
	"roombooking/shared/constant"
	gDto "roombooking/shared/dto"
)

// args flattens a filter group the same way the sql layer binds it.
func args(filter gDto.FilterGroup) map[string]any {
	_, bound := filter.GetWhereClause()

	return bound
}

type fakeBookings struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]model.Booking
	rooms  map[int64]string
	users  map[int64]string
}

func newFakeBookings() *fakeBookings {
	return &fakeBookings{
		rows:  map[int64]model.Booking{},
		rooms: map[int64]string{1: "Orchid", 2: "Lotus"},
		users: map[int64]string{1: "Alice", 2: "Bob"},
	}
}

func (f *fakeBookings) InsertReturningIDTx(_ context.Context, _ *sqlx.Tx, booking model.Booking) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.rooms[booking.RoomID]; !ok {
		return 0, &pq.Error{Code: pq.ErrorCode(constant.PqErrorCodeFkViolation)}
	}

	if _, ok := f.users[booking.UserID]; !ok {
		return 0, &pq.Error{Code: pq.ErrorCode(constant.PqErrorCodeFkViolation)}
	}

	f.nextID++
	booking.ID = f.nextID
	f.rows[booking.ID] = booking

	return booking.ID, nil
}

func (f *fakeBookings) Get(_ context.Context, filter gDto.FilterGroup, _ ...string) (model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	matched := f.match(args(filter))
	if len(matched) == 0 {
		return model.Booking{}, nil
	}

	return matched[0], nil
}

func (f *fakeBookings) GetTx(ctx context.Context, _ *sqlx.Tx, filter gDto.FilterGroup) (model.Booking, error) {
	return f.Get(ctx, filter)
}

func (f *fakeBookings) GetAll(_ context.Context, _ gDto.QueryParams, filter gDto.FilterGroup, _ ...string) ([]model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.match(args(filter)), nil
}

func (f *fakeBookings) Exist(_ context.Context, filter gDto.FilterGroup) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.match(args(filter))) > 0, nil
}

func (f *fakeBookings) UpdateCount(_ context.Context, req map[string]any, filter gDto.FilterGroup) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	matched := f.match(args(filter))
	for _, booking := range matched {
		current := f.rows[booking.ID]
		apply(&current, req)
		f.rows[booking.ID] = current
	}

	return int64(len(matched)), nil
}

func (f *fakeBookings) UpdateCountTx(ctx context.Context, _ *sqlx.Tx, req map[string]any, filter gDto.FilterGroup) (int64, error) {
	return f.UpdateCount(ctx, req, filter)
}

func (f *fakeBookings) DeleteCountTx(_ context.Context, _ *sqlx.Tx, filter gDto.FilterGroup) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	matched := f.match(args(filter))
	for _, booking := range matched {
		delete(f.rows, booking.ID)
	}

	return int64(len(matched)), nil
}

func (f *fakeBookings) match(bound map[string]any) []model.Booking {
	ids := make([]int64, 0, len(f.rows))
	for id := range f.rows {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	res := []model.Booking{}

	for _, id := range ids {
		booking := f.rows[id]
		if !matches(booking, bound) {
			continue
		}

		if name, ok := f.rooms[booking.RoomID]; ok {
			booking.RoomName = &name
		}

		if name, ok := f.users[booking.UserID]; ok {
			booking.UserName = &name
		}

		res = append(res, booking)
	}

	return res
}

func matches(booking model.Booking, bound map[string]any) bool {
	for key, value := range bound {
		switch key {
		case model.FieldID:
			if value != booking.ID {
				return false
			}
		case model.FieldUserID:
			if value != booking.UserID {
				return false
			}
		case model.FieldRoomID:
			if value != booking.RoomID {
				return false
			}
		case model.FieldStatus:
			if value != booking.Status && value != booking.Status.String() {
				return false
			}
		case model.ArgExpectedVersion:
			if value != booking.Version {
				return false
			}
		}
	}

	return true
}

func apply(booking *model.Booking, fields map[string]any) {
	for key, value := range fields {
		switch key {
		case model.FieldRoomID:
			booking.RoomID = value.(int64)
		case model.FieldUserID:
			booking.UserID = value.(int64)
		case model.FieldBookingDate:
			booking.BookingDate = value.(time.Time)
		case model.FieldStartTime:
			booking.StartTime = value.(string)
		case model.FieldEndTime:
			booking.EndTime = value.(string)
		case model.FieldPurpose:
			booking.Purpose = value.(string)
		case model.FieldStatus:
			booking.Status = value.(model.Status)
		case model.FieldCheckinTime:
			booking.CheckinTime = timePtr(value)
		case model.FieldCheckoutTime:
			booking.CheckoutTime = timePtr(value)
		case model.FieldLocationGPS:
			booking.LocationGPS = value.(string)
		case model.FieldIsPresent:
			booking.IsPresent = value.(bool)
		case model.FieldRoomPhotoURL:
			booking.RoomPhotoURL = value.(*string)
		case model.FieldVersion:
			booking.Version = value.(int64)
		case model.FieldCreatedAt:
			booking.CreatedAt = value.(time.Time)
		}
	}
}

func timePtr(value any) *time.Time {
	switch v := value.(type) {
	case time.Time:
		return &v
	case *time.Time:
		return v
	default:
		return nil
	}
}

type fakePhotos struct {
	mu     sync.Mutex
	nextID int64
	rows   []photoModel.Photo
	// insertErr fails every transactional insert when set.
	insertErr error
}

func (f *fakePhotos) insert(photo photoModel.Photo) int64 {
	f.nextID++
	photo.ID = f.nextID
	f.rows = append(f.rows, photo)

	return photo.ID
}

func (f *fakePhotos) InsertReturningID(_ context.Context, photo photoModel.Photo) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.insert(photo), nil
}

func (f *fakePhotos) InsertTx(_ context.Context, _ *sqlx.Tx, photo photoModel.Photo) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.insertErr != nil {
		return f.insertErr
	}

	f.insert(photo)

	return nil
}

func (f *fakePhotos) InsertBulkTx(_ context.Context, _ *sqlx.Tx, photos []photoModel.Photo) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, photo := range photos {
		f.insert(photo)
	}

	return nil
}

func (f *fakePhotos) Get(_ context.Context, filter gDto.FilterGroup, _ ...string) (photoModel.Photo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, photo := range f.rows {
		if photoMatches(photo, args(filter)) {
			return photo, nil
		}
	}

	return photoModel.Photo{}, nil
}

func (f *fakePhotos) GetAll(_ context.Context, _ gDto.QueryParams, filter gDto.FilterGroup, _ ...string) ([]photoModel.Photo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	res := []photoModel.Photo{}

	for _, photo := range f.rows {
		if photoMatches(photo, args(filter)) {
			res = append(res, photo)
		}
	}

	return res, nil
}

func (f *fakePhotos) Delete(_ context.Context, filter gDto.FilterGroup) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	kept := f.rows[:0]

	for _, photo := range f.rows {
		if !photoMatches(photo, args(filter)) {
			kept = append(kept, photo)
		}
	}

	f.rows = kept

	return nil
}

func (f *fakePhotos) DeleteTx(ctx context.Context, _ *sqlx.Tx, filter gDto.FilterGroup) error {
	return f.Delete(ctx, filter)
}

// photoMatches understands equality on id and booking_id plus the expanded booking_id_N binds of an IN filter.
func photoMatches(photo photoModel.Photo, bound map[string]any) bool {
	var (
		inList bool
		inHit  bool
	)

	for key, value := range bound {
		switch {
		case key == photoModel.FieldID:
			if value != photo.ID {
				return false
			}
		case key == photoModel.FieldBookingID:
			if value != photo.BookingID {
				return false
			}
		case strings.HasPrefix(key, photoModel.FieldBookingID+"_"):
			inList = true

			if value == photo.BookingID {
				inHit = true
			}
		}
	}

	return !inList || inHit
}

// snapshotTransactor restores both fakes when fn fails, the way a rollback would.
type snapshotTransactor struct {
	bookings *fakeBookings
	photos   *fakePhotos
}

func (s snapshotTransactor) WithTransaction(_ context.Context, fn func(tx *sqlx.Tx) error) error {
	bookings := s.bookings.snapshot()
	photos := s.photos.snapshot()

	if err := fn(nil); err != nil {
		s.bookings.restore(bookings)
		s.photos.restore(photos)

		return err
	}

	return nil
}

func (f *fakeBookings) snapshot() map[int64]model.Booking {
	f.mu.Lock()
	defer f.mu.Unlock()

	return maps.Clone(f.rows)
}

func (f *fakeBookings) restore(rows map[int64]model.Booking) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.rows = rows
}

func (f *fakePhotos) snapshot() []photoModel.Photo {
	f.mu.Lock()
	defer f.mu.Unlock()

	return slices.Clone(f.rows)
}

func (f *fakePhotos) restore(rows []photoModel.Photo) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.rows = rows
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []event.BookingEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e event.BookingEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, e)
}

func (p *recordingPublisher) types() []event.Type {
	p.mu.Lock()
	defer p.mu.Unlock()

	res := make([]event.Type, len(p.events))
	for i, e := range p.events {
		res[i] = e.Type
	}

	return res
}
