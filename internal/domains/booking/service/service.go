package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"
	"maps"
	"roombooking/config"
	"roombooking/infras/otel"
	"roombooking/infras/postgres"
	"roombooking/internal/domains/booking/event"
	"roombooking/internal/domains/booking/export"
	"roombooking/internal/domains/booking/model"
	"roombooking/internal/domains/booking/model/dto"
	"roombooking/internal/domains/booking/repository"
	photoModel "roombooking/internal/domains/photo/model"
	photoRepo "roombooking/internal/domains/photo/repository"
	"roombooking/shared"
	"roombooking/shared/constant"
	gDto "roombooking/shared/dto"
	"roombooking/shared/failure"
	"roombooking/shared/timezone"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

type Booking interface {
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) ([]dto.BookingResponse, error)
	Get(ctx context.Context, id int64) (dto.BookingResponse, error)
	GetByUser(ctx context.Context, userID int64) ([]dto.BookingResponse, error)
	GetByRoom(ctx context.Context, roomID int64) ([]dto.BookingResponse, error)
	Create(ctx context.Context, req dto.CreateBookingRequest) (dto.BookingResponse, error)
	Update(ctx context.Context, id int64, req dto.UpdateBookingRequest) error
	Delete(ctx context.Context, id int64) error
	Approve(ctx context.Context, id int64, req dto.NoteRequest) (dto.BookingResponse, error)
	Reject(ctx context.Context, id int64, req dto.NoteRequest) (dto.BookingResponse, error)
	Checkin(ctx context.Context, id int64, req dto.CheckinRequest) (dto.BookingResponse, error)
	Checkout(ctx context.Context, id int64, req dto.CheckoutRequest) (dto.BookingResponse, error)
	Export(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) ([]byte, error)
}

type serviceImpl struct {
	repo       repository.Booking
	photoRepo  photoRepo.Photo
	transactor postgres.Transactor
	publisher  event.Publisher
	cfg        *config.Config
	otel       otel.Otel
}

func New(
	repo repository.Booking,
	photoRepo photoRepo.Photo,
	transactor postgres.Transactor,
	publisher event.Publisher,
	cfg *config.Config,
	otel otel.Otel,
) Booking {
	return &serviceImpl{
		repo:       repo,
		photoRepo:  photoRepo,
		transactor: transactor,
		publisher:  publisher,
		cfg:        cfg,
		otel:       otel,
	}
}

func notFound(id int64) error {
	return failure.NotFound(fmt.Sprintf("Booking with ID %d not found", id))
}

func concurrentModification(id int64) error {
	return failure.Conflict(fmt.Sprintf("Booking with ID %d was modified concurrently, reload and retry", id))
}

func (s *serviceImpl) GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (res []dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer scope.TraceIfError(&err)

	params.Sanitize(model.SortColumns, model.SortColumns[model.FieldID])

	return s.list(ctx, params, filter)
}

func (s *serviceImpl) GetByUser(ctx context.Context, userID int64) (res []dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetByUser")
	defer scope.End()
	defer scope.TraceIfError(&err)

	params := gDto.QueryParams{SortBy: model.SortColumns[model.FieldID], SortDir: gDto.SortDirAsc}

	return s.list(ctx, params, shared.FilterByID(userID, model.FieldUserID, model.TableName))
}

func (s *serviceImpl) GetByRoom(ctx context.Context, roomID int64) (res []dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetByRoom")
	defer scope.End()
	defer scope.TraceIfError(&err)

	params := gDto.QueryParams{SortBy: model.SortColumns[model.FieldID], SortDir: gDto.SortDirAsc}

	return s.list(ctx, params, shared.FilterByID(roomID, model.FieldRoomID, model.TableName))
}

func (s *serviceImpl) list(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) ([]dto.BookingResponse, error) {
	bookings, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return nil, fmt.Errorf("failed to get bookings: %w", err)
	}

	ids := make([]int64, len(bookings))
	for i, booking := range bookings {
		ids[i] = booking.ID
	}

	photos, err := s.photosOf(ctx, ids)
	if err != nil {
		return nil, err
	}

	return dto.FromModels(bookings, photos), nil
}

func (s *serviceImpl) photosOf(ctx context.Context, bookingIDs []int64) (map[int64][]photoModel.Photo, error) {
	if len(bookingIDs) == 0 {
		return map[int64][]photoModel.Photo{}, nil
	}

	photos, err := s.photoRepo.GetAll(ctx, photoRepo.OrderByID(), photoRepo.ByBookingIDs(bookingIDs))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking photos")

		return nil, fmt.Errorf("failed to get booking photos: %w", err)
	}

	return photoModel.GroupByBooking(photos), nil
}

func (s *serviceImpl) Get(ctx context.Context, id int64) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(&err)

	booking, err := s.load(ctx, id)
	if err != nil {
		return res, err
	}

	photos, err := s.photosOf(ctx, []int64{id})
	if err != nil {
		return res, err
	}

	res.FromModel(booking, photos[id])

	return res, nil
}

// load reads the current row; every mutation starts from a fresh read.
func (s *serviceImpl) load(ctx context.Context, id int64) (model.Booking, error) {
	booking, err := s.repo.Get(ctx, repository.ByID(id))
	if err != nil {
		log.Error().Err(err).Int64("id", id).Msg("failed to get booking")

		return booking, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == 0 {
		return booking, notFound(id)
	}

	return booking, nil
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer scope.TraceIfError(&err)

	callerID := shared.GetUserID(ctx)

	if req.UserID == 0 {
		req.UserID = callerID
	}

	if req.UserID == 0 {
		return res, failure.BadRequestFromString("userId is required") // nolint:wrapcheck
	}

	if callerID != 0 && req.UserID != callerID && !shared.IsAdmin(ctx) {
		return res, failure.Forbidden("You can only create bookings for yourself") // nolint:wrapcheck
	}

	now := timezone.Now()

	booking, err := req.ToModel(now)
	if err != nil {
		return res, failure.BadRequestFromString(fmt.Sprintf("invalid bookingDate: %v", err)) // nolint:wrapcheck
	}

	var id int64

	err = s.transactor.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		insertedID, err := s.repo.InsertReturningIDTx(ctx, tx, booking)
		if err != nil {
			return err
		}

		id = insertedID

		return s.photoRepo.InsertBulkTx(ctx, tx, req.PhotoModels(insertedID, now))
	})
	if err != nil {
		if shared.IsPqErrorCode(err, constant.PqErrorCodeFkViolation) {
			return res, failure.BadRequestFromString("room or user does not exist") // nolint:wrapcheck
		}

		log.Error().Err(err).Msg("failed to create booking")

		return res, fmt.Errorf("failed to create booking: %w", err)
	}

	res, err = s.Get(ctx, id)
	if err != nil {
		return res, err
	}

	s.publish(ctx, event.TypeCreated, res.ID, res.Status, "")

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, id int64, req dto.UpdateBookingRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer scope.TraceIfError(&err)

	if req.ID != id {
		return failure.BadRequestFromString("Booking ID mismatch") // nolint:wrapcheck
	}

	current, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	filter := repository.ByID(id)
	version := current.Version

	if req.Version != nil {
		if *req.Version != current.Version {
			return concurrentModification(id)
		}

		filter = repository.ByIDAndVersion(id, *req.Version)
	}

	fields, err := req.ToUpdateFields(version)
	if err != nil {
		return failure.BadRequest(err) // nolint:wrapcheck
	}

	affected, err := s.repo.UpdateCount(ctx, fields, filter)
	if err != nil {
		if shared.IsPqErrorCode(err, constant.PqErrorCodeFkViolation) {
			return failure.BadRequestFromString("room or user does not exist") // nolint:wrapcheck
		}

		log.Error().Err(err).Msg("failed to update booking")

		return fmt.Errorf("failed to update booking: %w", err)
	}

	if affected == 0 {
		if req.Version != nil {
			return concurrentModification(id)
		}

		return notFound(id)
	}

	s.publish(ctx, event.TypeUpdated, id, req.Status, "")

	return nil
}

func (s *serviceImpl) Delete(ctx context.Context, id int64) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer scope.TraceIfError(&err)

	err = s.transactor.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		err := s.photoRepo.DeleteTx(ctx, tx, shared.FilterByID(id, photoModel.FieldBookingID, photoModel.TableName))
		if err != nil {
			return err
		}

		affected, err := s.repo.DeleteCountTx(ctx, tx, repository.ByID(id))
		if err != nil {
			return err
		}

		if affected == 0 {
			return notFound(id)
		}

		return nil
	})
	if err != nil {
		if failure.IsFailure(err) {
			return err
		}

		log.Error().Err(err).Int64("id", id).Msg("failed to delete booking")

		return fmt.Errorf("failed to delete booking: %w", err)
	}

	s.publish(ctx, event.TypeDeleted, id, "", "")

	return nil
}

func (s *serviceImpl) Approve(ctx context.Context, id int64, req dto.NoteRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Approve")
	defer scope.End()
	defer scope.TraceIfError(&err)

	if err = s.transition(ctx, id, model.StatusApproved, nil); err != nil {
		return res, err
	}

	log.Info().Int64("id", id).Str("note", req.Note).Str("actor", shared.Actor(ctx)).Msg("booking approved")
	s.publish(ctx, event.TypeApproved, id, model.StatusApproved.String(), req.Note)

	return s.Get(ctx, id)
}

func (s *serviceImpl) Reject(ctx context.Context, id int64, req dto.NoteRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Reject")
	defer scope.End()
	defer scope.TraceIfError(&err)

	if err = s.transition(ctx, id, model.StatusRejected, nil); err != nil {
		return res, err
	}

	log.Info().Int64("id", id).Str("note", req.Note).Str("actor", shared.Actor(ctx)).Msg("booking rejected")
	s.publish(ctx, event.TypeRejected, id, model.StatusRejected.String(), req.Note)

	return s.Get(ctx, id)
}

func (s *serviceImpl) Checkin(ctx context.Context, id int64, req dto.CheckinRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Checkin")
	defer scope.End()
	defer scope.TraceIfError(&err)

	err = s.transition(ctx, id, model.StatusInUse, map[string]any{
		model.FieldCheckinTime: timezone.Now(),
		model.FieldLocationGPS: req.LocationGPS,
		model.FieldIsPresent:   true,
	})
	if err != nil {
		return res, err
	}

	s.publish(ctx, event.TypeCheckedIn, id, model.StatusInUse.String(), "")

	return s.Get(ctx, id)
}

// transition moves the booking to target with a compare-and-set on version. extra columns are written in the
// same statement.
func (s *serviceImpl) transition(ctx context.Context, id int64, target model.Status, extra map[string]any) error {
	current, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	next, err := current.Status.Transition(target, s.cfg.App.Booking.StrictTransitions)
	if err != nil {
		return failure.Conflict(err.Error()) // nolint:wrapcheck
	}

	fields := map[string]any{
		model.FieldStatus:  next,
		model.FieldVersion: current.Version + 1,
	}
	maps.Copy(fields, extra)

	affected, err := s.repo.UpdateCount(ctx, fields, repository.ByIDAndVersion(id, current.Version))
	if err != nil {
		log.Error().Err(err).Int64("id", id).Str("target", target.String()).Msg("failed to update booking status")

		return fmt.Errorf("failed to update booking status: %w", err)
	}

	if affected == 0 {
		return concurrentModification(id)
	}

	return nil
}

// Checkout closes a booking that was checked in. The status change and the evidence photo commit together.
func (s *serviceImpl) Checkout(ctx context.Context, id int64, req dto.CheckoutRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Checkout")
	defer scope.End()
	defer scope.TraceIfError(&err)

	err = s.transactor.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		current, err := s.repo.GetTx(ctx, tx, repository.ByID(id))
		if err != nil {
			return err
		}

		if current.ID == 0 || !current.IsPresent {
			return failure.NotFound(fmt.Sprintf("Booking with ID %d not found or not checked in", id))
		}

		next, err := current.Status.Transition(model.StatusDone, s.cfg.App.Booking.StrictTransitions)
		if err != nil {
			return failure.Conflict(err.Error())
		}

		now := timezone.Now()

		affected, err := s.repo.UpdateCountTx(ctx, tx, map[string]any{
			model.FieldCheckoutTime: now,
			model.FieldStatus:       next,
			model.FieldVersion:      current.Version + 1,
		}, repository.ByIDAndVersion(id, current.Version))
		if err != nil {
			return err
		}

		if affected == 0 {
			return concurrentModification(id)
		}

		return s.photoRepo.InsertTx(ctx, tx, photoModel.Photo{
			BookingID: id,
			PhotoURL:  req.PhotoURL,
			CreatedAt: now,
		})
	})
	if err != nil {
		if failure.IsFailure(err) {
			return res, err
		}

		log.Error().Err(err).Int64("id", id).Msg("failed to checkout booking")

		return res, fmt.Errorf("failed to checkout booking: %w", err)
	}

	s.publish(ctx, event.TypeCheckedOut, id, model.StatusDone.String(), "")

	return s.Get(ctx, id)
}

func (s *serviceImpl) Export(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (data []byte, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Export")
	defer scope.End()
	defer scope.TraceIfError(&err)

	bookings, err := s.GetAll(ctx, params, filter)
	if err != nil {
		return nil, err
	}

	data, err = export.Bookings(bookings)
	if err != nil {
		log.Error().Err(err).Msg("failed to export bookings")

		return nil, fmt.Errorf("failed to export bookings: %w", err)
	}

	return data, nil
}

func (s *serviceImpl) publish(ctx context.Context, eventType event.Type, id int64, status, note string) {
	s.publisher.Publish(ctx, event.BookingEvent{
		Type:      eventType,
		BookingID: id,
		Status:    status,
		Actor:     shared.Actor(ctx),
		Note:      note,
		At:        timezone.Now().Truncate(time.Millisecond),
	})
}
