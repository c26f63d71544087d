package dto

import (
	"errors"
	"fmt"
	"roombooking/internal/domains/booking/model"
	photoModel "roombooking/internal/domains/photo/model"
	"roombooking/shared/constant"
	"roombooking/shared/timezone"
	"sort"
	"time"
)

type PhotoRequest struct {
	PhotoURL string `json:"photoUrl" validate:"required,max=255"`
}

// CreateBookingRequest is accepted as sent by clients; Status, IsPresent and the timestamps are ignored because a
// new booking always starts pending.
type CreateBookingRequest struct {
	RoomID       int64          `json:"roomId"       validate:"required,gt=0"`
	UserID       int64          `json:"userId"       validate:"omitempty,gt=0"`
	BookingDate  string         `json:"bookingDate"  validate:"required,datetime=2006-01-02"`
	StartTime    string         `json:"startTime"    validate:"required,max=20"`
	EndTime      string         `json:"endTime"      validate:"required,max=20"`
	Purpose      string         `json:"purpose"      validate:"required,max=500"`
	Status       string         `json:"status"       validate:"omitempty,max=20"`
	LocationGPS  string         `json:"locationGps"  validate:"omitempty,max=100"`
	RoomPhotoURL string         `json:"roomPhotoUrl" validate:"omitempty,max=255"`
	Photos       []PhotoRequest `json:"photos"       validate:"omitempty,dive"`
	PhotoURLs    []string       `json:"photoUrls"    validate:"omitempty,dive,required,max=255"`
}

func (c *CreateBookingRequest) ToModel(now time.Time) (model.Booking, error) {
	bookingDate, err := timezone.ParseDate(c.BookingDate)
	if err != nil {
		return model.Booking{}, err
	}

	booking := model.Booking{
		RoomID:      c.RoomID,
		UserID:      c.UserID,
		BookingDate: bookingDate,
		StartTime:   c.StartTime,
		EndTime:     c.EndTime,
		Purpose:     c.Purpose,
		Status:      model.StatusPending,
		LocationGPS: c.LocationGPS,
		IsPresent:   false,
		Version:     1,
		CreatedAt:   now,
	}

	if c.RoomPhotoURL != "" {
		booking.RoomPhotoURL = &c.RoomPhotoURL
	}

	return booking, nil
}

// PhotoModels returns the attached photos in request order, "photos" entries first.
func (c *CreateBookingRequest) PhotoModels(bookingID int64, now time.Time) []photoModel.Photo {
	photos := make([]photoModel.Photo, 0, len(c.Photos)+len(c.PhotoURLs))

	for _, photo := range c.Photos {
		photos = append(photos, photoModel.Photo{BookingID: bookingID, PhotoURL: photo.PhotoURL, CreatedAt: now})
	}

	for _, url := range c.PhotoURLs {
		photos = append(photos, photoModel.Photo{BookingID: bookingID, PhotoURL: url, CreatedAt: now})
	}

	return photos
}

var ErrCreatedAtRequired = errors.New("createdAt is required")

// UpdateBookingRequest replaces every mutable column of a booking. Version is optional: when present the write
// only succeeds against that version.
type UpdateBookingRequest struct {
	ID           int64      `json:"id"          validate:"required,gt=0"`
	RoomID       int64      `json:"roomId"      validate:"required,gt=0"`
	UserID       int64      `json:"userId"      validate:"required,gt=0"`
	BookingDate  string     `json:"bookingDate" validate:"required,datetime=2006-01-02"`
	StartTime    string     `json:"startTime"   validate:"required,max=20"`
	EndTime      string     `json:"endTime"     validate:"required,max=20"`
	Purpose      string     `json:"purpose"     validate:"required,max=500"`
	Status       string     `json:"status"      validate:"required,oneof=pending approved rejected in_use done"`
	CheckinTime  *time.Time `json:"checkinTime"`
	CheckoutTime *time.Time `json:"checkoutTime"`
	LocationGPS  string     `json:"locationGps" validate:"omitempty,max=100"`
	IsPresent    bool       `json:"isPresent"`
	RoomPhotoURL *string    `json:"roomPhotoUrl" validate:"omitempty,max=255"`
	CreatedAt    *time.Time `json:"createdAt"    validate:"required"`
	Version      *int64     `json:"version"      validate:"omitempty,gt=0"`
}

// ToUpdateFields lists every column the replace writes, zero values and created_at included. version is bumped
// from current.
func (u *UpdateBookingRequest) ToUpdateFields(currentVersion int64) (map[string]any, error) {
	if u.CreatedAt == nil {
		return nil, ErrCreatedAtRequired
	}

	bookingDate, err := timezone.ParseDate(u.BookingDate)
	if err != nil {
		return nil, fmt.Errorf("invalid bookingDate: %w", err)
	}

	return map[string]any{
		model.FieldRoomID:       u.RoomID,
		model.FieldUserID:       u.UserID,
		model.FieldBookingDate:  bookingDate,
		model.FieldStartTime:    u.StartTime,
		model.FieldEndTime:      u.EndTime,
		model.FieldPurpose:      u.Purpose,
		model.FieldStatus:       model.Status(u.Status),
		model.FieldCheckinTime:  u.CheckinTime,
		model.FieldCheckoutTime: u.CheckoutTime,
		model.FieldLocationGPS:  u.LocationGPS,
		model.FieldIsPresent:    u.IsPresent,
		model.FieldRoomPhotoURL: u.RoomPhotoURL,
		model.FieldCreatedAt:    *u.CreatedAt,
		model.FieldVersion:      currentVersion + 1,
	}, nil
}

type NoteRequest struct {
	Note string `json:"note" validate:"omitempty,max=500"`
}

type CheckinRequest struct {
	LocationGPS string `json:"locationGps" validate:"omitempty,max=100"`
}

type CheckoutRequest struct {
	PhotoURL string `json:"photoUrl" validate:"required,max=255"`
}

type BookingResponse struct {
	ID           int64    `json:"id"`
	RoomID       int64    `json:"roomId"`
	RoomName     string   `json:"roomName"`
	UserID       int64    `json:"userId"`
	UserName     string   `json:"userName"`
	BookingDate  string   `json:"bookingDate"`
	StartTime    string   `json:"startTime"`
	EndTime      string   `json:"endTime"`
	Purpose      string   `json:"purpose"`
	Status       string   `json:"status"`
	CheckinTime  *string  `json:"checkinTime"`
	CheckoutTime *string  `json:"checkoutTime"`
	LocationGPS  string   `json:"locationGps"`
	IsPresent    bool     `json:"isPresent"`
	RoomPhotoURL string   `json:"roomPhotoUrl"`
	Version      int64    `json:"version"`
	CreatedAt    string   `json:"createdAt"`
	PhotoURLs    []string `json:"photoUrls"`
}

// FromModel flattens booking and its photos. Photos are emitted in id order whatever order they arrive in.
func (r *BookingResponse) FromModel(booking model.Booking, photos []photoModel.Photo) {
	r.ID = booking.ID
	r.RoomID = booking.RoomID
	r.RoomName = deref(booking.RoomName)
	r.UserID = booking.UserID
	r.UserName = deref(booking.UserName)
	r.BookingDate = booking.BookingDate.Format(constant.DateOnlyFormat)
	r.StartTime = booking.StartTime
	r.EndTime = booking.EndTime
	r.Purpose = booking.Purpose
	r.Status = booking.Status.String()
	r.CheckinTime = timezone.FormatPtr(booking.CheckinTime, constant.DateFormat)
	r.CheckoutTime = timezone.FormatPtr(booking.CheckoutTime, constant.DateFormat)
	r.LocationGPS = booking.LocationGPS
	r.IsPresent = booking.IsPresent
	r.RoomPhotoURL = deref(booking.RoomPhotoURL)
	r.Version = booking.Version
	r.CreatedAt = timezone.Format(booking.CreatedAt, constant.DateFormat)

	ordered := make([]photoModel.Photo, len(photos))
	copy(ordered, photos)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	r.PhotoURLs = make([]string, len(ordered))
	for i, photo := range ordered {
		r.PhotoURLs[i] = photo.PhotoURL
	}
}

// FromModels maps a page of bookings, looking up each booking's photos in photos.
func FromModels(bookings []model.Booking, photos map[int64][]photoModel.Photo) []BookingResponse {
	res := make([]BookingResponse, len(bookings))
	for i, booking := range bookings {
		res[i].FromModel(booking, photos[booking.ID])
	}

	return res
}

func deref(value *string) string {
	if value == nil {
		return ""
	}

	return *value
}
