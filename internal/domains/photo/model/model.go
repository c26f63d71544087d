package model

import "time"

const (
	TableName  = "photo_usages"
	EntityName = "photo_usage"

	FieldID        = "id"
	FieldBookingID = "booking_id"
	FieldPhotoURL  = "photo_url"
	FieldCreatedAt = "created_at"
)

// Photo is a piece of evidence attached to a booking, either at creation or at checkout.
type Photo struct {
	ID        int64     `db:"id"         readonly:"true"`
	BookingID int64     `db:"booking_id"`
	PhotoURL  string    `db:"photo_url"`
	CreatedAt time.Time `db:"created_at"`
}

// GroupByBooking buckets photos by booking id keeping their relative order.
func GroupByBooking(photos []Photo) map[int64][]Photo {
	grouped := make(map[int64][]Photo)

	for _, photo := range photos {
		grouped[photo.BookingID] = append(grouped[photo.BookingID], photo)
	}

	return grouped
}
