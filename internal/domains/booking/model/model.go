package model

import (
	"time"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID           = "id"
	FieldRoomID       = "room_id"
	FieldUserID       = "user_id"
	FieldBookingDate  = "booking_date"
	FieldStartTime    = "start_time"
	FieldEndTime      = "end_time"
	FieldPurpose      = "purpose"
	FieldStatus       = "status"
	FieldCheckinTime  = "checkin_time"
	FieldCheckoutTime = "checkout_time"
	FieldLocationGPS  = "location_gps"
	FieldIsPresent    = "is_present"
	FieldRoomPhotoURL = "room_photo_url"
	FieldVersion      = "version"
	FieldCreatedAt    = "created_at"

	// bind name for the compare-and-set guard; "version" itself is taken by the SET clause
	ArgExpectedVersion = "expected_version"
)

// Booking is one reservation of a room by a user. RoomName and UserName come from the join and are never written.
type Booking struct {
	ID           int64      `db:"id"             readonly:"true"`
	RoomID       int64      `db:"room_id"`
	RoomName     *string    `db:"room_name"      table:"rooms" column:"name"`
	UserID       int64      `db:"user_id"`
	UserName     *string    `db:"user_name"      table:"users" column:"name"`
	BookingDate  time.Time  `db:"booking_date"`
	StartTime    string     `db:"start_time"`
	EndTime      string     `db:"end_time"`
	Purpose      string     `db:"purpose"`
	Status       Status     `db:"status"`
	CheckinTime  *time.Time `db:"checkin_time"`
	CheckoutTime *time.Time `db:"checkout_time"`
	LocationGPS  string     `db:"location_gps"`
	IsPresent    bool       `db:"is_present"`
	RoomPhotoURL *string    `db:"room_photo_url"`
	Version      int64      `db:"version"`
	CreatedAt    time.Time  `db:"created_at"`
}

func (Booking) GetJoinQuery() string {
	return "LEFT JOIN rooms ON rooms.id = bookings.room_id LEFT JOIN users ON users.id = bookings.user_id"
}

// SortColumns maps the sort keys a client may ask for onto qualified columns.
var SortColumns = map[string]string{
	FieldID:          TableName + "." + FieldID,
	FieldBookingDate: TableName + "." + FieldBookingDate,
	FieldStartTime:   TableName + "." + FieldStartTime,
	FieldStatus:      TableName + "." + FieldStatus,
	FieldRoomID:      TableName + "." + FieldRoomID,
	FieldUserID:      TableName + "." + FieldUserID,
	FieldCreatedAt:   TableName + "." + FieldCreatedAt,
}
