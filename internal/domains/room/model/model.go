package model

import "roombooking/shared/model"

const (
	TableName  = "rooms"
	EntityName = "room"

	FieldID          = "id"
	FieldName        = "name"
	FieldCapacity    = "capacity"
	FieldLocation    = "location"
	FieldDescription = "description"
	FieldPhotoURL    = "photo_url"
	FieldLatitude    = "latitude"
	FieldLongitude   = "longitude"
	FieldStatus      = "status"

	StatusAvailable = "available"
)

type Room struct {
	ID          int64    `db:"id"          readonly:"true"`
	Name        string   `db:"name"`
	Capacity    int      `db:"capacity"`
	Location    string   `db:"location"`
	Description string   `db:"description"`
	PhotoURL    *string  `db:"photo_url"`
	Latitude    *float64 `db:"latitude"`
	Longitude   *float64 `db:"longitude"`
	Status      string   `db:"status"`
	model.Metadata
}

// SortColumns maps the sort keys a client may ask for onto qualified columns.
var SortColumns = map[string]string{
	FieldID:       TableName + "." + FieldID,
	FieldName:     TableName + "." + FieldName,
	FieldCapacity: TableName + "." + FieldCapacity,
	FieldLocation: TableName + "." + FieldLocation,
}
