package model

import "roombooking/shared/model"

const (
	TableName  = "facilities"
	EntityName = "facility"

	FieldID   = "id"
	FieldName = "name"
)

type Facility struct {
	ID   int64  `db:"id"   readonly:"true"`
	Name string `db:"name"`
	model.Metadata
}
