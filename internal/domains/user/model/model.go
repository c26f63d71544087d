package model

import "roombooking/shared/model"

const (
	TableName  = "users"
	EntityName = "user"

	FieldID       = "id"
	FieldName     = "name"
	FieldEmail    = "email"
	FieldPassword = "password"
	FieldPhoto    = "photo"
	FieldRole     = "role"
)

type User struct {
	ID       int64   `db:"id"       readonly:"true"`
	Name     string  `db:"name"`
	Email    string  `db:"email"`
	Password string  `db:"password"`
	Photo    *string `db:"photo"`
	Role     string  `db:"role"`
	model.Metadata
}

var SortColumns = map[string]string{
	FieldID:    TableName + "." + FieldID,
	FieldName:  TableName + "." + FieldName,
	FieldEmail: TableName + "." + FieldEmail,
	FieldRole:  TableName + "." + FieldRole,
}
