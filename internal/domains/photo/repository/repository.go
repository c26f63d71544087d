package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"roombooking/infras/otel"
	"roombooking/infras/postgres"
	"roombooking/internal/domains/photo/model"
	gDto "roombooking/shared/dto"
	gRepo "roombooking/shared/repository"

	"github.com/jmoiron/sqlx"
)

type Photo interface {
	InsertReturningID(ctx context.Context, photo model.Photo) (int64, error)
	InsertTx(ctx context.Context, sqltx *sqlx.Tx, photo model.Photo) error
	InsertBulkTx(ctx context.Context, sqltx *sqlx.Tx, photos []model.Photo) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Photo, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Photo, error)
	Delete(ctx context.Context, filter gDto.FilterGroup) error
	DeleteTx(ctx context.Context, sqltx *sqlx.Tx, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Photo]
}

func New(db *postgres.Connection, otel otel.Otel) Photo {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Photo](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}

// ByBookingIDs selects the photos of every listed booking.
func ByBookingIDs(bookingIDs []int64) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldBookingID,
				Operator: gDto.FilterOperatorIn,
				Value:    bookingIDs,
				Table:    model.TableName,
			},
		},
	}
}

// OrderByID keeps photos in the order they were attached.
func OrderByID() gDto.QueryParams {
	return gDto.QueryParams{
		SortBy:  model.TableName + "." + model.FieldID,
		SortDir: gDto.SortDirAsc,
	}
}
