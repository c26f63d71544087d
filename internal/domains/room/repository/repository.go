package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"roombooking/infras/otel"
	"roombooking/infras/postgres"
	"roombooking/internal/domains/room/model"
	"roombooking/shared"
	gDto "roombooking/shared/dto"
	gRepo "roombooking/shared/repository"

	"github.com/jmoiron/sqlx"
)

type Room interface {
	InsertReturningIDTx(ctx context.Context, sqltx *sqlx.Tx, room model.Room) (int64, error)
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Room, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Room, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	UpdateCountTx(ctx context.Context, sqltx *sqlx.Tx, req map[string]any, filter gDto.FilterGroup) (int64, error)
	DeleteCount(ctx context.Context, filter gDto.FilterGroup) (int64, error)
}

// RoomFacility is the room_facilities association.
type RoomFacility interface {
	InsertBulkTx(ctx context.Context, sqltx *sqlx.Tx, links []model.RoomFacility) error
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.RoomFacility, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	DeleteTx(ctx context.Context, sqltx *sqlx.Tx, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Room]
}

func New(db *postgres.Connection, otel otel.Otel) Room {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Room](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}

type roomFacilityImpl struct {
	gRepo.Repository[model.RoomFacility]
}

func NewRoomFacility(db *postgres.Connection, otel otel.Otel) RoomFacility {
	return &roomFacilityImpl{
		Repository: gRepo.NewRepository[model.RoomFacility](model.RoomFacilityEntityName, model.RoomFacilityTableName, model.FieldID, db, otel),
	}
}

func ByID(id int64) gDto.FilterGroup {
	return shared.FilterByID(id, model.FieldID, model.TableName)
}

// ByRoomIDs selects the links of every listed room.
func ByRoomIDs(roomIDs []int64) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldRoomID,
				Operator: gDto.FilterOperatorIn,
				Value:    roomIDs,
				Table:    model.RoomFacilityTableName,
			},
		},
	}
}

func ByFacilityID(facilityID int64) gDto.FilterGroup {
	return shared.FilterByID(facilityID, model.FieldFacilityID, model.RoomFacilityTableName)
}

func OrderLinks() gDto.QueryParams {
	return gDto.QueryParams{
		SortBy:  model.RoomFacilityTableName + "." + model.FieldID,
		SortDir: gDto.SortDirAsc,
	}
}
