package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roombooking/infras/otel/mocks"
	"roombooking/infras/postgres"
	"roombooking/shared"
	"roombooking/shared/dto"
	"roombooking/shared/repository"
)

type widget struct {
	ID        int64  `db:"id"         readonly:"true"`
	Name      string `db:"name"`
	OwnerID   int64  `db:"owner_id"`
	OwnerName string `db:"owner_name" table:"owners" column:"name"`
}

func (widget) GetJoinQuery() string {
	return "LEFT JOIN owners ON owners.id = widgets.owner_id"
}

func setupRepository(t *testing.T) (repository.Repository[widget], sqlmock.Sqlmock) {
	t.Helper()

	repo, mock, _ := setupRepositoryWithConn(t)

	return repo, mock
}

func setupRepositoryWithConn(t *testing.T) (repository.Repository[widget], sqlmock.Sqlmock, *postgres.Connection) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })

	conn := &postgres.Connection{
		Read:  sqlx.NewDb(db, "postgres"),
		Write: sqlx.NewDb(db, "postgres"),
	}

	return repository.NewRepository[widget]("widget", "widgets", "id", conn, mocks.NewOtel()), mock, conn
}

func TestNewRepository_InsertColumnsSkipJoinedAndReadonly(t *testing.T) {
	repo, _ := setupRepository(t)

	assert.Equal(t, []string{"name", "owner_id"}, repo.InsertColumns)
}

func TestInsertReturningID(t *testing.T) {
	repo, mock := setupRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO widgets (name, owner_id) VALUES ($1, $2) RETURNING id")).
		WithArgs("lamp", int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	id, err := repo.InsertReturningID(context.Background(), widget{Name: "lamp", OwnerID: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertReturningIDTx_Error(t *testing.T) {
	repo, mock, conn := setupRepositoryWithConn(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO widgets (name, owner_id) VALUES ($1, $2) RETURNING id")).
		WithArgs("desk", int64(1)).
		WillReturnError(errors.New("fk violation"))
	mock.ExpectRollback()

	tx, err := conn.Write.BeginTxx(context.Background(), nil)
	require.NoError(t, err)

	_, err = repo.InsertReturningIDTx(context.Background(), tx, widget{Name: "desk", OwnerID: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fk violation")

	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_JoinedColumns(t *testing.T) {
	repo, mock := setupRepository(t)

	mock.ExpectPrepare(regexp.QuoteMeta("SELECT widgets.id, widgets.name, widgets.owner_id, owners.name AS owner_name FROM widgets LEFT JOIN owners ON owners.id = widgets.owner_id")).
		ExpectQuery().
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "owner_id", "owner_name"}).AddRow(int64(7), "lamp", int64(3), "Ana"))

	got, err := repo.Get(context.Background(), shared.FilterByID(int64(7), "id", "widgets"))
	require.NoError(t, err)
	assert.Equal(t, widget{ID: 7, Name: "lamp", OwnerID: 3, OwnerName: "Ana"}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_NotFoundReturnsZeroValue(t *testing.T) {
	repo, mock := setupRepository(t)

	mock.ExpectPrepare("SELECT .* FROM widgets").
		ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "owner_id", "owner_name"}))

	got, err := repo.Get(context.Background(), shared.FilterByID(int64(99), "id", "widgets"))
	require.NoError(t, err)
	assert.Zero(t, got.ID)
}

func TestGetAll_PaginationAndOrdering(t *testing.T) {
	repo, mock := setupRepository(t)

	mock.ExpectPrepare(regexp.QuoteMeta("ORDER BY widgets.id ASC LIMIT $2 OFFSET $3")).
		ExpectQuery().
		WithArgs(int64(3), 10, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "owner_id", "owner_name"}).
			AddRow(int64(11), "a", int64(3), "Ana").
			AddRow(int64(12), "b", int64(3), "Ana"))

	params := dto.QueryParams{Page: 2, Limit: 10, SortBy: "widgets.id", SortDir: dto.SortDirAsc}

	got, err := repo.GetAll(context.Background(), params, shared.FilterByID(int64(3), "owner_id", "widgets"))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(11), got[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAll_EmptyIsNotNil(t *testing.T) {
	repo, mock := setupRepository(t)

	mock.ExpectPrepare("SELECT").
		ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "owner_id", "owner_name"}))

	got, err := repo.GetAll(context.Background(), dto.QueryParams{}, dto.FilterGroup{})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestUpdateCount(t *testing.T) {
	repo, mock := setupRepository(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE widgets SET name = $1, owner_id = $2  WHERE (widgets.id = $3)")).
		WithArgs("chair", int64(4), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	affected, err := repo.UpdateCount(
		context.Background(),
		map[string]any{"owner_id": int64(4), "name": "chair"},
		shared.FilterByID(int64(7), "id", "widgets"),
	)
	require.NoError(t, err)
	assert.Zero(t, affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAndDelete_RequireFilter(t *testing.T) {
	repo, _ := setupRepository(t)

	assert.Error(t, repo.Update(context.Background(), map[string]any{"name": "x"}, dto.FilterGroup{}))
	assert.Error(t, repo.Delete(context.Background(), dto.FilterGroup{}))
}

func TestDelete(t *testing.T) {
	repo, mock := setupRepository(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM widgets  WHERE (widgets.id = $1)")).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), shared.FilterByID(int64(7), "id", "widgets")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertBulk_EmptyIsNoop(t *testing.T) {
	repo, mock := setupRepository(t)

	require.NoError(t, repo.InsertBulk(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertBulk(t *testing.T) {
	repo, mock := setupRepository(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO widgets (name, owner_id) VALUES")).
		WithArgs("a", int64(1), "b", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := repo.InsertBulk(context.Background(), []widget{{Name: "a", OwnerID: 1}, {Name: "b", OwnerID: 1}})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExist(t *testing.T) {
	repo, mock := setupRepository(t)

	mock.ExpectPrepare(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM widgets")).
		ExpectQuery().
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exist, err := repo.Exist(context.Background(), shared.FilterByID(int64(3), "owner_id", "widgets"))
	require.NoError(t, err)
	assert.True(t, exist)
}
