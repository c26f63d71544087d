package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"roombooking/config"
	otelMocks "roombooking/infras/otel/mocks"
	facilityMocks "roombooking/internal/domains/facility/mocks"
	"roombooking/internal/domains/facility/model"
	"roombooking/internal/domains/facility/model/dto"
	"roombooking/internal/domains/facility/service"
	roomMocks "roombooking/internal/domains/room/mocks"
	"roombooking/shared"
	"roombooking/shared/cache"
	"roombooking/shared/constant"
	gDto "roombooking/shared/dto"
	"roombooking/shared/failure"
)

type deps struct {
	repo  *facilityMocks.MockFacility
	links *roomMocks.MockRoomFacility
	redis *miniredis.Miniredis
	svc   service.Facility
}

func setup(t *testing.T) deps {
	t.Helper()

	ctrl := gomock.NewController(t)

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := &config.Config{}
	cfg.Cache.TTL = 60

	d := deps{
		repo:  facilityMocks.NewMockFacility(ctrl),
		links: roomMocks.NewMockRoomFacility(ctrl),
		redis: server,
	}
	d.svc = service.New(d.repo, d.links, cfg, cache.NewRedisCache(client, otelMocks.NewOtel()), otelMocks.NewOtel())

	return d
}

func adminCtx() context.Context {
	return shared.WithUser(context.Background(), 1, "admin@example.com", constant.RoleAdmin)
}

func TestFacilityService_GetAll(t *testing.T) {
	d := setup(t)

	d.repo.EXPECT().
		GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]model.Facility{{ID: 1, Name: "Projector"}, {ID: 2, Name: "Whiteboard"}}, nil)

	res, err := d.svc.GetAll(context.Background(), gDto.QueryParams{}, gDto.FilterGroup{})
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "Whiteboard", res[1].Name)

	d.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

	_, err = d.svc.GetAll(context.Background(), gDto.QueryParams{Page: 2}, gDto.FilterGroup{})
	assert.Equal(t, http.StatusInternalServerError, failure.GetCode(err))
}

func TestFacilityService_Get(t *testing.T) {
	d := setup(t)

	d.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Facility{}, nil)

	_, err := d.svc.Get(context.Background(), 4)
	assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	assert.Equal(t, "Facility with ID 4 not found", err.Error())
}

func TestFacilityService_Create(t *testing.T) {
	t.Run("stamps creator", func(t *testing.T) {
		d := setup(t)

		require.NoError(t, d.redis.Set(constant.CacheFacilityGetAll+":x", "[]"))

		d.repo.EXPECT().
			InsertReturningID(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, facility model.Facility) (int64, error) {
				assert.Equal(t, "admin@example.com", facility.CreatedBy)

				return 3, nil
			})

		res, err := d.svc.Create(adminCtx(), dto.FacilityRequest{Name: "Speaker"})
		require.NoError(t, err)
		assert.Equal(t, int64(3), res.ID)
		assert.False(t, d.redis.Exists(constant.CacheFacilityGetAll+":x"))
	})

	t.Run("duplicate name", func(t *testing.T) {
		d := setup(t)

		d.repo.EXPECT().
			InsertReturningID(gomock.Any(), gomock.Any()).
			Return(int64(0), &pq.Error{Code: pq.ErrorCode(constant.PqErrorCodeUniqueViolation)})

		_, err := d.svc.Create(adminCtx(), dto.FacilityRequest{Name: "Speaker"})
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})
}

func TestFacilityService_Update(t *testing.T) {
	t.Run("renames and drops room caches", func(t *testing.T) {
		d := setup(t)

		require.NoError(t, d.redis.Set(constant.CacheRoomGetAll+":x", "[]"))
		require.NoError(t, d.redis.Set(shared.BuildCacheKey(constant.CacheRoomGet, 1), "{}"))

		d.repo.EXPECT().
			UpdateCount(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) (int64, error) {
				assert.Equal(t, "4K Projector", fields[model.FieldName])
				assert.Equal(t, "admin@example.com", fields[constant.FieldModifiedBy])

				return 1, nil
			})
		d.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Facility{ID: 1, Name: "4K Projector"}, nil)

		res, err := d.svc.Update(adminCtx(), 1, dto.FacilityRequest{Name: "4K Projector"})
		require.NoError(t, err)
		assert.Equal(t, "4K Projector", res.Name)
		assert.False(t, d.redis.Exists(constant.CacheRoomGetAll+":x"))
		assert.False(t, d.redis.Exists(shared.BuildCacheKey(constant.CacheRoomGet, 1)))
	})

	t.Run("missing", func(t *testing.T) {
		d := setup(t)

		d.repo.EXPECT().UpdateCount(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), nil)

		_, err := d.svc.Update(adminCtx(), 9, dto.FacilityRequest{Name: "Speaker"})
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestFacilityService_Delete(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(d deps)
		wantCode  int
	}{
		{
			name: "unused",
			setupMock: func(d deps) {
				d.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Facility{ID: 2, Name: "Speaker"}, nil)
				d.links.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
				d.repo.EXPECT().DeleteCount(gomock.Any(), gomock.Any()).Return(int64(1), nil)
			},
		},
		{
			name: "used by a room",
			setupMock: func(d deps) {
				d.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Facility{ID: 2, Name: "Speaker"}, nil)
				d.links.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "linked after the check",
			setupMock: func(d deps) {
				d.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Facility{ID: 2, Name: "Speaker"}, nil)
				d.links.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
				d.repo.EXPECT().
					DeleteCount(gomock.Any(), gomock.Any()).
					Return(int64(0), &pq.Error{Code: pq.ErrorCode(constant.PqErrorCodeFkViolation)})
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "missing",
			setupMock: func(d deps) {
				d.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Facility{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := setup(t)
			tt.setupMock(d)

			err := d.svc.Delete(adminCtx(), 2)

			if tt.wantCode == 0 {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Equal(t, tt.wantCode, failure.GetCode(err))
		})
	}
}
