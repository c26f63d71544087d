package service_test

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"roombooking/config"
	otelMocks "roombooking/infras/otel/mocks"
	s3Mocks "roombooking/infras/s3/mocks"
	userMocks "roombooking/internal/domains/user/mocks"
	"roombooking/internal/domains/user/model"
	"roombooking/internal/domains/user/model/dto"
	"roombooking/internal/domains/user/service"
	"roombooking/shared"
	"roombooking/shared/cache"
	"roombooking/shared/constant"
	gDto "roombooking/shared/dto"
	"roombooking/shared/failure"
)

var gifHeader = []byte("GIF89a\x01\x00\x01\x00\x80\x00\x00\xff\xff\xff\x00\x00\x00!\xf9\x04\x01\x00\x00\x00\x00,")

type deps struct {
	repo  *userMocks.MockUser
	s3    *s3Mocks.MockS3
	redis *miniredis.Miniredis
	svc   service.User
}

func setup(t *testing.T) deps {
	t.Helper()

	ctrl := gomock.NewController(t)

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := &config.Config{}
	cfg.Cache.TTL = 60
	cfg.App.Upload.MaxSizeMB = 1
	cfg.App.Upload.AllowedMimeTypes = []string{"image/jpeg", "image/png", "image/gif"}
	cfg.App.Upload.ProfilePhotoDir = "profiles"

	d := deps{
		repo:  userMocks.NewMockUser(ctrl),
		s3:    s3Mocks.NewMockS3(ctrl),
		redis: server,
	}
	d.svc = service.New(d.repo, cfg, cache.NewRedisCache(client, otelMocks.NewOtel()), otelMocks.NewOtel(), d.s3)

	return d
}

func userCtx() context.Context {
	return shared.WithUser(context.Background(), 7, "ana@example.com", constant.RoleUser)
}

func adminCtx() context.Context {
	return shared.WithUser(context.Background(), 1, "admin@example.com", constant.RoleAdmin)
}

func ana() model.User {
	return model.User{ID: 7, Name: "Ana", Email: "ana@example.com", Password: "hash", Role: constant.RoleUser}
}

func TestUserService_GetAll(t *testing.T) {
	d := setup(t)

	d.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(3, nil)
	d.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return([]model.User{ana()}, nil)

	res, err := d.svc.GetAll(context.Background(), gDto.QueryParams{Page: 1, Limit: 2}, gDto.FilterGroup{})
	require.NoError(t, err)
	assert.Equal(t, 3, res.TotalData)
	assert.Equal(t, 2, res.TotalPage)
	require.Len(t, res.Users, 1)
	assert.Equal(t, "Ana", res.Users[0].Name)
}

func TestUserService_Get(t *testing.T) {
	d := setup(t)

	d.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.User{}, nil)

	_, err := d.svc.Get(context.Background(), 40)
	assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	assert.Equal(t, "User with ID 40 not found", err.Error())
}

func TestUserService_Me(t *testing.T) {
	d := setup(t)

	_, err := d.svc.Me(context.Background())
	assert.Equal(t, http.StatusUnauthorized, failure.GetCode(err))

	d.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(ana(), nil)

	res, err := d.svc.Me(userCtx())
	require.NoError(t, err)
	assert.Equal(t, int64(7), res.ID)
	assert.Equal(t, "ana@example.com", res.Email)
}

func TestUserService_Update(t *testing.T) {
	t.Run("empty request", func(t *testing.T) {
		d := setup(t)

		_, err := d.svc.Update(adminCtx(), 7, dto.UpdateUserRequest{})
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("promotes user", func(t *testing.T) {
		d := setup(t)

		require.NoError(t, d.redis.Set(shared.BuildCacheKey("user:get", 7), "{}"))

		role := constant.RoleAdmin

		d.repo.EXPECT().
			UpdateCount(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) (int64, error) {
				assert.Equal(t, &role, fields[model.FieldRole])
				assert.NotContains(t, fields, model.FieldName)

				return 1, nil
			})

		promoted := ana()
		promoted.Role = constant.RoleAdmin
		d.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(promoted, nil)

		res, err := d.svc.Update(adminCtx(), 7, dto.UpdateUserRequest{Role: &role})
		require.NoError(t, err)
		assert.Equal(t, constant.RoleAdmin, res.Role)
	})

	t.Run("missing", func(t *testing.T) {
		d := setup(t)

		name := "Bob"
		d.repo.EXPECT().UpdateCount(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), nil)

		_, err := d.svc.Update(adminCtx(), 9, dto.UpdateUserRequest{Name: &name})
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestUserService_Delete(t *testing.T) {
	tests := []struct {
		name      string
		id        int64
		setupMock func(d deps)
		wantCode  int
	}{
		{
			name: "deleted",
			id:   7,
			setupMock: func(d deps) {
				d.repo.EXPECT().DeleteCount(gomock.Any(), gomock.Any()).Return(int64(1), nil)
			},
		},
		{
			name:      "own account",
			id:        1,
			setupMock: func(deps) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "has bookings",
			id:   7,
			setupMock: func(d deps) {
				d.repo.EXPECT().
					DeleteCount(gomock.Any(), gomock.Any()).
					Return(int64(0), &pq.Error{Code: pq.ErrorCode(constant.PqErrorCodeFkViolation)})
			},
			wantCode: http.StatusConflict,
		},
		{
			name: "missing",
			id:   8,
			setupMock: func(d deps) {
				d.repo.EXPECT().DeleteCount(gomock.Any(), gomock.Any()).Return(int64(0), nil)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name: "repository error",
			id:   7,
			setupMock: func(d deps) {
				d.repo.EXPECT().DeleteCount(gomock.Any(), gomock.Any()).Return(int64(0), errors.New("db down"))
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := setup(t)
			tt.setupMock(d)

			err := d.svc.Delete(adminCtx(), tt.id)

			if tt.wantCode == 0 {
				assert.NoError(t, err)

				return
			}

			assert.Equal(t, tt.wantCode, failure.GetCode(err))
		})
	}
}

func TestUserService_UpdateProfile(t *testing.T) {
	t.Run("email taken", func(t *testing.T) {
		d := setup(t)

		d.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)

		_, err := d.svc.UpdateProfile(userCtx(), dto.UpdateProfileRequest{Name: "Ana", Email: "bob@example.com"})
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
		assert.Equal(t, "Email already in use", err.Error())
	})

	t.Run("updated", func(t *testing.T) {
		d := setup(t)

		d.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
		d.repo.EXPECT().
			UpdateCount(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) (int64, error) {
				assert.Equal(t, "Ana Maria", fields[model.FieldName])
				assert.Equal(t, "ana.maria@example.com", fields[model.FieldEmail])

				return 1, nil
			})

		updated := ana()
		updated.Name = "Ana Maria"
		updated.Email = "ana.maria@example.com"
		d.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(updated, nil)

		res, err := d.svc.UpdateProfile(userCtx(), dto.UpdateProfileRequest{Name: "Ana Maria", Email: "ana.maria@example.com"})
		require.NoError(t, err)
		assert.Equal(t, "Ana Maria", res.Name)
	})
}

func TestUserService_UploadPhoto(t *testing.T) {
	d := setup(t)

	d.s3.EXPECT().
		UploadFileBytes(gomock.Any(), "profiles", gomock.Any(), "image/gif", gifHeader).
		Return("https://cdn/profiles/a.gif", nil)
	d.repo.EXPECT().
		UpdateCount(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) (int64, error) {
			assert.Equal(t, "https://cdn/profiles/a.gif", fields[model.FieldPhoto])

			return 1, nil
		})

	res, err := d.svc.UploadPhoto(userCtx(), dto.UploadPhotoRequest{Photo: fileHeader(t, "me.gif", gifHeader)})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/profiles/a.gif", res.PhotoURL)

	_, err = d.svc.UploadPhoto(userCtx(), dto.UploadPhotoRequest{})
	assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
}

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("photo", name)
	require.NoError(t, err)

	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))

	_, header, err := req.FormFile("photo")
	require.NoError(t, err)

	return header
}
