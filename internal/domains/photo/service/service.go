package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"
	"roombooking/config"
	"roombooking/infras/otel"
	"roombooking/infras/s3"
	bookingRepo "roombooking/internal/domains/booking/repository"
	"roombooking/internal/domains/photo/model"
	"roombooking/internal/domains/photo/model/dto"
	"roombooking/internal/domains/photo/repository"
	"roombooking/shared"
	"roombooking/shared/constant"
	"roombooking/shared/failure"
	"roombooking/shared/mime"
	"roombooking/shared/timezone"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Photo interface {
	GetByBooking(ctx context.Context, bookingID int64) ([]dto.PhotoResponse, error)
	Get(ctx context.Context, id int64) (dto.PhotoResponse, error)
	Create(ctx context.Context, req dto.CreatePhotoRequest) (dto.PhotoResponse, error)
	Delete(ctx context.Context, id int64) error
	Upload(ctx context.Context, req dto.UploadPhotoRequest) (dto.UploadResponse, error)
}

type serviceImpl struct {
	repo        repository.Photo
	bookingRepo bookingRepo.Booking
	s3          s3.S3
	cfg         *config.Config
	otel        otel.Otel
}

func New(repo repository.Photo, bookingRepo bookingRepo.Booking, s3 s3.S3, cfg *config.Config, otel otel.Otel) Photo {
	return &serviceImpl{
		repo:        repo,
		bookingRepo: bookingRepo,
		s3:          s3,
		cfg:         cfg,
		otel:        otel,
	}
}

func (s *serviceImpl) GetByBooking(ctx context.Context, bookingID int64) (res []dto.PhotoResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetByBooking")
	defer scope.End()
	defer scope.TraceIfError(&err)

	photos, err := s.repo.GetAll(ctx, repository.OrderByID(), shared.FilterByID(bookingID, model.FieldBookingID, model.TableName))
	if err != nil {
		log.Error().Err(err).Int64("booking_id", bookingID).Msg("failed to get photos")

		return nil, fmt.Errorf("failed to get photos: %w", err)
	}

	return dto.FromModels(photos), nil
}

func (s *serviceImpl) Get(ctx context.Context, id int64) (res dto.PhotoResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(&err)

	photo, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Int64("id", id).Msg("failed to get photo")

		return res, fmt.Errorf("failed to get photo: %w", err)
	}

	if photo.ID == 0 {
		return res, failure.NotFound(fmt.Sprintf("Photo usage with ID %d not found", id)) // nolint:wrapcheck
	}

	res.FromModel(photo)

	return res, nil
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreatePhotoRequest) (res dto.PhotoResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer scope.TraceIfError(&err)

	exist, err := s.bookingRepo.Exist(ctx, bookingRepo.ByID(req.BookingID))
	if err != nil {
		log.Error().Err(err).Msg("failed to check booking")

		return res, fmt.Errorf("failed to check booking: %w", err)
	}

	if !exist {
		return res, failure.NotFound(fmt.Sprintf("Booking with ID %d not found", req.BookingID)) // nolint:wrapcheck
	}

	photo := req.ToModel(timezone.Now())

	photo.ID, err = s.repo.InsertReturningID(ctx, photo)
	if err != nil {
		log.Error().Err(err).Msg("failed to create photo")

		return res, fmt.Errorf("failed to create photo: %w", err)
	}

	res.FromModel(photo)

	return res, nil
}

// Delete removes the row; an object we host in the bucket is removed best effort afterwards.
func (s *serviceImpl) Delete(ctx context.Context, id int64) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer scope.TraceIfError(&err)

	photo, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err = s.repo.Delete(ctx, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Int64("id", id).Msg("failed to delete photo")

		return fmt.Errorf("failed to delete photo: %w", err)
	}

	objectKey := s.s3.GetObjectNameFromURL(photo.PhotoURL)
	if objectKey == constant.Empty {
		return nil
	}

	if err := s.s3.DeleteFile(ctx, objectKey); err != nil {
		log.Warn().Err(err).Str("objectKey", objectKey).Msg("failed to delete photo object")
	}

	return nil
}

func (s *serviceImpl) Upload(ctx context.Context, req dto.UploadPhotoRequest) (res dto.UploadResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Upload")
	defer scope.End()
	defer scope.TraceIfError(&err)

	upload, err := mime.ReadUpload(req.File, s.cfg.UploadMaxBytes(), s.cfg.App.Upload.AllowedMimeTypes)
	if err != nil {
		return res, err
	}

	fileName := uuid.NewString() + upload.Extension

	url, err := s.s3.UploadFileBytes(ctx, s.cfg.App.Upload.BookingPhotoDir, fileName, upload.ContentType, upload.Data)
	if err != nil {
		log.Error().Err(err).Str("filename", upload.Filename).Msg("failed to upload photo")

		return res, fmt.Errorf("failed to upload photo: %w", err)
	}

	res.PhotoURL = url

	return res, nil
}
