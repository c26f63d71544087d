package dto

import (
	"mime/multipart"
	"roombooking/internal/domains/photo/model"
	"roombooking/shared/constant"
	"roombooking/shared/timezone"
	"time"
)

type CreatePhotoRequest struct {
	BookingID int64  `json:"bookingId" validate:"required,gt=0"`
	PhotoURL  string `json:"photoUrl"  validate:"required,max=255"`
}

func (c *CreatePhotoRequest) ToModel(now time.Time) model.Photo {
	return model.Photo{
		BookingID: c.BookingID,
		PhotoURL:  c.PhotoURL,
		CreatedAt: now,
	}
}

// UploadPhotoRequest is the multipart body of the upload endpoint; the bytes are checked again after reading.
type UploadPhotoRequest struct {
	File *multipart.FileHeader `form:"file" validate:"required"`
}

type PhotoResponse struct {
	ID        int64  `json:"id"`
	BookingID int64  `json:"bookingId"`
	PhotoURL  string `json:"photoUrl"`
	CreatedAt string `json:"createdAt"`
}

func (r *PhotoResponse) FromModel(model model.Photo) {
	r.ID = model.ID
	r.BookingID = model.BookingID
	r.PhotoURL = model.PhotoURL
	r.CreatedAt = timezone.Format(model.CreatedAt, constant.DateFormat)
}

func FromModels(models []model.Photo) []PhotoResponse {
	res := make([]PhotoResponse, len(models))
	for i, mod := range models {
		res[i].FromModel(mod)
	}

	return res
}

type UploadResponse struct {
	PhotoURL string `json:"photoUrl"`
}
