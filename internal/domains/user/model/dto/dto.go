package dto

import (
	"mime/multipart"
	"roombooking/internal/domains/user/model"
	"roombooking/shared"
	gDto "roombooking/shared/dto"
	gModel "roombooking/shared/model"
	"time"
)

type CreateUserRequest struct {
	Name     string
	Email    string
	Password string
	Role     string
}

func (r *CreateUserRequest) ToModel(actor string, hashedPassword string, now time.Time) model.User {
	return model.User{
		Name:     r.Name,
		Email:    r.Email,
		Password: hashedPassword,
		Role:     r.Role,
		Metadata: gModel.NewMetadata(actor, now),
	}
}

// UserResponse never carries the password hash.
type UserResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Photo string `json:"photo"`
	Role  string `json:"role"`
	gDto.Metadata
}

func (r *UserResponse) FromModel(model model.User) {
	r.ID = model.ID
	r.Name = model.Name
	r.Email = model.Email
	r.Role = model.Role
	r.Metadata.FromModel(model.Metadata)

	if model.Photo != nil {
		r.Photo = *model.Photo
	}
}

// UpdateUserRequest is the admin edit; only the fields sent are written.
type UpdateUserRequest struct {
	Name *string `db:"name" json:"name" validate:"omitempty,min=2,max=100"`
	Role *string `db:"role" json:"role" validate:"omitempty,oneof=user admin"`
}

// UpdateProfileRequest is the caller's own edit.
type UpdateProfileRequest struct {
	Name  string `db:"name"  json:"name"  validate:"required,max=100"`
	Email string `db:"email" json:"email" validate:"required,email,max=100"`
}

type UploadPhotoRequest struct {
	Photo *multipart.FileHeader `validate:"required"`
}

type UploadPhotoResponse struct {
	PhotoURL string `json:"photoUrl"`
}

type GetUsersResponse struct {
	Users     []UserResponse `json:"users"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetUsersResponse) FromModels(models []model.User, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Users = make([]UserResponse, len(models))
	for i, mod := range models {
		r.Users[i].FromModel(mod)
	}
}
