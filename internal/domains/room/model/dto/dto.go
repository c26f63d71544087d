package dto

import (
	"mime/multipart"
	"roombooking/internal/domains/room/model"
	"roombooking/shared/constant"
	gDto "roombooking/shared/dto"
	gModel "roombooking/shared/model"
	"time"
)

// CreateRoomRequest is read from a multipart form; Photo is optional.
type CreateRoomRequest struct {
	Name        string                `json:"name"         validate:"required,max=100"`
	Capacity    int                   `json:"capacity"     validate:"gte=0"`
	Location    string                `json:"location"     validate:"required,max=100"`
	Description string                `json:"description"  validate:"omitempty,max=1000"`
	Status      string                `json:"status"       validate:"omitempty,max=20"`
	Latitude    *float64              `json:"latitude"     validate:"omitempty,latitude"`
	Longitude   *float64              `json:"longitude"    validate:"omitempty,longitude"`
	FacilityIDs []int64               `json:"facility_ids" validate:"omitempty,dive,gt=0"`
	Photo       *multipart.FileHeader `json:"-"`
}

func (c *CreateRoomRequest) ToModel(actor string, photoURL string, now time.Time) model.Room {
	room := model.Room{
		Name:        c.Name,
		Capacity:    c.Capacity,
		Location:    c.Location,
		Description: c.Description,
		Latitude:    c.Latitude,
		Longitude:   c.Longitude,
		Status:      c.Status,
		Metadata:    gModel.NewMetadata(actor, now),
	}

	if room.Status == "" {
		room.Status = model.StatusAvailable
	}

	if photoURL != "" {
		room.PhotoURL = &photoURL
	}

	return room
}

// UpdateRoomRequest replaces the room's scalar fields. FacilityIDs nil leaves the association untouched; an empty
// list clears it.
type UpdateRoomRequest struct {
	ID          int64                 `json:"id"           validate:"omitempty,gt=0"`
	Name        string                `json:"name"         validate:"required,max=100"`
	Capacity    int                   `json:"capacity"     validate:"gte=0"`
	Location    string                `json:"location"     validate:"required,max=100"`
	Description string                `json:"description"  validate:"omitempty,max=1000"`
	Status      string                `json:"status"       validate:"omitempty,max=20"`
	Latitude    *float64              `json:"latitude"     validate:"omitempty,latitude"`
	Longitude   *float64              `json:"longitude"    validate:"omitempty,longitude"`
	FacilityIDs []int64               `json:"facility_ids" validate:"omitempty,dive,gt=0"`
	Photo       *multipart.FileHeader `json:"-"`
}

func (u *UpdateRoomRequest) ToUpdateFields(actor string, now time.Time) map[string]any {
	status := u.Status
	if status == "" {
		status = model.StatusAvailable
	}

	return map[string]any{
		model.FieldName:        u.Name,
		model.FieldCapacity:    u.Capacity,
		model.FieldLocation:    u.Location,
		model.FieldDescription: u.Description,
		model.FieldStatus:      status,
		model.FieldLatitude:    u.Latitude,
		model.FieldLongitude:   u.Longitude,
		constant.FieldModifiedAt: now,
		constant.FieldModifiedBy: actor,
	}
}

type ReplaceFacilitiesRequest struct {
	FacilityIDs []int64 `json:"facility_ids" validate:"dive,gt=0"`
}

type RoomResponse struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Capacity    int      `json:"capacity"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
	PhotoURL    string   `json:"photo_url"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Status      string   `json:"status"`
	Facilities  []string `json:"facilities"`
	FacilityIDs []int64  `json:"facility_ids"`
	gDto.Metadata
}

func (r *RoomResponse) FromModel(room model.Room, links []model.RoomFacility) {
	r.ID = room.ID
	r.Name = room.Name
	r.Capacity = room.Capacity
	r.Location = room.Location
	r.Description = room.Description
	r.Latitude = room.Latitude
	r.Longitude = room.Longitude
	r.Status = room.Status
	r.Metadata.FromModel(room.Metadata)

	if room.PhotoURL != nil {
		r.PhotoURL = *room.PhotoURL
	}

	r.Facilities = make([]string, 0, len(links))
	r.FacilityIDs = make([]int64, 0, len(links))

	for _, link := range links {
		r.FacilityIDs = append(r.FacilityIDs, link.FacilityID)

		if link.FacilityName != nil {
			r.Facilities = append(r.Facilities, *link.FacilityName)
		}
	}
}

func FromModels(rooms []model.Room, links map[int64][]model.RoomFacility) []RoomResponse {
	res := make([]RoomResponse, len(rooms))
	for i, room := range rooms {
		res[i].FromModel(room, links[room.ID])
	}

	return res
}
