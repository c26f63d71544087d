package dto

import (
	"roombooking/internal/domains/facility/model"
	gDto "roombooking/shared/dto"
	gModel "roombooking/shared/model"
	"time"
)

type FacilityRequest struct {
	Name string `db:"name" json:"name" validate:"required,max=100"`
}

func (c *FacilityRequest) ToModel(actor string, now time.Time) model.Facility {
	return model.Facility{
		Name:     c.Name,
		Metadata: gModel.NewMetadata(actor, now),
	}
}

type FacilityResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	gDto.Metadata
}

func (r *FacilityResponse) FromModel(model model.Facility) {
	r.ID = model.ID
	r.Name = model.Name
	r.Metadata.FromModel(model.Metadata)
}

func FromModels(models []model.Facility) []FacilityResponse {
	res := make([]FacilityResponse, len(models))
	for i, mod := range models {
		res[i].FromModel(mod)
	}

	return res
}
