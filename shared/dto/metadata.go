package dto

import (
	"roombooking/shared/constant"
	"roombooking/shared/model"
	"roombooking/shared/timezone"
	"time"
)

// Metadata is the audit block rendered on directory responses, timestamps in the application timezone.
type Metadata struct {
	CreatedAt  string `json:"created_at,omitempty"`
	ModifiedAt string `json:"modified_at,omitempty"`
	CreatedBy  string `json:"created_by,omitempty"`
	ModifiedBy string `json:"modified_by,omitempty"`
}

func (m *Metadata) FromModel(model model.Metadata) {
	m.CreatedAt = formatStamp(model.CreatedAt)
	m.ModifiedAt = formatStamp(model.ModifiedAt)
	m.CreatedBy = model.CreatedBy
	m.ModifiedBy = model.ModifiedBy
}

func formatStamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return timezone.Format(t, constant.DateFormat)
}
