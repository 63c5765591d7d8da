package dto

import (
	"courtside/shared/constant"
	"courtside/shared/model"
	"courtside/shared/timezone"
)

// Metadata is the audit trail rendered in the application timezone.
type Metadata struct {
	CreatedAt  string `json:"created_at"`
	ModifiedAt string `json:"modified_at"`
	CreatedBy  string `json:"created_by,omitempty"`
	ModifiedBy string `json:"modified_by,omitempty"`
}

func (m *Metadata) FromModel(model model.Metadata) {
	*m = Metadata{
		CreatedAt:  timezone.Format(model.CreatedAt, constant.DateFormat),
		ModifiedAt: timezone.Format(model.ModifiedAt, constant.DateFormat),
		CreatedBy:  model.CreatedBy,
		ModifiedBy: model.ModifiedBy,
	}
}
