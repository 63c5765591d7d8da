package model

import "courtside/shared/model"

const (
	TableName  = "facilities"
	EntityName = "facility"

	FieldID     = "id"
	FieldName   = "name"
	FieldStatus = "status"
)

const (
	StatusActive = "active"
)

type Facility struct {
	ID      int64  `db:"id"`
	Name    string `db:"name"`
	Address string `db:"address"`
	Status  string `db:"status"`
	model.Metadata
}
