package model

import (
	"courtside/shared/constant"
	"courtside/shared/model"
)

const (
	TableName  = "users"
	EntityName = "user"

	FieldID       = "id"
	FieldFullName = "full_name"
	FieldEmail    = "email"
	FieldPhone    = "phone"
	FieldPassword = "password"
	FieldLevel    = "level"
	FieldActive   = "is_active"
)

// Level values. Guests are registered implicitly when they book.
const (
	LevelGuest    = 1
	LevelCustomer = 2
	LevelOwner    = 5
	LevelAdmin    = 9
)

type User struct {
	ID       int64  `db:"id"`
	FullName string `db:"full_name"`
	Email    string `db:"email"`
	Phone    string `db:"phone"`
	Password string `db:"password"`
	Level    int    `db:"level"`
	Active   bool   `db:"is_active"`
	model.Metadata
}

// Role maps the stored level onto the role carried in access tokens.
func (u User) Role() string {
	switch u.Level {
	case LevelAdmin:
		return constant.RoleAdmin
	case LevelOwner:
		return constant.RoleOwner
	default:
		return constant.RoleUser
	}
}

func (u User) IsGuest() bool {
	return u.Level == LevelGuest
}
