package dto

import (
	"courtside/infras/jwt"
	userModel "courtside/internal/domains/user/model"
	"courtside/shared/constant"
	gModel "courtside/shared/model"
	"courtside/shared/timezone"
	"strings"
)

type RegisterRequest struct {
	FullName string `json:"full_name" validate:"required,max=120"`
	Email    string `json:"email"     validate:"required,email"`
	Phone    string `json:"phone"     validate:"required,mobile"`
	Password string `json:"password"  validate:"required,min=8,max=72"`
}

func (r *RegisterRequest) Normalize() {
	r.FullName = strings.TrimSpace(r.FullName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)
}

func (r *RegisterRequest) ToUserModel(hashedPassword string) userModel.User {
	now := timezone.Now()

	return userModel.User{
		FullName: r.FullName,
		Email:    r.Email,
		Phone:    r.Phone,
		Password: hashedPassword,
		Level:    userModel.LevelCustomer,
		Active:   true,
		Metadata: gModel.Metadata{
			CreatedAt:  now,
			ModifiedAt: now,
			CreatedBy:  constant.ContextGuest,
			ModifiedBy: constant.ContextGuest,
		},
	}
}

// ToClaimFields upgrades a guest account created by an earlier booking.
func (r *RegisterRequest) ToClaimFields(hashedPassword string) map[string]any {
	return map[string]any{
		userModel.FieldFullName:  r.FullName,
		userModel.FieldPassword:  hashedPassword,
		userModel.FieldLevel:     userModel.LevelCustomer,
		userModel.FieldActive:    true,
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: constant.ContextGuest,
	}
}

type RegisterResponse struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Claimed  bool   `json:"claimed"`
}

func (r *RegisterResponse) FromModel(user userModel.User, claimed bool) {
	r.ID = user.ID
	r.FullName = user.FullName
	r.Email = user.Email
	r.Phone = user.Phone
	r.Claimed = claimed
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

func (l *LoginResponse) FromTokenPair(tokenPair *jwt.TokenPair) {
	l.AccessToken = tokenPair.AccessToken
	l.RefreshToken = tokenPair.RefreshToken
	l.TokenType = tokenPair.TokenType
	l.ExpiresIn = tokenPair.ExpiresIn
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type RefreshTokenResponse = LoginResponse

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8,max=72,nefield=CurrentPassword"`
}

func (c *ChangePasswordRequest) ToFields(hashedPassword string, actor string) map[string]any {
	return PasswordFields(hashedPassword, actor)
}

// PasswordFields stores a new hash for the user.
func PasswordFields(hashedPassword string, actor string) map[string]any {
	return map[string]any{
		userModel.FieldPassword:  hashedPassword,
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: actor,
	}
}
