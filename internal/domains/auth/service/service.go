package service

import (
	"context"
	"courtside/config"
	"courtside/infras/jwt"
	"courtside/infras/otel"
	"courtside/internal/domains/auth/model/dto"
	userModel "courtside/internal/domains/user/model"
	userRepo "courtside/internal/domains/user/repository"
	"courtside/shared"
	"courtside/shared/constant"
	gDto "courtside/shared/dto"
	"courtside/shared/failure"
	"courtside/shared/password"
	"fmt"

	"github.com/rs/zerolog/log"
)

const invalidCredentials = "invalid email or password"

type Auth interface {
	Register(ctx context.Context, req dto.RegisterRequest) (dto.RegisterResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error)
	RefreshToken(ctx context.Context, req dto.RefreshTokenRequest) (dto.RefreshTokenResponse, error)
	ChangePassword(ctx context.Context, req dto.ChangePasswordRequest, userID int64) error
}

type serviceImpl struct {
	userRepo   userRepo.User
	cfg        *config.Config
	otel       otel.Otel
	jwtService jwt.JWT
}

func New(userRepo userRepo.User, cfg *config.Config, otel otel.Otel, jwt jwt.JWT) Auth {
	return &serviceImpl{
		userRepo:   userRepo,
		cfg:        cfg,
		otel:       otel,
		jwtService: jwt,
	}
}

func byEmail(email string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    userModel.FieldEmail,
				Operator: gDto.FilterOperatorEq,
				Value:    email,
				Table:    userModel.TableName,
			},
		},
	}
}

// Register creates a customer account. A guest account left behind by an
// earlier booking with the same email is claimed instead of duplicated.
func (s *serviceImpl) Register(ctx context.Context, req dto.RegisterRequest) (res dto.RegisterResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auth.Register")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	req.Normalize()

	existing, err := s.userRepo.Get(ctx, byEmail(req.Email))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if user exists")

		return res, failure.Storage(err)
	}

	if existing.ID != 0 && !existing.IsGuest() {
		return res, failure.Conflict("email already registered")
	}

	hashedPassword, err := password.Hash(req.Password)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash password")

		return res, fmt.Errorf("failed to hash password: %w", err)
	}

	if existing.ID != 0 {
		err = s.userRepo.Update(ctx, req.ToClaimFields(hashedPassword), shared.FilterByID(existing.ID, userModel.FieldID, userModel.TableName))
		if err != nil {
			log.Error().Err(err).Int64("user_id", existing.ID).Msg("failed to claim guest account")

			return res, failure.Storage(err)
		}

		existing.FullName = req.FullName
		res.FromModel(existing, true)

		return res, nil
	}

	user := req.ToUserModel(hashedPassword)

	user.ID, err = s.userRepo.InsertReturningID(ctx, user)
	if err != nil {
		log.Error().Err(err).Msg("failed to create user")

		return res, failure.Storage(err)
	}

	res.FromModel(user, false)

	return res, nil
}

func (s *serviceImpl) Login(ctx context.Context, req dto.LoginRequest) (res dto.LoginResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auth.Login")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, err := s.userRepo.Get(ctx, byEmail(req.Email))
	if err != nil {
		log.Error().Err(err).Msg("failed to get user")

		return res, failure.Storage(err)
	}

	// Guests never chose a password, so they cannot log in until they register.
	if user.ID == 0 || user.IsGuest() {
		log.Warn().Str("email", req.Email).Msg("login attempt with unknown email")

		return res, failure.Unauthorized(invalidCredentials)
	}

	if err := password.Verify(req.Password, user.Password); err != nil {
		log.Warn().Str("email", req.Email).Msg("login attempt with wrong password")

		return res, failure.Unauthorized(invalidCredentials)
	}

	if !user.Active {
		return res, failure.Forbidden("user account is deactivated")
	}

	s.upgradeHash(ctx, user, req.Password)

	tokenPair, err := s.jwtService.GenerateTokenPair(jwt.Subject{UserID: user.ID, Email: user.Email, Role: user.Role()})
	if err != nil {
		log.Error().Err(err).Msg("failed to generate tokens")

		return res, fmt.Errorf("failed to generate tokens: %w", err)
	}

	res.FromTokenPair(tokenPair)

	return res, nil
}

// upgradeHash re-hashes passwords stored below the current bcrypt cost. Failure only costs the upgrade.
func (s *serviceImpl) upgradeHash(ctx context.Context, user userModel.User, plain string) {
	if !password.NeedsRehash(user.Password) {
		return
	}

	hashedPassword, err := password.Hash(plain)
	if err != nil {
		log.Warn().Err(err).Int64("user_id", user.ID).Msg("failed to rehash password")

		return
	}

	filter := shared.FilterByID(user.ID, userModel.FieldID, userModel.TableName)
	if err := s.userRepo.Update(ctx, dto.PasswordFields(hashedPassword, fmt.Sprint(user.ID)), filter); err != nil {
		log.Warn().Err(err).Int64("user_id", user.ID).Msg("failed to store upgraded password hash")
	}
}

func (s *serviceImpl) RefreshToken(ctx context.Context, req dto.RefreshTokenRequest) (res dto.RefreshTokenResponse, err error) {
	_, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auth.RefreshToken")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	tokenPair, err := s.jwtService.RefreshTokens(req.RefreshToken)
	if err != nil {
		log.Warn().Err(err).Msg("failed to refresh tokens")

		return res, failure.Unauthorized("invalid refresh token")
	}

	res.FromTokenPair(tokenPair)

	return res, nil
}

func (s *serviceImpl) ChangePassword(ctx context.Context, req dto.ChangePasswordRequest, userID int64) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auth.ChangePassword")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter := shared.FilterByID(userID, userModel.FieldID, userModel.TableName)

	user, err := s.userRepo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get user")

		return failure.Storage(err)
	}

	if user.ID == 0 {
		return failure.NotFound("user not found")
	}

	if err := password.Verify(req.CurrentPassword, user.Password); err != nil {
		return failure.BadRequestFromString("current password is incorrect")
	}

	hashedPassword, err := password.Hash(req.NewPassword)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash new password")

		return fmt.Errorf("failed to hash new password: %w", err)
	}

	if err = s.userRepo.Update(ctx, req.ToFields(hashedPassword, fmt.Sprint(userID)), filter); err != nil {
		log.Error().Err(err).Msg("failed to update password")

		return failure.Storage(err)
	}

	return nil
}
