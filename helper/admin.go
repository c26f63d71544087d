package helper

import (
	"context"
	"errors"
	"fmt"
	"roombooking/config"
	"roombooking/infras/otel"
	"roombooking/infras/postgres"
	"roombooking/internal/domains/user/model"
	"roombooking/internal/domains/user/model/dto"
	"roombooking/internal/domains/user/repository"
	"roombooking/shared/constant"
	"roombooking/shared/password"
	"roombooking/shared/timezone"
	"roombooking/shared/validator"

	"github.com/rs/zerolog/log"
)

const adminActor = "system"

type AdminRequest struct {
	Name     string `validate:"required,max=100"`
	Email    string `validate:"required,email,max=100"`
	Password string `validate:"required,min=6,max=72"`
}

var errAdminRequest = errors.New("invalid admin account")

// CreateAdmin opens its own connection and ensures an admin account exists for req.Email.
func CreateAdmin(ctx context.Context, cfg *config.Config, req AdminRequest) error {
	db := postgres.New(cfg)
	defer db.Close()

	return EnsureAdmin(ctx, repository.New(db, otel.NewLocal()), req)
}

// EnsureAdmin inserts the account, or promotes and re-keys it when the email is already registered.
func EnsureAdmin(ctx context.Context, repo repository.User, req AdminRequest) error {
	if err := validator.ValidateStruct(&req); err != nil {
		return fmt.Errorf("%w: %w", errAdminRequest, err)
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	exists, err := repo.Exist(ctx, repository.ByEmail(req.Email))
	if err != nil {
		return fmt.Errorf("checking existing account: %w", err)
	}

	if exists {
		_, err = repo.UpdateCount(ctx, map[string]any{
			model.FieldRole:          constant.RoleAdmin,
			model.FieldPassword:      hashed,
			constant.FieldModifiedBy: adminActor,
			constant.FieldModifiedAt: timezone.Now(),
		}, repository.ByEmail(req.Email))
		if err != nil {
			return fmt.Errorf("promoting account: %w", err)
		}

		log.Info().Str("email", req.Email).Msg("Existing account promoted to admin")

		return nil
	}

	create := dto.CreateUserRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     constant.RoleAdmin,
	}

	id, err := repo.InsertReturningID(ctx, create.ToModel(adminActor, hashed, timezone.Now()))
	if err != nil {
		return fmt.Errorf("creating account: %w", err)
	}

	log.Info().Int64("id", id).Str("email", req.Email).Msg("Admin account created")

	return nil
}
