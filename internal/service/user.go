package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/Ak-theArtist/A-Kart-mobile-backend/internal/auth"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/internal/domain"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/internal/event"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/internal/repository"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/internal/storage"
	apperrors "github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/errors"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/pagination"
)

const bcryptCost = 12

// UserService handles registration, authentication and account management.
type UserService struct {
	users  repository.UserRepository
	tokens *auth.JWTManager
	images storage.Storage
	events event.Publisher
	log    *slog.Logger
}

// NewUserService creates a user service.
func NewUserService(
	users repository.UserRepository,
	tokens *auth.JWTManager,
	images storage.Storage,
	events event.Publisher,
	log *slog.Logger,
) *UserService {
	return &UserService{users: users, tokens: tokens, images: images, events: events, log: log}
}

// RegisterInput holds the fields needed to create an account. Answer is the
// security answer later required to reset a forgotten password.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Address  string
	City     string
	Country  string
	Phone    string
	Answer   string
}

// Register creates a customer account and returns the user with a session
// token. Duplicate emails are rejected with a conflict.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*domain.User, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Name:     input.Name,
		Email:    input.Email,
		Password: string(hash),
		Address:  input.Address,
		City:     input.City,
		Country:  input.Country,
		Phone:    input.Phone,
		Answer:   input.Answer,
		Role:     domain.RoleCustomer,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, "", apperrors.Conflict("an account with this email already exists")
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Generate(user.ID.Hex(), string(user.Role))
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}

	s.events.UserRegistered(ctx, user)
	s.log.InfoContext(ctx, "user registered", slog.String("user_id", user.ID.Hex()))

	return user, token, nil
}

// Login authenticates by email and password. Both an unknown email and a
// wrong password produce the same unauthorized error.
func (s *UserService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, "", apperrors.Unauthorized("invalid email or password")
		}
		return nil, "", fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", apperrors.Unauthorized("invalid email or password")
	}

	token, err := s.tokens.Generate(user.ID.Hex(), string(user.Role))
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}

	return user, token, nil
}

// GetByID returns a single user.
func (s *UserService) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("user", id.Hex())
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// List returns all users, paginated. Admin only; enforced at the router.
func (s *UserService) List(ctx context.Context, params pagination.Params) ([]domain.User, int, error) {
	users, total, err := s.users.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

// UpdateProfileInput holds the updatable profile fields. Nil fields are left
// unchanged.
type UpdateProfileInput struct {
	Name    *string
	Email   *string
	Address *string
	City    *string
	Country *string
	Phone   *string
}

// UpdateProfile updates the user's own profile.
func (s *UserService) UpdateProfile(ctx context.Context, id primitive.ObjectID, input UpdateProfileInput) (*domain.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.Address != nil {
		user.Address = *input.Address
	}
	if input.City != nil {
		user.City = *input.City
	}
	if input.Country != nil {
		user.Country = *input.Country
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, apperrors.Conflict("an account with this email already exists")
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	return user, nil
}

// UpdatePassword changes the user's password after verifying the current one.
func (s *UserService) UpdatePassword(ctx context.Context, id primitive.ObjectID, oldPassword, newPassword string) error {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return apperrors.Unauthorized("old password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user.Password = string(hash)
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	s.log.InfoContext(ctx, "password updated", slog.String("user_id", id.Hex()))
	return nil
}

// ResetPassword sets a new password for the account matching both the email
// and the security answer. An unknown email and a wrong answer produce the
// same unauthorized error.
func (s *UserService) ResetPassword(ctx context.Context, email, answer, newPassword string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.Unauthorized("invalid email or answer")
		}
		return fmt.Errorf("find user: %w", err)
	}

	if user.Answer == "" || user.Answer != answer {
		return apperrors.Unauthorized("invalid email or answer")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user.Password = string(hash)
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	s.log.InfoContext(ctx, "password reset", slog.String("user_id", user.ID.Hex()))
	return nil
}

// UpdateProfilePic replaces the user's profile picture. The previous remote
// asset is destroyed before the new one is uploaded; if persisting the new
// reference fails the fresh upload is destroyed again.
func (s *UserService) UpdateProfilePic(ctx context.Context, id primitive.ObjectID, upload ImageUpload) (*domain.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if user.ProfilePic != nil {
		if err := s.images.Destroy(ctx, user.ProfilePic.PublicID); err != nil {
			return nil, fmt.Errorf("destroy previous profile picture: %w", err)
		}
	}

	result, err := s.images.Upload(ctx, upload.Filename, bytes.NewReader(upload.Data))
	if err != nil {
		return nil, fmt.Errorf("upload profile picture: %w", err)
	}

	user.ProfilePic = &domain.Image{PublicID: result.PublicID, URL: result.URL}
	if err := s.users.Update(ctx, user); err != nil {
		if derr := s.images.Destroy(ctx, result.PublicID); derr != nil {
			s.log.WarnContext(ctx, "profile picture cleanup failed",
				slog.String("public_id", result.PublicID), slog.String("error", derr.Error()))
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	return user, nil
}

// UpdateRole changes a user's role. Admin only; enforced at the router.
func (s *UserService) UpdateRole(ctx context.Context, id primitive.ObjectID, role domain.Role) (*domain.User, error) {
	if !role.Valid() {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown role %q", role))
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Role = role
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user role: %w", err)
	}

	s.log.InfoContext(ctx, "user role changed",
		slog.String("user_id", id.Hex()), slog.String("role", string(role)))

	return user, nil
}

// Delete removes a user account. Admin only; enforced at the router.
func (s *UserService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NotFound("user", id.Hex())
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
