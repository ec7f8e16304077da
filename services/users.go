package services

import (
	"context"
	"errors"
	"log/slog"

	"competition-system/database"
	"competition-system/models"
	"competition-system/security"

	"gorm.io/gorm"
)

// PasswordHasher is the one-way hash the user store keeps instead of plaintext.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hashed string) bool
}

type UserService struct {
	DB     *gorm.DB
	Hasher PasswordHasher
}

func NewUserService(db *gorm.DB, hasher PasswordHasher) *UserService {
	if hasher == nil {
		hasher = security.PasswordHasher{}
	}
	return &UserService{DB: db, Hasher: hasher}
}

var userConstraints = constraintErrors{
	database.UniqueUsersUsername: ErrUsernameTaken,
	// bcrypt salts every hash, so this only fires on a forced duplicate write.
	database.UniqueUsersPassword: ErrConflict,
}

// CreateUser hashes password and stores the account. There is no update path.
func (s *UserService) CreateUser(ctx context.Context, username, password string, superuser bool) (*models.User, error) {
	hashed, err := s.Hasher.Hash(password)
	if errors.Is(err, security.ErrPasswordTooLong) {
		return nil, ErrPasswordTooLong
	}
	if err != nil {
		return nil, err
	}
	user := models.User{
		Username:    username,
		Password:    hashed,
		IsSuperuser: superuser,
	}
	if err := s.DB.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, translate(err, userConstraints)
	}
	return &user, nil
}

// GetUserByUsername matches the username exactly.
func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, translate(err, nil)
	}
	return &user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, username string) error {
	res := s.DB.WithContext(ctx).Where("username = ?", username).Delete(&models.User{})
	if res.Error != nil {
		return translate(res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// EnsureSuperuser creates the bootstrap account unless a user with that name exists.
// An existing account is left as is.
func (s *UserService) EnsureSuperuser(ctx context.Context, username, password string) (*models.User, error) {
	existing, err := s.GetUserByUsername(ctx, username)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	user, err := s.CreateUser(ctx, username, password, true)
	if errors.Is(err, ErrUsernameTaken) {
		// created concurrently by another instance
		return s.GetUserByUsername(ctx, username)
	}
	if err != nil {
		return nil, err
	}
	slog.Info("Created superuser", "username", username)
	return user, nil
}
