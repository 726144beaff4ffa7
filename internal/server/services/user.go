// This file implements UserService, the account lifecycle manager:
// registration, login, profile updates, avatar handling, and account
// deletion with its task cascade.
package services

import (
	"context"
	"database/sql"
	"errors"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/taskit/internal/common"
	"github.com/dmitrijs2005/taskit/internal/dbx"
	"github.com/dmitrijs2005/taskit/internal/logging"
	"github.com/dmitrijs2005/taskit/internal/server/avatar"
	"github.com/dmitrijs2005/taskit/internal/server/blob"
	"github.com/dmitrijs2005/taskit/internal/server/config"
	mailer "github.com/dmitrijs2005/taskit/internal/server/mail"
	"github.com/dmitrijs2005/taskit/internal/server/models"
	"github.com/dmitrijs2005/taskit/internal/server/repositories/repomanager"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 7

// UserService orchestrates account creation, authentication, mutation, and
// deletion. Password hashing always happens here, before persistence, so a
// plaintext password never reaches a repository.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      *TokenService
	notifier    mailer.Notifier
	blobs       blob.Store
	normalizer  avatar.Normalizer
	logger      logging.Logger
	bcryptCost  int
}

// NewUserService constructs a UserService with its collaborators.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, tokens *TokenService,
	notifier mailer.Notifier, blobs blob.Store, normalizer avatar.Normalizer,
	logger logging.Logger, cfg *config.Config) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		tokens:      tokens,
		notifier:    notifier,
		blobs:       blobs,
		normalizer:  normalizer,
		logger:      logger.With("module", "user_service"),
		bcryptCost:  cfg.BcryptCost,
	}
}

// RegisterRequest carries the fields accepted at account creation.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Age      int    `json:"age"`
}

// ProfileUpdate is the explicit allow-list of mutable profile fields. Nil
// means "leave unchanged"; an update with every field nil is invalid.
type ProfileUpdate struct {
	Name     *string `json:"name"`
	Age      *int    `json:"age"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// IsEmpty reports whether no field is set.
func (u ProfileUpdate) IsEmpty() bool {
	return u.Name == nil && u.Age == nil && u.Email == nil && u.Password == nil
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func validatePassword(ve *common.ValidationError, password string) {
	if len(password) < MinPasswordLength {
		ve.Add("password", "password must be at least 7 characters")
	}
	if strings.Contains(strings.ToLower(password), "password") {
		ve.Add("password", `password cannot contain "password"`)
	}
}

func validateProfile(ve *common.ValidationError, name, email string, age int) {
	if name == "" {
		ve.Add("name", "please enter your name")
	}
	if !validEmail(email) {
		ve.Add("email", "invalid email format")
	}
	if age < 0 {
		ve.Add("age", "only positive values for age")
	}
}

// checkEmailFree records a field error when email is already taken by an
// account other than selfID.
func (s *UserService) checkEmailFree(ctx context.Context, ve *common.ValidationError, email, selfID string) error {
	existing, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return common.ErrorInternal
	}
	if existing.ID != selfID {
		ve.Add("email", "email already in use")
	}
	return nil
}

// Register creates an account and immediately issues a session token. Both
// must succeed before the caller sees success; the welcome notification is
// fire-and-forget.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*models.User, string, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	ve := common.NewValidationError()
	validateProfile(ve, name, email, req.Age)
	validatePassword(ve, req.Password)
	if !ve.HasErrors() {
		if err := s.checkEmailFree(ctx, ve, email, ""); err != nil {
			return nil, "", err
		}
	}
	if ve.HasErrors() {
		return nil, "", ve
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, "", common.ErrorInternal
	}

	user := &models.User{Name: name, Email: email, PasswordHash: string(hash), Age: req.Age}
	user, err = s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		return nil, "", common.ErrorInternal
	}

	token, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	s.notify(user.Email, user.Name, s.notifier.SendWelcome)

	return user, token, nil
}

// Login verifies credentials and issues a new session token. Unknown email
// and wrong password fail identically.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, "", common.ErrorUnauthorized
		}
		return nil, "", common.ErrorInternal
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", common.ErrorUnauthorized
	}

	token, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// VerifyPassword reports whether plaintext matches the stored hash.
func (s *UserService) VerifyPassword(user *models.User, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(plaintext)) == nil
}

// UpdateProfile applies an allow-listed field update to the account. The
// record is loaded, mutated, re-validated as a whole, and saved, so email
// re-validation and password re-hashing fire whenever those fields change.
func (s *UserService) UpdateProfile(ctx context.Context, user *models.User, upd ProfileUpdate) (*models.User, error) {
	if upd.IsEmpty() {
		return nil, common.FieldError("updates", "invalid updates being applied")
	}

	updated := *user
	if upd.Name != nil {
		updated.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.Age != nil {
		updated.Age = *upd.Age
	}
	if upd.Email != nil {
		updated.Email = strings.ToLower(strings.TrimSpace(*upd.Email))
	}

	ve := common.NewValidationError()
	validateProfile(ve, updated.Name, updated.Email, updated.Age)
	if upd.Password != nil {
		validatePassword(ve, *upd.Password)
	}
	if !ve.HasErrors() && updated.Email != user.Email {
		if err := s.checkEmailFree(ctx, ve, updated.Email, user.ID); err != nil {
			return nil, err
		}
	}
	if ve.HasErrors() {
		return nil, ve
	}

	if upd.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*upd.Password), s.bcryptCost)
		if err != nil {
			return nil, common.ErrorInternal
		}
		updated.PasswordHash = string(hash)
	}

	saved, err := s.repomanager.Users(s.db).Update(ctx, &updated)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	return saved, nil
}

// DeleteAccount removes the account together with all of its tasks and
// session tokens in one transaction: deletion is not reported complete
// until the cascade is. The cancellation notification and avatar blob
// cleanup are best-effort afterwards.
func (s *UserService) DeleteAccount(ctx context.Context, user *models.User) (*models.User, error) {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Tasks(tx).DeleteAllForOwner(ctx, user.ID); err != nil {
			return err
		}
		if err := s.repomanager.SessionTokens(tx).DeleteAllForUser(ctx, user.ID); err != nil {
			return err
		}
		return s.repomanager.Users(tx).Delete(ctx, user.ID)
	})
	if err != nil {
		return nil, common.ErrorInternal
	}

	if user.HasAvatar() {
		if err := s.blobs.Delete(ctx, *user.AvatarKey); err != nil {
			s.logger.Warn(ctx, "avatar cleanup failed", "user_id", user.ID, "error", err.Error())
		}
	}

	s.notify(user.Email, user.Name, s.notifier.SendCancellation)

	return user, nil
}

// SetAvatar normalizes the uploaded image and stores it through the blob
// store, recording the key on the account.
func (s *UserService) SetAvatar(ctx context.Context, user *models.User, data []byte) error {
	normalized, err := s.normalizer.Normalize(data)
	if err != nil {
		return err
	}

	key := "avatars/" + user.ID + ".png"
	if err := s.blobs.Put(ctx, key, normalized, avatar.ContentType); err != nil {
		return common.ErrorInternal
	}

	user.AvatarKey = &key
	if _, err := s.repomanager.Users(s.db).Update(ctx, user); err != nil {
		return common.ErrorInternal
	}
	return nil
}

// ClearAvatar removes the account's avatar. Reports not-found when there
// is none to remove.
func (s *UserService) ClearAvatar(ctx context.Context, user *models.User) error {
	if !user.HasAvatar() {
		return common.ErrorNotFound
	}

	key := *user.AvatarKey
	user.AvatarKey = nil
	if _, err := s.repomanager.Users(s.db).Update(ctx, user); err != nil {
		return common.ErrorInternal
	}

	if err := s.blobs.Delete(ctx, key); err != nil {
		s.logger.Warn(ctx, "avatar blob delete failed", "user_id", user.ID, "error", err.Error())
	}
	return nil
}

// GetAvatar returns the normalized avatar bytes for any account id. Absent
// account and absent avatar are the same not-found.
func (s *UserService) GetAvatar(ctx context.Context, userID string) ([]byte, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	if !user.HasAvatar() {
		return nil, common.ErrorNotFound
	}
	return s.blobs.Get(ctx, *user.AvatarKey)
}

// notify delivers a lifecycle email in the background. Failures are
// logged and never affect the request that triggered them.
func (s *UserService) notify(email, name string, send func(context.Context, string, string) error) {
	go func() {
		if err := send(context.Background(), email, name); err != nil {
			s.logger.Warn(context.Background(), "notification failed", "email", email, "error", err.Error())
		}
	}()
}
