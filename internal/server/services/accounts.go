// Package services contains server-side business logic. AccountService
// handles registration, login and the acting user's own account;
// AudioFileService manages that user's audio files.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/audiokeeper/internal/common"
	"github.com/dmitrijs2005/audiokeeper/internal/dbx"
	"github.com/dmitrijs2005/audiokeeper/internal/logging"
	"github.com/dmitrijs2005/audiokeeper/internal/server/auth"
	"github.com/dmitrijs2005/audiokeeper/internal/server/events"
	"github.com/dmitrijs2005/audiokeeper/internal/server/models"
	"github.com/dmitrijs2005/audiokeeper/internal/server/store"
)

// Messages returned to callers on authentication failures.
const (
	msgBadCredentials     = "incorrect username or password"
	msgInvalidCredentials = "could not validate credentials"
	msgInactiveUser       = "inactive user"
)

// UserStore is the persistence the account service needs.
// *store.Gateway[models.User, *models.User] implements it.
type UserStore interface {
	Create(ctx context.Context, fields store.Fields, validate store.Validator[models.User]) (*models.User, error)
	Retrieve(ctx context.Context, id string) (*models.User, error)
	RetrieveBy(ctx context.Context, column string, value any) ([]*models.User, error)
	Update(ctx context.Context, id string, fields store.Fields, validate store.Validator[models.User]) (*models.User, error)
	Delete(ctx context.Context, id string) error
}

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// TokenIssuer signs and verifies access tokens.
type TokenIssuer interface {
	Issue(subject string) (auth.Token, error)
	Verify(token string) (string, error)
}

// validateUser keeps email and username unique among live users.
var validateUser = store.UniqueExcludingSelf[models.User](store.UsersTable.Name, "email", "username")

// validateActive refuses changes to a disabled account.
func validateActive(_ context.Context, _ dbx.DBTX, u *models.User) error {
	if u.Disabled {
		return common.Unauthorized(msgInactiveUser)
	}
	return nil
}

// RegisterInput is a registration request after transport-level validation.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	FullName string
}

// UpdateInput lists the account fields a user may change. Nil means unchanged.
type UpdateInput struct {
	Username *string
	Email    *string
	FullName *string
}

func (in UpdateInput) fields() store.Fields {
	f := store.Fields{}
	if in.Username != nil {
		f["username"] = *in.Username
	}
	if in.Email != nil {
		f["email"] = *in.Email
	}
	if in.FullName != nil {
		f["full_name"] = *in.FullName
	}
	return f
}

// AccountService implements registration, login and self-service account management.
type AccountService struct {
	users  UserStore
	hasher PasswordHasher
	tokens TokenIssuer
	events events.Publisher
	logger logging.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewAccountService wires the service. A nil logger discards output.
func NewAccountService(users UserStore, hasher PasswordHasher, tokens TokenIssuer, pub events.Publisher, logger logging.Logger) *AccountService {
	if pub == nil {
		pub = events.NewNopPublisher()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &AccountService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		events: pub,
		logger: logger.With("module", "accounts"),
	}
}

// Register hashes the password and stores a new active account with the
// "user" role. Duplicate username or email is a conflict.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (models.PublicUser, error) {
	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, common.ErrorValidation) {
			return models.PublicUser{}, err
		}
		return models.PublicUser{}, fmt.Errorf("%w: hash password: %w", common.ErrorInternal, err)
	}

	u, err := s.users.Create(ctx, store.Fields{
		"username":      in.Username,
		"email":         in.Email,
		"password_hash": digest,
		"full_name":     in.FullName,
		"role":          common.RoleUser,
		"disabled":      false,
	}, validateUser)
	if err != nil {
		return models.PublicUser{}, err
	}

	pub := u.Public()
	if err := s.events.AccountRegistered(ctx, pub); err != nil {
		s.logger.Warn(ctx, "account.registered not published", "user_id", pub.ID, "error", err)
	}

	s.logger.Info(ctx, "account registered", "user_id", pub.ID)
	return pub, nil
}

// Login checks the credentials and issues an access token whose subject is
// the user id. Unknown users, wrong passwords and disabled accounts all get
// the same error.
func (s *AccountService) Login(ctx context.Context, username, password string) (auth.Token, error) {
	found, err := s.users.RetrieveBy(ctx, "username", username)
	if err != nil {
		return auth.Token{}, err
	}

	if len(found) == 0 {
		// spend the same bcrypt work as for a real user
		s.hasher.Verify(password, s.dummyDigest())
		return auth.Token{}, common.Unauthorized(msgBadCredentials)
	}

	u := found[0]
	if !s.hasher.Verify(password, u.PasswordHash) || u.Disabled {
		return auth.Token{}, common.Unauthorized(msgBadCredentials)
	}

	tok, err := s.tokens.Issue(u.ID)
	if err != nil {
		return auth.Token{}, fmt.Errorf("%w: issue token: %w", common.ErrorInternal, err)
	}
	return tok, nil
}

// Authenticate verifies token and returns its subject. The subject must
// resolve to a live, enabled account: a deleted account yields
// common.ErrorNotFound even while the token itself is still valid.
func (s *AccountService) Authenticate(ctx context.Context, token string) (string, error) {
	subject, err := s.tokens.Verify(token)
	if err != nil {
		return "", common.Unauthorized(msgInvalidCredentials)
	}

	if _, err := s.active(ctx, subject); err != nil {
		return "", err
	}
	return subject, nil
}

// Me returns the acting user's public projection.
func (s *AccountService) Me(ctx context.Context, subject string) (models.PublicUser, error) {
	u, err := s.active(ctx, subject)
	if err != nil {
		return models.PublicUser{}, err
	}
	return u.Public(), nil
}

// UpdateMe changes username, email or full name of the acting user.
func (s *AccountService) UpdateMe(ctx context.Context, subject string, in UpdateInput) (models.PublicUser, error) {
	u, err := s.users.Update(ctx, subject, in.fields(), store.Chain[models.User](validateActive, validateUser))
	if err != nil {
		return models.PublicUser{}, err
	}
	return u.Public(), nil
}

// DeleteMe soft-deletes the acting user together with their audio files.
func (s *AccountService) DeleteMe(ctx context.Context, subject string) error {
	if _, err := s.active(ctx, subject); err != nil {
		return err
	}

	if err := s.users.Delete(ctx, subject); err != nil {
		return err
	}

	if err := s.events.AccountDeleted(ctx, subject); err != nil {
		s.logger.Warn(ctx, "account.deleted not published", "user_id", subject, "error", err)
	}

	s.logger.Info(ctx, "account deleted", "user_id", subject)
	return nil
}

func (s *AccountService) active(ctx context.Context, subject string) (*models.User, error) {
	u, err := s.users.Retrieve(ctx, subject)
	if err != nil {
		return nil, err
	}
	if u.Disabled {
		return nil, common.Unauthorized(msgInactiveUser)
	}
	return u, nil
}

func (s *AccountService) dummyDigest() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("audiokeeper-timing-equaliser")
	})
	return s.dummyHash
}
