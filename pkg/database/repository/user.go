package repository

import (
	"context"
	"time"

	"github.com/latoulicious/vtmsu/pkg/database"
	"github.com/latoulicious/vtmsu/pkg/database/models"
	"github.com/latoulicious/vtmsu/pkg/logging"
	"gorm.io/gorm"
)

// UserRepository handles users and the sign-in records attached to them:
// provider accounts, sessions and verification tokens
type UserRepository struct {
	db     *gorm.DB
	logger logging.Logger
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db, logger: repoLogger("user")}
}

// CreateUser inserts a user, generating its id when empty
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	return database.Classify(r.db.WithContext(ctx).Create(user).Error)
}

// GetUser returns the user with the given id
func (r *UserRepository) GetUser(ctx context.Context, id string) (*models.User, error) {
	return first[models.User](ctx, r.db, eq("id", id))
}

// GetUserByEmail returns the user registered with email
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return first[models.User](ctx, r.db, eq("email", email))
}

// GetUserByAccount returns the user linked to a provider account
func (r *UserRepository) GetUserByAccount(ctx context.Context, provider, providerAccountID string) (*models.User, error) {
	account, err := first[models.Account](ctx, r.db.Preload("User"),
		eq("provider", provider), eq("providerAccountId", providerAccountID))
	if err != nil {
		return nil, err
	}
	if account.User == nil {
		return nil, database.ErrNotFound
	}
	return account.User, nil
}

// UpdateUser overwrites the profile fields of an existing user
func (r *UserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	res := r.db.WithContext(ctx).Model(&models.User{ID: user.ID}).
		Select("name", "email", "emailVerified", "image").
		Updates(user)
	if res.Error != nil {
		return database.Classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// DeleteUser deletes a user together with its accounts and sessions.
// It fails with ErrForeignKeyViolation while the user still owns content.
func (r *UserRepository) DeleteUser(ctx context.Context, id string) error {
	if err := remove(ctx, r.db, &models.User{}, eq("id", id)); err != nil {
		r.logger.Warn("Failed to delete user", map[string]interface{}{
			"user_id": id,
			"error":   err.Error(),
		})
		return err
	}
	r.logger.Info("User deleted", map[string]interface{}{"user_id": id})
	return nil
}

// LinkAccount attaches a provider account to a user
func (r *UserRepository) LinkAccount(ctx context.Context, account *models.Account) error {
	return database.Classify(r.db.WithContext(ctx).Omit("User").Create(account).Error)
}

// UnlinkAccount removes a provider account
func (r *UserRepository) UnlinkAccount(ctx context.Context, provider, providerAccountID string) error {
	return remove(ctx, r.db, &models.Account{},
		eq("provider", provider), eq("providerAccountId", providerAccountID))
}

// AccountsOf lists the provider accounts of a user
func (r *UserRepository) AccountsOf(ctx context.Context, userID string) ([]models.Account, error) {
	var accounts []models.Account
	if err := r.db.WithContext(ctx).Where(eq("userId", userID)).Find(&accounts).Error; err != nil {
		return nil, database.Classify(err)
	}
	return accounts, nil
}

// CreateSession stores a new session
func (r *UserRepository) CreateSession(ctx context.Context, session *models.Session) error {
	return database.Classify(r.db.WithContext(ctx).Omit("User").Create(session).Error)
}

// GetSessionAndUser returns the session with its user loaded
func (r *UserRepository) GetSessionAndUser(ctx context.Context, sessionToken string) (*models.Session, error) {
	session, err := first[models.Session](ctx, r.db.Preload("User"), eq("sessionToken", sessionToken))
	if err != nil {
		return nil, err
	}
	if session.User == nil {
		return nil, database.ErrNotFound
	}
	return session, nil
}

// UpdateSession moves the expiry of a session
func (r *UserRepository) UpdateSession(ctx context.Context, sessionToken string, expires time.Time) (*models.Session, error) {
	res := r.db.WithContext(ctx).Model(&models.Session{}).
		Where(eq("sessionToken", sessionToken)).
		Update("expires", expires.UTC())
	if res.Error != nil {
		return nil, database.Classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, database.ErrNotFound
	}
	return first[models.Session](ctx, r.db, eq("sessionToken", sessionToken))
}

// DeleteSession removes a session
func (r *UserRepository) DeleteSession(ctx context.Context, sessionToken string) error {
	return remove(ctx, r.db, &models.Session{}, eq("sessionToken", sessionToken))
}

// CreateVerificationToken stores a single-use token
func (r *UserRepository) CreateVerificationToken(ctx context.Context, token *models.VerificationToken) error {
	return database.Classify(r.db.WithContext(ctx).Create(token).Error)
}

// UseVerificationToken deletes the token and returns it.
// A token can be used once; later calls fail with ErrNotFound.
func (r *UserRepository) UseVerificationToken(ctx context.Context, identifier, token string) (*models.VerificationToken, error) {
	var used *models.VerificationToken
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		vt, err := first[models.VerificationToken](ctx, tx, eq("identifier", identifier), eq("token", token))
		if err != nil {
			return err
		}
		if err := remove(ctx, tx, &models.VerificationToken{}, eq("identifier", identifier), eq("token", token)); err != nil {
			return err
		}
		used = vt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return used, nil
}
