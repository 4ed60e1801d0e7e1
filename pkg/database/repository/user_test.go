package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/latoulicious/vtmsu/pkg/database"
	"github.com/latoulicious/vtmsu/pkg/database/dbtest"
	"github.com/latoulicious/vtmsu/pkg/database/models"
	"github.com/latoulicious/vtmsu/pkg/database/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserAssignsID(t *testing.T) {
	repo := repository.NewUserRepository(dbtest.OpenMigrated(t))
	ctx := context.Background()

	user := &models.User{Name: "Lucita", Email: "lucita@example.com"}
	require.NoError(t, repo.CreateUser(ctx, user))

	_, err := uuid.Parse(user.ID)
	assert.NoError(t, err)

	got, err := repo.GetUserByEmail(ctx, "lucita@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "Lucita", got.Name)
}

func TestGetUserNotFound(t *testing.T) {
	repo := repository.NewUserRepository(dbtest.OpenMigrated(t))

	_, err := repo.GetUser(context.Background(), "missing")
	assert.ErrorIs(t, err, database.ErrNotFound)
	assert.True(t, repository.IsNotFound(err))
}

func TestUpdateUser(t *testing.T) {
	db := dbtest.OpenMigrated(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	user := dbtest.User(t, db, "old@example.com")
	user.Email = "new@example.com"
	user.Image = "https://example.com/me.png"
	require.NoError(t, repo.UpdateUser(ctx, user))

	got, err := repo.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", got.Email)
	assert.Equal(t, "https://example.com/me.png", got.Image)

	err = repo.UpdateUser(ctx, &models.User{ID: "missing", Email: "x@example.com"})
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestAccountsLinkAndLookup(t *testing.T) {
	db := dbtest.OpenMigrated(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	user := dbtest.User(t, db, "nosferatu@example.com")
	account := &models.Account{
		UserID:            user.ID,
		Type:              models.AccountTypeOAuth,
		Provider:          "discord",
		ProviderAccountID: "1234",
	}
	require.NoError(t, repo.LinkAccount(ctx, account))

	got, err := repo.GetUserByAccount(ctx, "discord", "1234")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	// The (provider, providerAccountId) pair is unique
	dup := *account
	err = repo.LinkAccount(ctx, &dup)
	assert.ErrorIs(t, err, database.ErrUniqueViolation)

	// Same provider account id on another provider is fine
	other := *account
	other.Provider = "google"
	require.NoError(t, repo.LinkAccount(ctx, &other))

	accounts, err := repo.AccountsOf(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, accounts, 2)

	require.NoError(t, repo.UnlinkAccount(ctx, "discord", "1234"))
	_, err = repo.GetUserByAccount(ctx, "discord", "1234")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestLinkAccountRequiresUser(t *testing.T) {
	repo := repository.NewUserRepository(dbtest.OpenMigrated(t))

	err := repo.LinkAccount(context.Background(), &models.Account{
		UserID:            "nobody",
		Type:              models.AccountTypeEmail,
		Provider:          "email",
		ProviderAccountID: "nobody@example.com",
	})
	assert.ErrorIs(t, err, database.ErrForeignKeyViolation)
}

func TestSessions(t *testing.T) {
	db := dbtest.OpenMigrated(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	user := dbtest.User(t, db, "tremere@example.com")
	expires := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.CreateSession(ctx, &models.Session{
		SessionToken: "token-1",
		UserID:       user.ID,
		Expires:      expires,
	}))

	session, err := repo.GetSessionAndUser(ctx, "token-1")
	require.NoError(t, err)
	require.NotNil(t, session.User)
	assert.Equal(t, user.ID, session.User.ID)
	assert.True(t, expires.Equal(session.Expires))

	later := expires.Add(24 * time.Hour)
	updated, err := repo.UpdateSession(ctx, "token-1", later)
	require.NoError(t, err)
	assert.True(t, later.Equal(updated.Expires))

	_, err = repo.UpdateSession(ctx, "missing", later)
	assert.ErrorIs(t, err, database.ErrNotFound)

	require.NoError(t, repo.DeleteSession(ctx, "token-1"))
	_, err = repo.GetSessionAndUser(ctx, "token-1")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestUseVerificationTokenOnce(t *testing.T) {
	repo := repository.NewUserRepository(dbtest.OpenMigrated(t))
	ctx := context.Background()

	token := &models.VerificationToken{
		Identifier: "malkav@example.com",
		Token:      "abc",
		Expires:    time.Now().Add(time.Hour).UTC(),
	}
	require.NoError(t, repo.CreateVerificationToken(ctx, token))

	dup := *token
	assert.ErrorIs(t, repo.CreateVerificationToken(ctx, &dup), database.ErrUniqueViolation)

	used, err := repo.UseVerificationToken(ctx, "malkav@example.com", "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", used.Token)

	_, err = repo.UseVerificationToken(ctx, "malkav@example.com", "abc")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestDeleteUserCascadesSignInRecords(t *testing.T) {
	db := dbtest.OpenMigrated(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	user := dbtest.User(t, db, "caitiff@example.com")
	require.NoError(t, repo.LinkAccount(ctx, &models.Account{
		UserID: user.ID, Type: models.AccountTypeOAuth, Provider: "discord", ProviderAccountID: "1",
	}))
	require.NoError(t, repo.CreateSession(ctx, &models.Session{
		SessionToken: "s", UserID: user.ID, Expires: time.Now().Add(time.Hour).UTC(),
	}))

	require.NoError(t, repo.DeleteUser(ctx, user.ID))

	var accounts, sessions int64
	require.NoError(t, db.Model(&models.Account{}).Count(&accounts).Error)
	require.NoError(t, db.Model(&models.Session{}).Count(&sessions).Error)
	assert.Zero(t, accounts)
	assert.Zero(t, sessions)

	assert.ErrorIs(t, repo.DeleteUser(ctx, user.ID), database.ErrNotFound)
}

func TestDeleteUserBlockedWhileOwningContent(t *testing.T) {
	db := dbtest.OpenMigrated(t)
	repo := repository.NewUserRepository(db)
	posts := repository.NewPostRepository(db)
	ctx := context.Background()

	user := dbtest.User(t, db, "author@example.com")
	post := &models.Post{Name: "Elysium tonight", CreatedByID: user.ID}
	require.NoError(t, posts.Create(ctx, post))

	err := repo.DeleteUser(ctx, user.ID)
	assert.ErrorIs(t, err, database.ErrForeignKeyViolation)

	require.NoError(t, posts.Delete(ctx, post.ID))
	require.NoError(t, repo.DeleteUser(ctx, user.ID))
}
