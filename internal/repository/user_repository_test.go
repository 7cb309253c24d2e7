package repository

import (
	"context"
	"testing"

	"github.com/cuesoftinc/cuelabs-backend/internal/airtable/airtabletest"
	"github.com/cuesoftinc/cuelabs-backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func setupUserRepo(t *testing.T) (*airtabletest.Server, *UserRepository) {
	srv := airtabletest.NewServer()
	t.Cleanup(srv.Close)
	return srv, NewUserRepository(srv.Client())
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	_, repo := setupUserRepo(t)
	ctx := context.Background()

	user := &models.User{
		UserFields: models.UserFields{
			Name:   "alice",
			Email:  "alice@example.com",
			Status: models.UserStatusActive,
		},
	}
	assert.NoError(t, repo.Create(ctx, user))
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, 1, user.Version)

	got, err := repo.Get(ctx, user.ID)
	assert.NoError(t, err)
	assert.Equal(t, "alice", got.Name)
	assert.Equal(t, 1, got.Version)
}

func TestUserRepository_FindByEmail(t *testing.T) {
	_, repo := setupUserRepo(t)
	ctx := context.Background()

	user := &models.User{UserFields: models.UserFields{Name: "alice", Email: "alice@example.com"}}
	assert.NoError(t, repo.Create(ctx, user))

	found, err := repo.FindByEmail(ctx, "alice@example.com")
	assert.NoError(t, err)
	assert.NotNil(t, found)
	assert.Equal(t, user.ID, found.ID)

	missing, err := repo.FindByEmail(ctx, "nobody@example.com")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepository_UpdateConflict(t *testing.T) {
	_, repo := setupUserRepo(t)
	ctx := context.Background()

	user := &models.User{UserFields: models.UserFields{Name: "alice"}}
	assert.NoError(t, repo.Create(ctx, user))

	// Two readers load the same version.
	first, err := repo.Get(ctx, user.ID)
	assert.NoError(t, err)
	second, err := repo.Get(ctx, user.ID)
	assert.NoError(t, err)

	first.WalletBalance = 100
	assert.NoError(t, repo.Update(ctx, first))
	assert.Equal(t, 2, first.Version)

	// The stale copy loses instead of silently overwriting.
	second.WalletBalance = 999
	assert.Equal(t, ErrConflict, repo.Update(ctx, second))

	got, err := repo.Get(ctx, user.ID)
	assert.NoError(t, err)
	assert.Equal(t, 100, got.WalletBalance)

	// The winner can keep writing with its refreshed version.
	first.WalletBalance = 150
	assert.NoError(t, repo.Update(ctx, first))
}

func TestUserRepository_ListReferencingBounty(t *testing.T) {
	srv, repo := setupUserRepo(t)
	ctx := context.Background()

	activeID := srv.Seed(TableUsers, map[string]any{
		"Name": "active", "Active Bounties": []string{"recBOUNTY00000001"}, "Version": 1,
	})
	submittedID := srv.Seed(TableUsers, map[string]any{
		"Name": "submitted", "Submitted Bounties": []string{"recBOUNTY00000001"}, "Version": 1,
	})
	srv.Seed(TableUsers, map[string]any{
		"Name": "other", "Active Bounties": []string{"recBOUNTY00000002"}, "Version": 1,
	})

	users, err := repo.ListReferencingBounty(ctx, "recBOUNTY00000001")
	assert.NoError(t, err)
	assert.Len(t, users, 2)

	ids := []string{users[0].ID, users[1].ID}
	assert.Contains(t, ids, activeID)
	assert.Contains(t, ids, submittedID)
}
