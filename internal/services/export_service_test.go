package services

import (
	"context"
	"testing"

	"github.com/cuesoftinc/cuelabs-backend/internal/airtable/airtabletest"
	"github.com/cuesoftinc/cuelabs-backend/internal/repository"
	"github.com/stretchr/testify/assert"
)

func setupExportTest(t *testing.T) (*airtabletest.Server, *ExportService) {
	srv := airtabletest.NewServer()
	t.Cleanup(srv.Close)

	base := srv.Client()
	return srv, NewExportService(
		repository.NewUserRepository(base),
		repository.NewEarningRepository(base),
		"test-signing-key",
	)
}

func TestExportService_ExportAndVerify(t *testing.T) {
	srv, svc := setupExportTest(t)
	ctx := context.Background()

	userID := srv.Seed(repository.TableUsers, map[string]any{
		"Name": "alice", "Email": "alice@example.com",
		"Wallet Balance": 150, "Total Earnings": 250, "Version": 1,
	})
	bountyID := srv.Seed(repository.TableBounties, map[string]any{
		"Name": "Fix login flow", "Reward": 100, "Version": 1,
	})
	srv.Seed(repository.TableEarnings, map[string]any{
		"Users": []string{userID}, "Bounties": []string{bountyID}, "Amount": 100,
	})

	export, err := svc.ExportEarnings(ctx, userID)
	assert.NoError(t, err)
	assert.Equal(t, userID, export.UserID)
	assert.Equal(t, 150, export.WalletBalance)
	assert.Equal(t, 250, export.TotalEarnings)
	assert.Len(t, export.Earnings, 1)
	assert.Equal(t, bountyID, export.Earnings[0].BountyID)
	assert.NotEmpty(t, export.Signature)

	assert.NoError(t, svc.Verify(export))
}

func TestExportService_VerifyRejectsTampering(t *testing.T) {
	srv, svc := setupExportTest(t)
	ctx := context.Background()

	userID := srv.Seed(repository.TableUsers, map[string]any{
		"Name": "alice", "Wallet Balance": 150, "Version": 1,
	})

	export, err := svc.ExportEarnings(ctx, userID)
	assert.NoError(t, err)

	export.WalletBalance = 1000000
	assert.Equal(t, ErrInvalidSignature, svc.Verify(export))

	assert.Equal(t, ErrInvalidExport, svc.Verify(nil))
}

func TestExportService_VerifyRejectsWrongKey(t *testing.T) {
	srv, svc := setupExportTest(t)
	ctx := context.Background()

	userID := srv.Seed(repository.TableUsers, map[string]any{
		"Name": "alice", "Wallet Balance": 150, "Version": 1,
	})

	export, err := svc.ExportEarnings(ctx, userID)
	assert.NoError(t, err)

	other := NewExportService(nil, nil, "different-key")
	assert.Equal(t, ErrInvalidSignature, other.Verify(export))
}
