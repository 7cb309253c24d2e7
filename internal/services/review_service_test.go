package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/cuesoftinc/cuelabs-backend/internal/airtable/airtabletest"
	"github.com/cuesoftinc/cuelabs-backend/internal/database"
	"github.com/cuesoftinc/cuelabs-backend/internal/models"
	"github.com/cuesoftinc/cuelabs-backend/internal/repository"
	"github.com/cuesoftinc/cuelabs-backend/internal/saga"
	"github.com/stretchr/testify/assert"
)

func setupReviewTest(t *testing.T) (*airtabletest.Server, *ReviewService) {
	srv := airtabletest.NewServer()
	t.Cleanup(srv.Close)

	db, err := database.Connect(":memory:")
	assert.NoError(t, err)
	assert.NoError(t, database.Migrate(db))

	base := srv.Client()
	svc := NewReviewService(
		repository.NewSubmissionRepository(base),
		repository.NewBountyRepository(base),
		repository.NewUserRepository(base),
		repository.NewEarningRepository(base),
		saga.NewStore(db),
	)
	return srv, svc
}

// seedApprovalScenario sets up a bounty with two open submissions from two
// users, both tracking it in their active and submitted lists.
func seedApprovalScenario(srv *airtabletest.Server, reward int) (bountyID, winnerID, loserID, winningSub, losingSub string) {
	winnerID = srv.Seed(repository.TableUsers, map[string]any{
		"Name": "alice", "Email": "alice@example.com",
		"Wallet Balance": 0, "Total Earnings": 0,
		"Status": models.UserStatusActive, "Version": 1,
	})
	loserID = srv.Seed(repository.TableUsers, map[string]any{
		"Name": "bob", "Email": "bob@example.com",
		"Wallet Balance": 0, "Total Earnings": 0,
		"Status": models.UserStatusActive, "Version": 1,
	})
	bountyID = srv.Seed(repository.TableBounties, map[string]any{
		"Name": "Fix login flow", "Reward": reward,
		"Status":       models.BountyStatusInProgress,
		"Participants": []string{winnerID, loserID},
		"Version":      1,
	})
	for _, id := range []string{winnerID, loserID} {
		srv.SetFields(repository.TableUsers, id, map[string]any{
			"Active Bounties":    []string{bountyID},
			"Submitted Bounties": []string{bountyID},
		})
	}

	winningSub = srv.Seed(repository.TableSubmissions, map[string]any{
		"URL": "https://github.com/org/repo/pull/1", "Status": models.SubmissionStatusNew,
		"User": []string{winnerID}, "Bounties": []string{bountyID}, "Version": 1,
	})
	losingSub = srv.Seed(repository.TableSubmissions, map[string]any{
		"URL": "https://github.com/org/repo/pull/2", "Status": models.SubmissionStatusNew,
		"User": []string{loserID}, "Bounties": []string{bountyID}, "Version": 1,
	})
	return
}

func TestReviewService_AcceptFullEffects(t *testing.T) {
	srv, svc := setupReviewTest(t)
	ctx := context.Background()

	bountyID, winnerID, loserID, winningSub, losingSub := seedApprovalScenario(srv, 100)

	intent, err := svc.Accept(ctx, winningSub)
	assert.NoError(t, err)
	assert.Equal(t, saga.StateCompleted, intent.State)
	assert.Equal(t, saga.FinalStep, intent.Step)
	assert.NotEmpty(t, intent.ExternalID)

	assert.Equal(t, models.SubmissionStatusAccepted,
		srv.Fields(repository.TableSubmissions, winningSub)["Status"])
	assert.Equal(t, models.SubmissionStatusDeclined,
		srv.Fields(repository.TableSubmissions, losingSub)["Status"])

	bounty := srv.Fields(repository.TableBounties, bountyID)
	assert.Equal(t, models.BountyStatusDone, bounty["Status"])
	assert.Equal(t, []any{winnerID}, bounty["Winner"])

	winner := srv.Fields(repository.TableUsers, winnerID)
	assert.Equal(t, float64(100), winner["Wallet Balance"])
	assert.Equal(t, float64(100), winner["Total Earnings"])
	assert.Equal(t, []any{bountyID}, winner["Completed Bounties"])
	// The winner's own stale active entry is scrubbed too.
	assert.Empty(t, winner["Active Bounties"])
	assert.Empty(t, winner["Submitted Bounties"])

	loser := srv.Fields(repository.TableUsers, loserID)
	assert.Empty(t, loser["Active Bounties"])
	assert.Empty(t, loser["Submitted Bounties"])
	assert.Equal(t, float64(0), loser["Wallet Balance"])

	earnings := srv.RecordIDs(repository.TableEarnings)
	assert.Len(t, earnings, 1)
	earning := srv.Fields(repository.TableEarnings, earnings[0])
	assert.Equal(t, []any{winnerID}, earning["Users"])
	assert.Equal(t, []any{bountyID}, earning["Bounties"])
	assert.Equal(t, float64(100), earning["Amount"])
}

func TestReviewService_AcceptIsIdempotent(t *testing.T) {
	srv, svc := setupReviewTest(t)
	ctx := context.Background()

	_, winnerID, _, winningSub, _ := seedApprovalScenario(srv, 100)

	first, err := svc.Accept(ctx, winningSub)
	assert.NoError(t, err)

	second, err := svc.Accept(ctx, winningSub)
	assert.NoError(t, err)
	assert.Equal(t, first.ExternalID, second.ExternalID)
	assert.Equal(t, saga.StateCompleted, second.State)

	winner := srv.Fields(repository.TableUsers, winnerID)
	assert.Equal(t, float64(100), winner["Wallet Balance"])
	assert.Len(t, srv.RecordIDs(repository.TableEarnings), 1)
}

func TestReviewService_AcceptDeclinedSubmission(t *testing.T) {
	srv, svc := setupReviewTest(t)
	ctx := context.Background()

	_, _, _, winningSub, losingSub := seedApprovalScenario(srv, 100)

	_, err := svc.Accept(ctx, winningSub)
	assert.NoError(t, err)

	// The sibling was declined by the approval; it cannot be accepted now.
	_, err = svc.Accept(ctx, losingSub)
	assert.Equal(t, ErrSubmissionClosed, err)
}

func TestReviewService_AcceptUnknownSubmission(t *testing.T) {
	_, svc := setupReviewTest(t)

	_, err := svc.Accept(context.Background(), "recMISSING0000000")
	assert.Equal(t, ErrSubmissionNotFound, err)
}

func TestReviewService_DeclineHasNoSideEffects(t *testing.T) {
	srv, svc := setupReviewTest(t)
	ctx := context.Background()

	bountyID, winnerID, _, winningSub, losingSub := seedApprovalScenario(srv, 100)

	declined, err := svc.Decline(ctx, losingSub)
	assert.NoError(t, err)
	assert.Equal(t, models.SubmissionStatusDeclined, declined.Status)

	// Only the declined submission changed.
	assert.Equal(t, models.SubmissionStatusNew,
		srv.Fields(repository.TableSubmissions, winningSub)["Status"])
	assert.Equal(t, models.BountyStatusInProgress,
		srv.Fields(repository.TableBounties, bountyID)["Status"])
	winner := srv.Fields(repository.TableUsers, winnerID)
	assert.Equal(t, float64(0), winner["Wallet Balance"])
	assert.Equal(t, []any{bountyID}, winner["Active Bounties"])
	assert.Empty(t, srv.RecordIDs(repository.TableEarnings))

	_, err = svc.Decline(ctx, losingSub)
	assert.Equal(t, ErrSubmissionClosed, err)
}

func TestReviewService_RetryResumesAfterFailure(t *testing.T) {
	srv, svc := setupReviewTest(t)
	ctx := context.Background()

	_, winnerID, _, winningSub, losingSub := seedApprovalScenario(srv, 100)

	// Fail the winner-credit write. Earlier steps have already run by then.
	srv.SetHook(func(method, tbl, id string) int {
		if method == http.MethodPatch && tbl == repository.TableUsers && id == winnerID {
			return http.StatusServiceUnavailable
		}
		return 0
	})

	intent, err := svc.Accept(ctx, winningSub)
	assert.Error(t, err)
	assert.Equal(t, saga.StateFailed, intent.State)
	assert.Equal(t, saga.StepCloseBounty, intent.Step)
	assert.NotEmpty(t, intent.LastError)

	// The submission was accepted and the bounty closed before the failure.
	assert.Equal(t, models.SubmissionStatusAccepted,
		srv.Fields(repository.TableSubmissions, winningSub)["Status"])
	assert.Equal(t, float64(0),
		srv.Fields(repository.TableUsers, winnerID)["Wallet Balance"])

	srv.SetHook(nil)

	resumed, err := svc.Retry(ctx, intent.ExternalID)
	assert.NoError(t, err)
	assert.Equal(t, saga.StateCompleted, resumed.State)
	assert.Equal(t, saga.FinalStep, resumed.Step)

	winner := srv.Fields(repository.TableUsers, winnerID)
	assert.Equal(t, float64(100), winner["Wallet Balance"])
	assert.Len(t, srv.RecordIDs(repository.TableEarnings), 1)
	assert.Equal(t, models.SubmissionStatusDeclined,
		srv.Fields(repository.TableSubmissions, losingSub)["Status"])
}

func TestReviewService_RetryUnknownApproval(t *testing.T) {
	_, svc := setupReviewTest(t)

	_, err := svc.Retry(context.Background(), "no-such-approval")
	assert.Equal(t, saga.ErrIntentNotFound, err)
}

func TestReviewService_ResumeUnfinished(t *testing.T) {
	srv, svc := setupReviewTest(t)
	ctx := context.Background()

	_, winnerID, _, winningSub, _ := seedApprovalScenario(srv, 100)

	srv.SetHook(func(method, tbl, id string) int {
		if method == http.MethodPatch && tbl == repository.TableUsers {
			return http.StatusServiceUnavailable
		}
		return 0
	})
	_, err := svc.Accept(ctx, winningSub)
	assert.Error(t, err)
	srv.SetHook(nil)

	svc.ResumeUnfinished(ctx)

	approvals, err := svc.ListApprovals()
	assert.NoError(t, err)
	assert.Len(t, approvals, 1)
	assert.Equal(t, saga.StateCompleted, approvals[0].State)
	assert.Equal(t, float64(100),
		srv.Fields(repository.TableUsers, winnerID)["Wallet Balance"])
}
