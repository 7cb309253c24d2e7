package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/cuesoftinc/cuelabs-backend/internal/airtable"
	"github.com/cuesoftinc/cuelabs-backend/internal/models"
	"github.com/cuesoftinc/cuelabs-backend/internal/repository"
	"github.com/cuesoftinc/cuelabs-backend/internal/saga"
)

var (
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrSubmissionClosed   = errors.New("submission already reviewed")
)

// ReviewService handles accepting and declining submissions. Accepting runs a
// multi-step remote sequence through the approval intent log: each completed
// step is persisted before the next starts, so a failed run is visible and
// retryable instead of leaving the base half-updated. Steps check for their
// own prior effects where the data allows it, which keeps retries from
// double-applying; the window between a remote write and its log write is
// narrowed, not closed.
type ReviewService struct {
	submissionRepo *repository.SubmissionRepository
	bountyRepo     *repository.BountyRepository
	userRepo       *repository.UserRepository
	earningRepo    *repository.EarningRepository
	intents        *saga.Store
}

func NewReviewService(
	submissionRepo *repository.SubmissionRepository,
	bountyRepo *repository.BountyRepository,
	userRepo *repository.UserRepository,
	earningRepo *repository.EarningRepository,
	intents *saga.Store,
) *ReviewService {
	return &ReviewService{
		submissionRepo: submissionRepo,
		bountyRepo:     bountyRepo,
		userRepo:       userRepo,
		earningRepo:    earningRepo,
		intents:        intents,
	}
}

func (s *ReviewService) ListSubmissions(ctx context.Context, status string) ([]models.Submission, error) {
	return s.submissionRepo.List(ctx, status)
}

func (s *ReviewService) GetSubmission(ctx context.Context, id string) (*models.Submission, error) {
	submission, err := s.submissionRepo.Get(ctx, id)
	if err != nil {
		if airtable.IsNotFound(err) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}
	return submission, nil
}

// Accept approves a submission: the winner is credited, the bounty closed,
// an earning recorded, stale references scrubbed, and competing submissions
// declined. Returns the intent describing how far the run got.
func (s *ReviewService) Accept(ctx context.Context, submissionID string) (*saga.ApprovalIntent, error) {
	submission, err := s.GetSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	intent, err := s.intents.Begin(submissionID)
	if err != nil {
		return nil, err
	}
	if intent.Completed() {
		return intent, nil
	}
	// A fresh approval needs an open submission; an existing intent means a
	// prior run already accepted it and is being resumed.
	if intent.Step == 0 && !submission.IsOpen() {
		return nil, ErrSubmissionClosed
	}

	runErr := s.run(ctx, intent)
	return intent, runErr
}

// Retry resumes a failed or interrupted approval from its last completed
// step.
func (s *ReviewService) Retry(ctx context.Context, externalID string) (*saga.ApprovalIntent, error) {
	intent, err := s.intents.FindByExternalID(externalID)
	if err != nil {
		return nil, err
	}
	if intent.Completed() {
		return intent, nil
	}
	runErr := s.run(ctx, intent)
	return intent, runErr
}

func (s *ReviewService) ListApprovals() ([]saga.ApprovalIntent, error) {
	return s.intents.List()
}

// ResumeUnfinished re-runs every non-completed intent; called at startup.
func (s *ReviewService) ResumeUnfinished(ctx context.Context) {
	intents, err := s.intents.ListUnfinished()
	if err != nil {
		log.Printf("[ReviewService] Failed to list unfinished approvals: %v", err)
		return
	}
	for i := range intents {
		intent := &intents[i]
		log.Printf("[ReviewService] Resuming approval %s (submission %s, step %d)",
			intent.ExternalID, intent.SubmissionID, intent.Step)
		if err := s.run(ctx, intent); err != nil {
			log.Printf("[ReviewService] Approval %s failed again: %v", intent.ExternalID, err)
		}
	}
}

// Decline marks one submission declined. No side effects on bounty or user
// state.
func (s *ReviewService) Decline(ctx context.Context, submissionID string) (*models.Submission, error) {
	submission, err := s.GetSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if !submission.IsOpen() {
		return nil, ErrSubmissionClosed
	}
	submission.Status = models.SubmissionStatusDeclined
	if err := s.submissionRepo.Update(ctx, submission); err != nil {
		return nil, err
	}
	return submission, nil
}

func (s *ReviewService) run(ctx context.Context, intent *saga.ApprovalIntent) error {
	for step := intent.Step + 1; step <= saga.FinalStep; step++ {
		if err := s.runStep(ctx, intent, step); err != nil {
			intent.State = saga.StateFailed
			intent.LastError = err.Error()
			if saveErr := s.intents.Save(intent); saveErr != nil {
				log.Printf("[ReviewService] Failed to record approval failure: %v", saveErr)
			}
			return fmt.Errorf("approval step %d: %w", step, err)
		}
		intent.Step = step
		intent.State = saga.StatePending
		intent.LastError = ""
		if err := s.intents.Save(intent); err != nil {
			return err
		}
	}

	intent.State = saga.StateCompleted
	return s.intents.Save(intent)
}

func (s *ReviewService) runStep(ctx context.Context, intent *saga.ApprovalIntent, step int) error {
	switch step {
	case saga.StepAcceptSubmission:
		return s.acceptSubmission(ctx, intent)
	case saga.StepCloseBounty:
		return s.closeBounty(ctx, intent)
	case saga.StepCreditWinner:
		return s.creditWinner(ctx, intent)
	case saga.StepRecordEarning:
		return s.recordEarning(ctx, intent)
	case saga.StepScrubUsers:
		return s.scrubUsers(ctx, intent)
	case saga.StepDeclineSiblings:
		return s.declineSiblings(ctx, intent)
	default:
		return fmt.Errorf("unknown approval step %d", step)
	}
}

func (s *ReviewService) acceptSubmission(ctx context.Context, intent *saga.ApprovalIntent) error {
	submission, err := s.GetSubmission(ctx, intent.SubmissionID)
	if err != nil {
		return err
	}
	intent.BountyID = submission.BountyID()
	intent.UserID = submission.UserID()
	if intent.BountyID == "" || intent.UserID == "" {
		return fmt.Errorf("submission %s has no linked bounty or user", submission.ID)
	}

	if submission.Status == models.SubmissionStatusAccepted {
		return nil
	}
	if !submission.IsOpen() {
		return ErrSubmissionClosed
	}
	submission.Status = models.SubmissionStatusAccepted
	return s.submissionRepo.Update(ctx, submission)
}

func (s *ReviewService) closeBounty(ctx context.Context, intent *saga.ApprovalIntent) error {
	bounty, err := s.bountyRepo.Get(ctx, intent.BountyID)
	if err != nil {
		return err
	}
	intent.Reward = bounty.Reward

	bounty.Status = models.BountyStatusDone
	bounty.Winner = []string{intent.UserID}
	return s.bountyRepo.Update(ctx, bounty)
}

func (s *ReviewService) creditWinner(ctx context.Context, intent *saga.ApprovalIntent) error {
	user, err := s.userRepo.Get(ctx, intent.UserID)
	if err != nil {
		return err
	}
	// Membership in the completed list doubles as the applied marker for this
	// step, so a retry does not credit twice.
	if models.Contains(user.CompletedBounties, intent.BountyID) {
		return nil
	}

	user.SubmittedBounties, _ = models.Remove(user.SubmittedBounties, intent.BountyID)
	user.CompletedBounties = append(user.CompletedBounties, intent.BountyID)
	user.WalletBalance += intent.Reward
	user.TotalEarnings += intent.Reward
	return s.userRepo.Update(ctx, user)
}

func (s *ReviewService) recordEarning(ctx context.Context, intent *saga.ApprovalIntent) error {
	existing, err := s.earningRepo.ListForBounty(ctx, intent.BountyID)
	if err != nil {
		return err
	}
	for _, e := range existing {
		if models.Contains(e.Users, intent.UserID) {
			return nil
		}
	}

	earning := &models.Earning{
		EarningFields: models.EarningFields{
			Users:    []string{intent.UserID},
			Bounties: []string{intent.BountyID},
			Amount:   intent.Reward,
		},
	}
	return s.earningRepo.Create(ctx, earning)
}

// scrubUsers drops the closed bounty from every user's active and submitted
// lists. The lookup is filtered server-side instead of scanning the whole
// table.
func (s *ReviewService) scrubUsers(ctx context.Context, intent *saga.ApprovalIntent) error {
	users, err := s.userRepo.ListReferencingBounty(ctx, intent.BountyID)
	if err != nil {
		return err
	}
	for i := range users {
		user := &users[i]
		active, removedActive := models.Remove(user.ActiveBounties, intent.BountyID)
		submitted, removedSubmitted := models.Remove(user.SubmittedBounties, intent.BountyID)
		if !removedActive && !removedSubmitted {
			continue
		}
		user.ActiveBounties = active
		user.SubmittedBounties = submitted
		if err := s.userRepo.Update(ctx, user); err != nil {
			return fmt.Errorf("scrub user %s: %w", user.ID, err)
		}
	}
	return nil
}

func (s *ReviewService) declineSiblings(ctx context.Context, intent *saga.ApprovalIntent) error {
	siblings, err := s.submissionRepo.ListOpenForBounty(ctx, intent.BountyID)
	if err != nil {
		return err
	}
	for i := range siblings {
		sibling := &siblings[i]
		if sibling.ID == intent.SubmissionID {
			continue
		}
		sibling.Status = models.SubmissionStatusDeclined
		if err := s.submissionRepo.Update(ctx, sibling); err != nil {
			return fmt.Errorf("decline submission %s: %w", sibling.ID, err)
		}
	}
	return nil
}
