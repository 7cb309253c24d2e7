package services

import (
	"context"
	"errors"
	"log"
	"net/url"
	"strings"

	"github.com/cuesoftinc/cuelabs-backend/internal/airtable"
	"github.com/cuesoftinc/cuelabs-backend/internal/models"
	"github.com/cuesoftinc/cuelabs-backend/internal/repository"
)

var (
	ErrBountyNotFound       = errors.New("bounty not found")
	ErrBountyClosed         = errors.New("bounty is closed")
	ErrBountyFull           = errors.New("bounty has reached its participant limit")
	ErrAlreadyClaimed       = errors.New("bounty already claimed by this user")
	ErrInvalidSubmissionURL = errors.New("submission URL must be a valid http or https URL")
	ErrCommentTooLong       = errors.New("comment exceeds the maximum length")
)

// Hosts we recognize as code-hosting platforms. A submission from elsewhere
// is allowed; the miss is only logged for reviewers.
var knownPlatforms = []string{
	"github.com",
	"gitlab.com",
	"bitbucket.org",
	"codeberg.org",
}

type BountyService struct {
	bountyRepo     *repository.BountyRepository
	userRepo       *repository.UserRepository
	submissionRepo *repository.SubmissionRepository
}

func NewBountyService(
	bountyRepo *repository.BountyRepository,
	userRepo *repository.UserRepository,
	submissionRepo *repository.SubmissionRepository,
) *BountyService {
	return &BountyService{
		bountyRepo:     bountyRepo,
		userRepo:       userRepo,
		submissionRepo: submissionRepo,
	}
}

func (s *BountyService) List(ctx context.Context, status string) ([]models.Bounty, error) {
	return s.bountyRepo.List(ctx, status)
}

func (s *BountyService) Get(ctx context.Context, id string) (*models.Bounty, error) {
	bounty, err := s.bountyRepo.Get(ctx, id)
	if err != nil {
		if airtable.IsNotFound(err) {
			return nil, ErrBountyNotFound
		}
		return nil, err
	}
	return bounty, nil
}

// Claim registers the user as a participant. Preconditions are checked before
// anything is written; a precondition failure must not mutate either record.
// The two writes are not atomic: if the user update fails after the bounty
// update succeeded, the bounty lists a participant with no matching
// active-bounty entry until someone reconciles it.
func (s *BountyService) Claim(ctx context.Context, userID, bountyID string) (*models.Bounty, error) {
	bounty, err := s.Get(ctx, bountyID)
	if err != nil {
		return nil, err
	}

	if bounty.IsClosed() {
		return nil, ErrBountyClosed
	}
	if bounty.IsFull() {
		return nil, ErrBountyFull
	}
	if bounty.HasParticipant(userID) {
		return nil, ErrAlreadyClaimed
	}

	bounty.Participants = append(bounty.Participants, userID)
	if len(bounty.Participants) == 1 {
		bounty.Status = models.BountyStatusInProgress
	}
	if err := s.bountyRepo.Update(ctx, bounty); err != nil {
		return nil, err
	}

	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.HasActiveBounty(bountyID) {
		user.ActiveBounties = append(user.ActiveBounties, bountyID)
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
	}

	return bounty, nil
}

// Submit records completed work against a bounty. The URL is validated before
// any remote call; the comment is length-capped. The bounty is added to the
// user's submitted list and deliberately kept in the active list as well: the
// dashboard tracks a bounty under both until review resolves it.
func (s *BountyService) Submit(ctx context.Context, userID, bountyID, submissionURL, comment string) (*models.Submission, error) {
	if err := ValidateSubmissionURL(submissionURL); err != nil {
		return nil, err
	}
	if len(comment) > models.MaxSubmissionCommentLength {
		return nil, ErrCommentTooLong
	}

	if _, err := s.Get(ctx, bountyID); err != nil {
		return nil, err
	}

	submission := &models.Submission{
		SubmissionFields: models.SubmissionFields{
			URL:      submissionURL,
			Comment:  comment,
			Status:   models.SubmissionStatusNew,
			User:     []string{userID},
			Bounties: []string{bountyID},
		},
	}
	if err := s.submissionRepo.Create(ctx, submission); err != nil {
		return nil, err
	}

	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.HasSubmittedBounty(bountyID) {
		user.SubmittedBounties = append(user.SubmittedBounties, bountyID)
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
	}

	return submission, nil
}

// ValidateSubmissionURL rejects anything that is not a well-formed http(s)
// URL. Unrecognized hosts pass with a logged warning.
func ValidateSubmissionURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return ErrInvalidSubmissionURL
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidSubmissionURL
	}

	host := strings.ToLower(u.Hostname())
	for _, platform := range knownPlatforms {
		if host == platform || strings.HasSuffix(host, "."+platform) {
			return nil
		}
	}
	log.Printf("[BountyService] Submission URL host %q is not a recognized platform", host)
	return nil
}
