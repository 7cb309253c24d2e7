package repository

import (
	"context"
	"encoding/json"

	"github.com/cuesoftinc/cuelabs-backend/internal/airtable"
	"github.com/cuesoftinc/cuelabs-backend/internal/models"
)

type SubmissionRepository struct {
	base *airtable.Client
}

func NewSubmissionRepository(base *airtable.Client) *SubmissionRepository {
	return &SubmissionRepository{base: base}
}

func (r *SubmissionRepository) Get(ctx context.Context, id string) (*models.Submission, error) {
	rec, err := r.base.GetRecord(ctx, TableSubmissions, id)
	if err != nil {
		return nil, err
	}
	return decodeSubmission(rec)
}

// List returns submissions, optionally narrowed to one status.
func (r *SubmissionRepository) List(ctx context.Context, status string) ([]models.Submission, error) {
	opts := airtable.ListOptions{}
	if status != "" {
		opts.FilterByFormula = airtable.FieldEquals("Status", status)
	}
	recs, err := r.base.ListRecords(ctx, TableSubmissions, opts)
	if err != nil {
		return nil, err
	}
	return decodeSubmissions(recs)
}

// ListOpenForBounty returns the bounty's submissions still awaiting review.
// A blank status counts as open; records are created without one.
func (r *SubmissionRepository) ListOpenForBounty(ctx context.Context, bountyID string) ([]models.Submission, error) {
	recs, err := r.base.ListRecords(ctx, TableSubmissions, airtable.ListOptions{
		FilterByFormula: airtable.And(
			airtable.ListContains("Bounties", bountyID),
			airtable.Or(
				airtable.FieldEquals("Status", models.SubmissionStatusNew),
				airtable.FieldEquals("Status", models.SubmissionStatusPending),
				airtable.FieldEquals("Status", ""),
			),
		),
	})
	if err != nil {
		return nil, err
	}
	return decodeSubmissions(recs)
}

func (r *SubmissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	submission.Version = 1
	rec, err := r.base.CreateRecord(ctx, TableSubmissions, &submission.SubmissionFields)
	if err != nil {
		return err
	}
	submission.ID = rec.ID
	return nil
}

func (r *SubmissionRepository) Update(ctx context.Context, submission *models.Submission) error {
	if err := checkVersion(ctx, r.base, TableSubmissions, submission.ID, submission.Version); err != nil {
		return err
	}
	fields := submission.SubmissionFields
	fields.Version = submission.Version + 1
	if _, err := r.base.UpdateRecord(ctx, TableSubmissions, submission.ID, &fields); err != nil {
		return err
	}
	submission.Version = fields.Version
	return nil
}

func decodeSubmission(rec *airtable.Record) (*models.Submission, error) {
	submission := &models.Submission{ID: rec.ID}
	if err := json.Unmarshal(rec.Fields, &submission.SubmissionFields); err != nil {
		return nil, err
	}
	return submission, nil
}

func decodeSubmissions(recs []airtable.Record) ([]models.Submission, error) {
	submissions := make([]models.Submission, 0, len(recs))
	for i := range recs {
		s, err := decodeSubmission(&recs[i])
		if err != nil {
			return nil, err
		}
		submissions = append(submissions, *s)
	}
	return submissions, nil
}
