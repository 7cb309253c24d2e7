package repository

import (
	"context"
	"encoding/json"

	"github.com/cuesoftinc/cuelabs-backend/internal/airtable"
	"github.com/cuesoftinc/cuelabs-backend/internal/models"
)

type BountyRepository struct {
	base *airtable.Client
}

func NewBountyRepository(base *airtable.Client) *BountyRepository {
	return &BountyRepository{base: base}
}

func (r *BountyRepository) Get(ctx context.Context, id string) (*models.Bounty, error) {
	rec, err := r.base.GetRecord(ctx, TableBounties, id)
	if err != nil {
		return nil, err
	}
	return decodeBounty(rec)
}

// List returns bounties, optionally narrowed to one status.
func (r *BountyRepository) List(ctx context.Context, status string) ([]models.Bounty, error) {
	opts := airtable.ListOptions{}
	if status != "" {
		opts.FilterByFormula = airtable.FieldEquals("Status", status)
	}
	recs, err := r.base.ListRecords(ctx, TableBounties, opts)
	if err != nil {
		return nil, err
	}
	bounties := make([]models.Bounty, 0, len(recs))
	for i := range recs {
		b, err := decodeBounty(&recs[i])
		if err != nil {
			return nil, err
		}
		bounties = append(bounties, *b)
	}
	return bounties, nil
}

func (r *BountyRepository) Create(ctx context.Context, bounty *models.Bounty) error {
	bounty.Version = 1
	rec, err := r.base.CreateRecord(ctx, TableBounties, &bounty.BountyFields)
	if err != nil {
		return err
	}
	bounty.ID = rec.ID
	return nil
}

func (r *BountyRepository) Update(ctx context.Context, bounty *models.Bounty) error {
	if err := checkVersion(ctx, r.base, TableBounties, bounty.ID, bounty.Version); err != nil {
		return err
	}
	fields := bounty.BountyFields
	fields.Version = bounty.Version + 1
	if _, err := r.base.UpdateRecord(ctx, TableBounties, bounty.ID, &fields); err != nil {
		return err
	}
	bounty.Version = fields.Version
	return nil
}

func decodeBounty(rec *airtable.Record) (*models.Bounty, error) {
	bounty := &models.Bounty{ID: rec.ID}
	if err := json.Unmarshal(rec.Fields, &bounty.BountyFields); err != nil {
		return nil, err
	}
	return bounty, nil
}
