package repository

import (
	"context"
	"encoding/json"

	"github.com/cuesoftinc/cuelabs-backend/internal/airtable"
	"github.com/cuesoftinc/cuelabs-backend/internal/models"
)

type EarningRepository struct {
	base *airtable.Client
}

func NewEarningRepository(base *airtable.Client) *EarningRepository {
	return &EarningRepository{base: base}
}

func (r *EarningRepository) Create(ctx context.Context, earning *models.Earning) error {
	rec, err := r.base.CreateRecord(ctx, TableEarnings, &earning.EarningFields)
	if err != nil {
		return err
	}
	earning.ID = rec.ID
	return nil
}

func (r *EarningRepository) ListForUser(ctx context.Context, userID string) ([]models.Earning, error) {
	recs, err := r.base.ListRecords(ctx, TableEarnings, airtable.ListOptions{
		FilterByFormula: airtable.ListContains("Users", userID),
	})
	if err != nil {
		return nil, err
	}
	return decodeEarnings(recs)
}

// ListForBounty exists so review tooling can check how many ledger entries a
// bounty produced; an accepted submission must produce exactly one.
func (r *EarningRepository) ListForBounty(ctx context.Context, bountyID string) ([]models.Earning, error) {
	recs, err := r.base.ListRecords(ctx, TableEarnings, airtable.ListOptions{
		FilterByFormula: airtable.ListContains("Bounties", bountyID),
	})
	if err != nil {
		return nil, err
	}
	return decodeEarnings(recs)
}

func decodeEarnings(recs []airtable.Record) ([]models.Earning, error) {
	earnings := make([]models.Earning, 0, len(recs))
	for i := range recs {
		e := models.Earning{ID: recs[i].ID}
		if err := json.Unmarshal(recs[i].Fields, &e.EarningFields); err != nil {
			return nil, err
		}
		earnings = append(earnings, e)
	}
	return earnings, nil
}
