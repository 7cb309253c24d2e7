package repository

import (
	"context"
	"encoding/json"

	"github.com/cuesoftinc/cuelabs-backend/internal/airtable"
	"github.com/cuesoftinc/cuelabs-backend/internal/models"
)

type UserRepository struct {
	base *airtable.Client
}

func NewUserRepository(base *airtable.Client) *UserRepository {
	return &UserRepository{base: base}
}

func (r *UserRepository) Get(ctx context.Context, id string) (*models.User, error) {
	rec, err := r.base.GetRecord(ctx, TableUsers, id)
	if err != nil {
		return nil, err
	}
	return decodeUser(rec)
}

// FindByEmail returns (nil, nil) when no user carries the email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	recs, err := r.base.ListRecords(ctx, TableUsers, airtable.ListOptions{
		FilterByFormula: airtable.FieldEquals("Email", email),
		MaxRecords:      1,
	})
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return decodeUser(&recs[0])
}

func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	recs, err := r.base.ListRecords(ctx, TableUsers, airtable.ListOptions{})
	if err != nil {
		return nil, err
	}
	return decodeUsers(recs)
}

// ListReferencingBounty resolves which users still carry the bounty in their
// active or submitted lists, filtered server-side rather than by scanning the
// whole table.
func (r *UserRepository) ListReferencingBounty(ctx context.Context, bountyID string) ([]models.User, error) {
	recs, err := r.base.ListRecords(ctx, TableUsers, airtable.ListOptions{
		FilterByFormula: airtable.Or(
			airtable.ListContains("Active Bounties", bountyID),
			airtable.ListContains("Submitted Bounties", bountyID),
		),
	})
	if err != nil {
		return nil, err
	}
	return decodeUsers(recs)
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	user.Version = 1
	rec, err := r.base.CreateRecord(ctx, TableUsers, &user.UserFields)
	if err != nil {
		return err
	}
	user.ID = rec.ID
	return nil
}

// Update writes the user back, failing with ErrConflict when the stored
// Version no longer matches the one the caller read.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	if err := checkVersion(ctx, r.base, TableUsers, user.ID, user.Version); err != nil {
		return err
	}
	fields := user.UserFields
	fields.Version = user.Version + 1
	if _, err := r.base.UpdateRecord(ctx, TableUsers, user.ID, &fields); err != nil {
		return err
	}
	user.Version = fields.Version
	return nil
}

func decodeUser(rec *airtable.Record) (*models.User, error) {
	user := &models.User{ID: rec.ID}
	if err := json.Unmarshal(rec.Fields, &user.UserFields); err != nil {
		return nil, err
	}
	return user, nil
}

func decodeUsers(recs []airtable.Record) ([]models.User, error) {
	users := make([]models.User, 0, len(recs))
	for i := range recs {
		u, err := decodeUser(&recs[i])
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, nil
}
