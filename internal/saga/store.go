package saga

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrIntentNotFound = errors.New("approval intent not found")

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Begin returns the intent for a submission, creating a pending one when none
// exists. Reuse makes retries resume instead of restarting.
func (s *Store) Begin(submissionID string) (*ApprovalIntent, error) {
	var intent ApprovalIntent
	err := s.db.Where("submission_id = ?", submissionID).First(&intent).Error
	if err == nil {
		return &intent, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	intent = ApprovalIntent{
		ExternalID:   uuid.NewString(),
		SubmissionID: submissionID,
		State:        StatePending,
	}
	if err := s.db.Create(&intent).Error; err != nil {
		return nil, err
	}
	return &intent, nil
}

func (s *Store) Save(intent *ApprovalIntent) error {
	return s.db.Save(intent).Error
}

func (s *Store) FindByExternalID(externalID string) (*ApprovalIntent, error) {
	var intent ApprovalIntent
	err := s.db.Where("external_id = ?", externalID).First(&intent).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrIntentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &intent, nil
}

func (s *Store) List() ([]ApprovalIntent, error) {
	var intents []ApprovalIntent
	err := s.db.Order("created_at DESC").Find(&intents).Error
	return intents, err
}

// ListUnfinished returns intents that still need work, oldest first; the
// server resumes these at startup.
func (s *Store) ListUnfinished() ([]ApprovalIntent, error) {
	var intents []ApprovalIntent
	err := s.db.Where("state <> ?", StateCompleted).
		Order("created_at ASC").
		Find(&intents).Error
	return intents, err
}
