// Package saga persists the approval intent log. Accepting a submission is a
// multi-step sequence of remote writes with no transaction around it; the
// intent log records which step last completed so a failed run can be
// retried from where it stopped instead of leaving the base half-updated and
// silent about it.
package saga

import (
	"gorm.io/gorm"
)

// Approval steps in execution order. Step records the LAST COMPLETED step, so
// a fresh intent starts at zero.
const (
	StepAcceptSubmission = iota + 1
	StepCloseBounty
	StepCreditWinner
	StepRecordEarning
	StepScrubUsers
	StepDeclineSiblings

	FinalStep = StepDeclineSiblings
)

// Intent states.
const (
	StatePending   = "pending"
	StateCompleted = "completed"
	StateFailed    = "failed"
)

// ApprovalIntent is one durable approval run. SubmissionID is unique: a
// submission is approved at most once, and retries reuse the existing row.
type ApprovalIntent struct {
	gorm.Model
	ExternalID   string `gorm:"uniqueIndex;size:36;not null"`
	SubmissionID string `gorm:"uniqueIndex;size:32;not null"`
	BountyID     string `gorm:"size:32"`
	UserID       string `gorm:"size:32"`
	Reward       int
	Step         int
	State        string `gorm:"index;size:16;not null"`
	LastError    string `gorm:"type:text"`
}

func (i *ApprovalIntent) Completed() bool {
	return i.State == StateCompleted
}
