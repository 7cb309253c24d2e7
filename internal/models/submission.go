package models

// Submission statuses. New and Pending are open for review; Accepted and
// Declined are terminal.
const (
	SubmissionStatusNew      = "New"
	SubmissionStatusPending  = "Pending"
	SubmissionStatusAccepted = "Accepted"
	SubmissionStatusDeclined = "Declined"
)

// MaxSubmissionCommentLength bounds the optional reviewer-facing comment.
const MaxSubmissionCommentLength = 500

// SubmissionFields maps to the column names of the Submissions table.
// User and Bounties are single-element linked-record lists.
type SubmissionFields struct {
	URL      string   `json:"URL,omitempty"`
	Comment  string   `json:"Comment,omitempty"`
	Status   string   `json:"Status,omitempty"`
	User     []string `json:"User"`
	Bounties []string `json:"Bounties"`
	Version  int      `json:"Version"`
}

type Submission struct {
	ID string
	SubmissionFields
}

// IsOpen reports whether the submission can still be accepted or declined.
func (s *Submission) IsOpen() bool {
	return s.Status == SubmissionStatusNew || s.Status == SubmissionStatusPending || s.Status == ""
}

func (s *Submission) UserID() string {
	if len(s.User) == 0 {
		return ""
	}
	return s.User[0]
}

func (s *Submission) BountyID() string {
	if len(s.Bounties) == 0 {
		return ""
	}
	return s.Bounties[0]
}
