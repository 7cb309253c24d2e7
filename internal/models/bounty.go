package models

// Bounty statuses as stored in the Bounties table.
const (
	BountyStatusNew        = "New"
	BountyStatusTodo       = "Todo"
	BountyStatusInProgress = "In progress"
	BountyStatusDone       = "Done"
)

// MaxBountyParticipants caps how many developers can work a bounty at once.
const MaxBountyParticipants = 5

// BountyFields maps to the column names of the Bounties table.
// Participants and Winner hold linked User record IDs.
type BountyFields struct {
	Name         string   `json:"Name,omitempty"`
	Description  string   `json:"Description,omitempty"`
	Status       string   `json:"Status,omitempty"`
	Reward       int      `json:"Reward"`
	Participants []string `json:"Participants"`
	Winner       []string `json:"Winner"`
	Version      int      `json:"Version"`
}

type Bounty struct {
	ID string
	BountyFields
}

func (b *Bounty) IsClosed() bool {
	return b.Status == BountyStatusDone
}

func (b *Bounty) IsFull() bool {
	return len(b.Participants) >= MaxBountyParticipants
}

func (b *Bounty) HasParticipant(userID string) bool {
	return Contains(b.Participants, userID)
}
