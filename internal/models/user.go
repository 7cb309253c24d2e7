package models

// User statuses as stored in the Users table.
const (
	UserStatusActive   = "Active"
	UserStatusInactive = "Inactive"
)

// UserFields maps to the column names of the Users table in the remote base.
// List fields hold linked Bounty record IDs.
type UserFields struct {
	Name              string   `json:"Name,omitempty"`
	Email             string   `json:"Email,omitempty"`
	ProfilePictureURL string   `json:"Profile Picture URL,omitempty"`
	WalletBalance     int      `json:"Wallet Balance"`
	TotalEarnings     int      `json:"Total Earnings"`
	ActiveBounties    []string `json:"Active Bounties"`
	SubmittedBounties []string `json:"Submitted Bounties"`
	CompletedBounties []string `json:"Completed Bounties"`
	Status            string   `json:"Status,omitempty"`
	Version           int      `json:"Version"`
}

type User struct {
	ID string
	UserFields
}

// HasActiveBounty reports whether bountyID is in the user's active list.
func (u *User) HasActiveBounty(bountyID string) bool {
	return Contains(u.ActiveBounties, bountyID)
}

func (u *User) HasSubmittedBounty(bountyID string) bool {
	return Contains(u.SubmittedBounties, bountyID)
}

// Contains reports whether id appears in a linked-record list.
func Contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// Remove returns ids without id, preserving order. The second result reports
// whether anything was removed.
func Remove(ids []string, id string) ([]string, bool) {
	out := make([]string, 0, len(ids))
	removed := false
	for _, v := range ids {
		if v == id {
			removed = true
			continue
		}
		out = append(out, v)
	}
	return out, removed
}
