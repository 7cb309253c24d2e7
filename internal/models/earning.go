package models

// EarningFields maps to the column names of the Earnings table. One record is
// written per accepted submission, linking the winner to the bounty.
type EarningFields struct {
	Users    []string `json:"Users"`
	Bounties []string `json:"Bounties"`
	Amount   int      `json:"Amount"`
}

type Earning struct {
	ID string
	EarningFields
}
