package domain

// VoteChange describes one voter moving from VoteAgainst to VoteFor.
// VoteAgainst is nil on a first vote.
type VoteChange struct {
	VoteFor     *string `json:"vote_for"`
	VoteAgainst *string `json:"vote_against"`
}

// Tally is the per-option vote count.
type Tally map[string]int
