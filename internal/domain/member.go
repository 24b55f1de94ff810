package domain

// Member represents one client's participation meta for a room.
// No transport or lifecycle logic here.
type Member struct {
	// ClientToken is the browser cookie token; several connections may share it.
	ClientToken string
}

func NewMember(clientToken string) *Member {
	return &Member{ClientToken: clientToken}
}
