package domain

// Member represents a voter's participation meta for a room.
// No transport or lifecycle logic here.
type Member struct {
	Voter *Voter
	Room  RoomCode
}

// NewMember avoids raw literals in adapters and keeps construction obvious.
func NewMember(voter *Voter, room RoomCode) *Member {
	return &Member{Voter: voter, Room: room}
}
