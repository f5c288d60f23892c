package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MinRoomCodeLen   = 2
	MaxRoomCodeLen   = 8
	GeneratedCodeLen = 6
	roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var roomCodeRe = regexp.MustCompile(`^[A-Z0-9]{2,8}$`)

var (
	ErrRoomCodeEmpty   = errors.New("room code empty")
	ErrInvalidRoomCode = errors.New("room code must be 2-8 uppercase letters or digits")
)

type RoomCode string

// Validate only checks presence. Format is enforced where rooms are
// created; the coordinator trusts codes it receives.
func (c RoomCode) Validate() error {
	if len(strings.TrimSpace(string(c))) == 0 {
		return ErrRoomCodeEmpty
	}
	return nil
}

func ParseRoomCode(raw string) (RoomCode, error) {
	if !roomCodeRe.MatchString(raw) {
		return "", ErrInvalidRoomCode
	}
	return RoomCode(raw), nil
}

// NewRoomCode derives a GeneratedCodeLen code from a random UUID.
// Uniqueness is the directory's job.
func NewRoomCode() RoomCode {
	id := uuid.New()
	var b strings.Builder
	b.Grow(GeneratedCodeLen)
	for i := 0; i < GeneratedCodeLen; i++ {
		b.WriteByte(roomCodeAlphabet[int(id[i])%len(roomCodeAlphabet)])
	}
	return RoomCode(b.String())
}

// Room is the directory record for a room code.
type Room struct {
	Code      RoomCode  `json:"roomCode"`
	HostID    VoterID   `json:"hostId"`
	CreatedAt time.Time `json:"createdAt"`
}
