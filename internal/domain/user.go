// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"strings"
)

const (
	MaxVoterIDLen = 128
	MaxLabelLen   = 36
	DefaultLabel  = "guest"
)

var (
	ErrVoterEmpty   = errors.New("voter identity empty")
	ErrVoterTooLong = errors.New("voter identity too long")
)

// VoterID is the stable identity issued by the external identity provider.
// It survives reconnects.
type VoterID string

type Voter struct {
	ID    VoterID `json:"voterIdentity"`
	Label string  `json:"label"`
}

// NewVoter is a tiny helper to avoid ad-hoc struct literals in adapters.
// The label is cosmetic: it is trimmed, clipped and defaulted, never rejected.
func NewVoter(id VoterID, label string) (*Voter, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return &Voter{ID: id, Label: NormalizeLabel(label)}, nil
}

func (id VoterID) Validate() error {
	if len(strings.TrimSpace(string(id))) == 0 {
		return ErrVoterEmpty
	}
	if len(id) > MaxVoterIDLen {
		return ErrVoterTooLong
	}
	return nil
}

func NormalizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return DefaultLabel
	}
	if r := []rune(label); len(r) > MaxLabelLen {
		label = string(r[:MaxLabelLen])
	}
	return label
}
