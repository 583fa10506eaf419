package domain

import (
	"encoding/json"

	"github.com/google/uuid"
)

// PublicID is the 128-bit external identifier exposed to callers in
// place of internal auto-increment primary keys.
type PublicID uuid.UUID

// NewPublicID generates a fresh random PublicID.
func NewPublicID() PublicID {
	return PublicID(uuid.New())
}

func (p PublicID) String() string {
	return uuid.UUID(p).String()
}

// ParsePublicID parses a string-form UUID into a PublicID.
func ParsePublicID(s string) (PublicID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return PublicID{}, err
	}
	return PublicID(u), nil
}

// MarshalJSON renders a PublicID as its string form rather than the
// raw 16-byte array the underlying uuid.UUID would otherwise produce.
func (p PublicID) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON parses a string-form UUID.
func (p *PublicID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParsePublicID(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
