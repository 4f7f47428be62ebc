package valueobjects

import (
	"errors"

	"github.com/google/uuid"
)

// CardID identifies a concept card. A card starts life as a draft with
// no durable identity; the store assigns one on the first successful
// create. The two states are explicit so no code path can mistake a
// draft placeholder for a real document reference.
type CardID struct {
	value     string
	persisted bool
}

// NewDraftCardID creates the identity of a not-yet-persisted card
func NewDraftCardID() CardID {
	return CardID{}
}

// PersistedCardID creates the identity of a stored card
func PersistedCardID(id string) (CardID, error) {
	if id == "" {
		return CardID{}, errors.New("card ID cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return CardID{}, errors.New("card ID must be a valid UUID")
	}
	return CardID{value: id, persisted: true}, nil
}

// AssignIdentity promotes a draft to a persisted identity with a fresh UUID
func (id CardID) AssignIdentity() CardID {
	if id.persisted {
		return id
	}
	return CardID{value: uuid.New().String(), persisted: true}
}

// IsDraft reports whether the card has no durable identity yet
func (id CardID) IsDraft() bool {
	return !id.persisted
}

// String returns the stored identifier, or empty for a draft
func (id CardID) String() string {
	return id.value
}

// Equals checks if two CardIDs refer to the same stored card.
// Two drafts are never equal.
func (id CardID) Equals(other CardID) bool {
	return id.persisted && other.persisted && id.value == other.value
}

// MarshalJSON implements json.Marshaler
func (id CardID) MarshalJSON() ([]byte, error) {
	if id.IsDraft() {
		return []byte(`null`), nil
	}
	return []byte(`"` + id.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (id *CardID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = CardID{}
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("CardID must be a string or null")
	}
	parsed, err := PersistedCardID(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
