package valueobjects

import (
	"errors"

	"github.com/google/uuid"
)

// JourneyID is a value object representing a unique journey identifier
type JourneyID struct {
	value string
}

// NewJourneyID creates a new random JourneyID
func NewJourneyID() JourneyID {
	return JourneyID{value: uuid.New().String()}
}

// NewJourneyIDFromString creates a JourneyID from an existing string
func NewJourneyIDFromString(id string) (JourneyID, error) {
	if id == "" {
		return JourneyID{}, errors.New("journey ID cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return JourneyID{}, errors.New("journey ID must be a valid UUID")
	}
	return JourneyID{value: id}, nil
}

// String returns the string representation of the JourneyID
func (id JourneyID) String() string {
	return id.value
}

// IsZero checks if the JourneyID is the zero value
func (id JourneyID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id JourneyID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (id *JourneyID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("JourneyID must be a string")
	}
	id.value = string(data[1 : len(data)-1])
	return nil
}
