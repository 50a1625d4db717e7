package domain

import (
	"github.com/google/uuid"

	dErrors "addressbook/pkg/domain-errors"
)

// ContactID identifies an address entry. The zero value means the entry has
// not been assigned an identifier by the persistence gateway yet.
type ContactID uuid.UUID

// NewContactID returns a fresh random identifier.
func NewContactID() ContactID {
	return ContactID(uuid.New())
}

// ParseContactID parses a non-nil UUID string. It is the trust boundary for
// identifiers arriving from HTTP paths, CLI arguments and database rows.
func ParseContactID(s string) (ContactID, error) {
	if s == "" {
		return ContactID{}, dErrors.New(dErrors.CodeInvalidInput, "contact id is required")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return ContactID{}, dErrors.New(dErrors.CodeInvalidInput, "invalid contact id")
	}
	if parsed == uuid.Nil {
		return ContactID{}, dErrors.New(dErrors.CodeInvalidInput, "contact id cannot be nil")
	}
	return ContactID(parsed), nil
}

func (id ContactID) String() string {
	return uuid.UUID(id).String()
}

// IsNil reports whether no identifier has been assigned.
func (id ContactID) IsNil() bool {
	return uuid.UUID(id) == uuid.Nil
}

func (id ContactID) MarshalText() ([]byte, error) {
	if id.IsNil() {
		return []byte{}, nil
	}
	return uuid.UUID(id).MarshalText()
}

func (id *ContactID) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*id = ContactID{}
		return nil
	}
	parsed, err := ParseContactID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
