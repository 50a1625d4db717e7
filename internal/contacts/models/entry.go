package models

import (
	"strconv"
	"strings"

	id "addressbook/pkg/domain"
)

// Entry is a single contact in the address book.
//
// Invariants:
//   - ID is nil until the persistence gateway assigns one
//   - within a directory no two entries share an ID
//
// Entries are values. Updates replace the stored value under the same ID
// instead of mutating it in place.
type Entry struct {
	ID      id.ContactID `json:"id"`
	Name    Name         `json:"name"`
	Address Address      `json:"address"`
	Phone   string       `json:"phone"`
	Email   string       `json:"email"`
}

// HasID reports whether the gateway has assigned an identifier.
func (e Entry) HasID() bool {
	return !e.ID.IsNil()
}

// WithID returns a copy of the entry carrying contactID.
func (e Entry) WithID(contactID id.ContactID) Entry {
	e.ID = contactID
	return e
}

// Equal compares every field, the identifier included.
func (e Entry) Equal(other Entry) bool {
	return e == other
}

// Compare orders entries by name.
func (e Entry) Compare(other Entry) int {
	return e.Name.Compare(other.Name)
}

// String renders the display card used by list views and logs.
func (e Entry) String() string {
	var b strings.Builder
	b.WriteString(e.Name.String())
	b.WriteString("\n\t")
	b.WriteString(e.Address.Street)
	b.WriteString("\n\t")
	b.WriteString(e.Address.City + ", " + e.Address.State + " " + strconv.Itoa(e.Address.Zip))
	b.WriteString("\n\t")
	b.WriteString(e.Email)
	b.WriteString("\n\t")
	b.WriteString(e.Phone)
	return b.String()
}
