// Package directory holds the working set of address entries keyed by
// identifier and answers count, lookup and last-name prefix queries.
//
// A Directory is not safe for concurrent use. Callers serialize access, the
// contacts service does so with a single mutex.
package directory

import (
	"slices"
	"strings"
	"unicode/utf8"

	"addressbook/internal/contacts/models"
	id "addressbook/pkg/domain"
)

// Directory is an in-memory collection of entries keyed by ID.
type Directory struct {
	entries map[id.ContactID]models.Entry
}

func New() *Directory {
	return &Directory{entries: make(map[id.ContactID]models.Entry)}
}

// Count returns the number of stored entries.
func (d *Directory) Count() int {
	return len(d.entries)
}

// Get looks an entry up by identifier.
func (d *Directory) Get(contactID id.ContactID) (models.Entry, bool) {
	e, ok := d.entries[contactID]
	return e, ok
}

// Add inserts entry unless another entry is already stored under its ID.
// A false return is a key conflict: the caller's view of the backing store
// disagrees with the directory and should be logged, not shown to users.
func (d *Directory) Add(entry models.Entry) bool {
	if _, exists := d.entries[entry.ID]; exists {
		return false
	}
	d.entries[entry.ID] = entry
	return true
}

// RemoveByID removes the entry stored under contactID and reports whether
// one was present.
func (d *Directory) RemoveByID(contactID id.ContactID) bool {
	if _, ok := d.entries[contactID]; !ok {
		return false
	}
	delete(d.entries, contactID)
	return true
}

// RemoveByLastName removes every entry whose last name equals lastName,
// ignoring case. Note this is a bulk removal: all namesakes go.
func (d *Directory) RemoveByLastName(lastName string) bool {
	removed := false
	for key, e := range d.entries {
		if strings.EqualFold(e.Name.Last, lastName) {
			delete(d.entries, key)
			removed = true
		}
	}
	return removed
}

// RemoveEntry removes the first entry equal to entry in every field.
func (d *Directory) RemoveEntry(entry models.Entry) bool {
	for key, e := range d.entries {
		if e.Equal(entry) {
			delete(d.entries, key)
			return true
		}
	}
	return false
}

// Find returns the entries whose last name starts with prefix, ignoring
// case, sorted by name. Find("") lists the whole directory.
func (d *Directory) Find(prefix string) []models.Entry {
	sorted := make([]models.Entry, 0, len(d.entries))
	for _, e := range d.entries {
		sorted = append(sorted, e)
	}
	slices.SortFunc(sorted, Compare)

	matches := sorted[:0]
	for _, e := range sorted {
		if HasPrefixFold(e.Name.Last, prefix) {
			matches = append(matches, e)
		}
	}
	return matches
}

// List returns every entry sorted by name.
func (d *Directory) List() []models.Entry {
	return d.Find("")
}

// Clear removes every entry.
func (d *Directory) Clear() {
	clear(d.entries)
}

// Compare is the directory ordering: by name, then by identifier so
// namesakes keep a stable order between calls.
func Compare(a, b models.Entry) int {
	if c := a.Compare(b); c != 0 {
		return c
	}
	return strings.Compare(a.ID.String(), b.ID.String())
}

// HasPrefixFold reports whether the first len(prefix) characters of s equal
// prefix under Unicode case folding. A string shorter than prefix never matches.
func HasPrefixFold(s, prefix string) bool {
	n := utf8.RuneCountInString(prefix)
	if n == 0 {
		return true
	}
	end := 0
	for i := 0; i < n; i++ {
		if end >= len(s) {
			return false
		}
		_, size := utf8.DecodeRuneInString(s[end:])
		end += size
	}
	return strings.EqualFold(s[:end], prefix)
}
