package gateway

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"addressbook/internal/contacts/directory"
	"addressbook/internal/contacts/models"
	id "addressbook/pkg/domain"
	"addressbook/pkg/platform/sentinel"
)

// MemoryGateway keeps entries in process memory. It backs the memory driver
// and tests that need a real gateway without a database.
type MemoryGateway struct {
	mu      sync.RWMutex
	entries map[id.ContactID]models.Entry
}

func NewMemory() *MemoryGateway {
	return &MemoryGateway{entries: make(map[id.ContactID]models.Entry)}
}

func (g *MemoryGateway) LoadAll(_ context.Context) ([]models.Entry, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return sortedEntries(slices.Collect(maps.Values(g.entries)), ""), nil
}

func (g *MemoryGateway) Insert(_ context.Context, entry models.Entry) (id.ContactID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	contactID := id.NewContactID()
	g.entries[contactID] = entry.WithID(contactID)
	return contactID, nil
}

func (g *MemoryGateway) Update(_ context.Context, entry models.Entry) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.entries[entry.ID]; !ok {
		return fmt.Errorf("update contact: %w", sentinel.ErrNotFound)
	}
	g.entries[entry.ID] = entry
	return nil
}

func (g *MemoryGateway) Delete(_ context.Context, contactID id.ContactID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.entries[contactID]; !ok {
		return fmt.Errorf("delete contact: %w", sentinel.ErrNotFound)
	}
	delete(g.entries, contactID)
	return nil
}

func (g *MemoryGateway) FindIDsByLastNamePrefix(_ context.Context, prefix string) ([]id.ContactID, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	matches := sortedEntries(slices.Collect(maps.Values(g.entries)), prefix)
	ids := make([]id.ContactID, 0, len(matches))
	for _, e := range matches {
		ids = append(ids, e.ID)
	}
	return ids, nil
}

func (g *MemoryGateway) Close() error { return nil }

// sortedEntries filters by last-name prefix and orders the way the directory does.
func sortedEntries(entries []models.Entry, prefix string) []models.Entry {
	out := make([]models.Entry, 0, len(entries))
	for _, e := range entries {
		if directory.HasPrefixFold(e.Name.Last, prefix) {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b models.Entry) int {
		if c := a.Compare(b); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return out
}
