package directory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"addressbook/internal/contacts/models"
	id "addressbook/pkg/domain"
)

type DirectorySuite struct {
	suite.Suite
	dir *Directory
}

func TestDirectorySuite(t *testing.T) {
	suite.Run(t, new(DirectorySuite))
}

func (s *DirectorySuite) SetupTest() {
	s.dir = New()
}

func newEntry(n int, first, last string) models.Entry {
	var raw uuid.UUID
	raw[15] = byte(n)
	return models.Entry{
		ID:      id.ContactID(raw),
		Name:    models.Name{First: first, Last: last},
		Address: models.Address{Street: "1 Main Street", City: "Hayward", State: "CA", Zip: 94542},
		Phone:   "510-555-0100",
		Email:   "someone@example.com",
	}
}

func lastFirst(entries []models.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name.String())
	}
	return out
}

// TestAddAndGet verifies inserts grow the directory and lookups return the stored value.
func (s *DirectorySuite) TestAddAndGet() {
	s.Run("each distinct insert increments count", func() {
		for i, name := range []string{"Smith", "Doe", "Jones"} {
			e := newEntry(i+1, "A", name)
			s.True(s.dir.Add(e))
			s.Equal(i+1, s.dir.Count())

			got, ok := s.dir.Get(e.ID)
			s.Require().True(ok)
			s.Equal(e, got)
		}
	})

	s.Run("duplicate id is rejected and leaves the store unchanged", func() {
		original := newEntry(1, "A", "Smith")
		imposter := newEntry(1, "Someone", "Else")

		s.False(s.dir.Add(imposter))
		s.Equal(3, s.dir.Count())
		got, ok := s.dir.Get(original.ID)
		s.Require().True(ok)
		s.Equal(original, got)
	})

	s.Run("unknown id is absent", func() {
		_, ok := s.dir.Get(id.NewContactID())
		s.False(ok)
	})
}

// TestRemoveByID verifies removal by key reports presence.
func (s *DirectorySuite) TestRemoveByID() {
	e := newEntry(1, "John", "Smith")
	s.Require().True(s.dir.Add(e))

	s.True(s.dir.RemoveByID(e.ID))
	_, ok := s.dir.Get(e.ID)
	s.False(ok)
	s.False(s.dir.RemoveByID(e.ID))
	s.Zero(s.dir.Count())
}

// TestRemoveByLastName verifies the bulk, case-insensitive removal.
func (s *DirectorySuite) TestRemoveByLastName() {
	s.Require().True(s.dir.Add(newEntry(1, "John", "Smith")))
	s.Require().True(s.dir.Add(newEntry(2, "Michael", "Doe")))
	s.Require().True(s.dir.Add(newEntry(3, "Jane", "DOE")))

	s.True(s.dir.RemoveByLastName("doe"))
	s.Equal(1, s.dir.Count())
	s.Equal([]string{"Smith, John"}, lastFirst(s.dir.List()))

	s.False(s.dir.RemoveByLastName("doe"))
	s.False(s.dir.RemoveByLastName("Smi"), "prefix is not equality")
}

// TestRemoveEntry verifies removal by full value.
func (s *DirectorySuite) TestRemoveEntry() {
	e := newEntry(1, "John", "Smith")
	s.Require().True(s.dir.Add(e))

	changed := e
	changed.Phone = "510-555-9999"
	s.False(s.dir.RemoveEntry(changed))
	s.Equal(1, s.dir.Count())

	s.True(s.dir.RemoveEntry(e))
	s.Zero(s.dir.Count())
}

// TestFind verifies prefix search ordering and case folding.
func (s *DirectorySuite) TestFind() {
	a := newEntry(1, "John", "Smith")
	b := newEntry(2, "Michael", "Doe")
	c := newEntry(3, "Jane", "Doe")
	for _, e := range []models.Entry{a, b, c} {
		s.Require().True(s.dir.Add(e))
	}

	s.Run("exact last name sorts by first name", func() {
		s.Equal([]models.Entry{c, b}, s.dir.Find("Doe"))
	})

	s.Run("prefix is case-insensitive", func() {
		s.Equal([]string{"Doe, Jane", "Doe, Michael"}, lastFirst(s.dir.Find("do")))
		s.Equal([]models.Entry{a}, s.dir.Find("sMi"))
	})

	s.Run("empty prefix lists everything sorted", func() {
		s.Equal([]string{"Doe, Jane", "Doe, Michael", "Smith, John"}, lastFirst(s.dir.Find("")))
		s.Equal(s.dir.Find(""), s.dir.List())
	})

	s.Run("no match yields empty result", func() {
		s.Empty(s.dir.Find("zzz"))
	})

	s.Run("prefix longer than last name never matches", func() {
		s.Empty(s.dir.Find("Doesburg"))
	})

	s.Run("results are copies", func() {
		found := s.dir.Find("Smith")
		s.Require().Len(found, 1)
		found[0].Phone = "000"
		got, _ := s.dir.Get(a.ID)
		s.Equal(a.Phone, got.Phone)
	})
}

// TestClear verifies the directory empties regardless of contents.
func (s *DirectorySuite) TestClear() {
	s.dir.Clear()
	s.Zero(s.dir.Count())

	for i := 1; i <= 5; i++ {
		s.Require().True(s.dir.Add(newEntry(i, "First", "Last")))
	}
	s.dir.Clear()
	s.Zero(s.dir.Count())
	s.Empty(s.dir.List())
}

func TestHasPrefixFold(t *testing.T) {
	cases := []struct {
		s, prefix string
		want      bool
	}{
		{"Doe", "", true},
		{"Doe", "d", true},
		{"Doe", "DOE", true},
		{"Doe", "Does", false},
		{"Özil", "öz", true},
		{"", "a", false},
	}
	for _, c := range cases {
		if got := HasPrefixFold(c.s, c.prefix); got != c.want {
			t.Errorf("HasPrefixFold(%q, %q) = %v, want %v", c.s, c.prefix, got, c.want)
		}
	}
}
