package gateway

import (
	"context"
	"errors"

	"github.com/stretchr/testify/suite"

	"addressbook/internal/contacts/models"
	id "addressbook/pkg/domain"
	"addressbook/pkg/platform/sentinel"
)

type contactGateway interface {
	LoadAll(ctx context.Context) ([]models.Entry, error)
	Insert(ctx context.Context, entry models.Entry) (id.ContactID, error)
	Update(ctx context.Context, entry models.Entry) error
	Delete(ctx context.Context, contactID id.ContactID) error
	FindIDsByLastNamePrefix(ctx context.Context, prefix string) ([]id.ContactID, error)
}

// gatewayContract holds the behaviour every gateway implementation shares.
// Concrete suites embed it and assign gw in SetupTest.
type gatewayContract struct {
	suite.Suite
	gw contactGateway
}

func contact(first, last string) models.Entry {
	return models.Entry{
		Name:    models.Name{First: first, Last: last},
		Address: models.Address{Street: "123 Main Street", City: "San Francisco", State: "CA", Zip: 94105},
		Phone:   "555-555-1234",
		Email:   first + "@example.com",
	}
}

func (s *gatewayContract) insert(e models.Entry) models.Entry {
	contactID, err := s.gw.Insert(context.Background(), e)
	s.Require().NoError(err)
	s.Require().False(contactID.IsNil())
	return e.WithID(contactID)
}

func (s *gatewayContract) TestInsertAssignsFreshIDs() {
	ctx := context.Background()
	preset := contact("John", "Smith").WithID(id.NewContactID())

	first, err := s.gw.Insert(ctx, preset)
	s.Require().NoError(err)
	second, err := s.gw.Insert(ctx, preset)
	s.Require().NoError(err)

	s.NotEqual(preset.ID, first, "caller supplied id is ignored")
	s.NotEqual(first, second)

	all, err := s.gw.LoadAll(ctx)
	s.Require().NoError(err)
	s.Len(all, 2)
}

func (s *gatewayContract) TestLoadAllRoundTrip() {
	ctx := context.Background()
	stored := s.insert(contact("Jane", "Doe"))

	all, err := s.gw.LoadAll(ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 1)
	s.Equal(stored, all[0])
}

func (s *gatewayContract) TestUpdate() {
	ctx := context.Background()

	s.Run("replaces the stored value", func() {
		stored := s.insert(contact("Michael", "Doe"))
		stored.Phone = "555-555-9999"
		stored.Address.Zip = 10001

		s.Require().NoError(s.gw.Update(ctx, stored))

		all, err := s.gw.LoadAll(ctx)
		s.Require().NoError(err)
		s.Contains(all, stored)
	})

	s.Run("missing row is not found", func() {
		err := s.gw.Update(ctx, contact("Ghost", "Nobody").WithID(id.NewContactID()))
		s.Require().Error(err)
		s.True(errors.Is(err, sentinel.ErrNotFound))
	})
}

func (s *gatewayContract) TestDelete() {
	ctx := context.Background()
	stored := s.insert(contact("John", "Smith"))

	s.Require().NoError(s.gw.Delete(ctx, stored.ID))
	all, err := s.gw.LoadAll(ctx)
	s.Require().NoError(err)
	s.Empty(all)

	err = s.gw.Delete(ctx, stored.ID)
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *gatewayContract) TestFindIDsByLastNamePrefix() {
	ctx := context.Background()
	smith := s.insert(contact("John", "Smith"))
	michael := s.insert(contact("Michael", "Doe"))
	jane := s.insert(contact("Jane", "Doe"))
	s.insert(contact("Percent", "100%_Off"))

	s.Run("orders by last then first name", func() {
		ids, err := s.gw.FindIDsByLastNamePrefix(ctx, "Doe")
		s.Require().NoError(err)
		s.Equal([]id.ContactID{jane.ID, michael.ID}, ids)
	})

	s.Run("ignores case", func() {
		ids, err := s.gw.FindIDsByLastNamePrefix(ctx, "sMI")
		s.Require().NoError(err)
		s.Equal([]id.ContactID{smith.ID}, ids)
	})

	s.Run("wildcards are literal", func() {
		ids, err := s.gw.FindIDsByLastNamePrefix(ctx, "_")
		s.Require().NoError(err)
		s.Empty(ids)

		ids, err = s.gw.FindIDsByLastNamePrefix(ctx, "100%_")
		s.Require().NoError(err)
		s.Len(ids, 1)
	})

	s.Run("no match", func() {
		ids, err := s.gw.FindIDsByLastNamePrefix(ctx, "zzz")
		s.Require().NoError(err)
		s.Empty(ids)
	})
}
