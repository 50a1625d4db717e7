//go:build integration

package gateway

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	dErrors "addressbook/pkg/domain-errors"
	"addressbook/pkg/testutil/containers"
)

type PostgresGatewaySuite struct {
	gatewayContract
	pg      *containers.PostgresContainer
	dialect Dialect
	sqlGW   *SQLGateway
}

func TestPostgresGatewaySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, &PostgresGatewaySuite{dialect: DialectPostgres})
	suite.Run(t, &PostgresGatewaySuite{dialect: DialectPgx})
}

func (s *PostgresGatewaySuite) SetupSuite() {
	s.pg = containers.GetManager().GetPostgres(s.T())
	db := s.pg.DB
	if s.dialect == DialectPgx {
		db = s.pg.OpenPgx(s.T())
	}
	s.sqlGW = NewSQL(db, s.dialect)
	s.Require().NoError(s.sqlGW.Migrate(context.Background()))
	s.gw = s.sqlGW
}

func (s *PostgresGatewaySuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(context.Background(), "address_entries"))
}

func (s *PostgresGatewaySuite) TestOverlongStateIsValidationError() {
	bad := contact("John", "Smith")
	bad.Address.State = "CAL"

	_, err := s.sqlGW.Insert(context.Background(), bad)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation), "got %v", err)
}

func (s *PostgresGatewaySuite) TestCheckViolationIsValidationError() {
	bad := contact("John", "Smith")
	bad.Address.Zip = 99

	_, err := s.sqlGW.Insert(context.Background(), bad)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation), "got %v", err)
}
