package gateway

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	id "addressbook/pkg/domain"
	dErrors "addressbook/pkg/domain-errors"
)

// SQLiteGatewaySuite runs the gateway contract against an in-process sqlite file.
type SQLiteGatewaySuite struct {
	gatewayContract
	sqlGW *SQLGateway
}

func TestSQLiteGatewaySuite(t *testing.T) {
	suite.Run(t, new(SQLiteGatewaySuite))
}

func (s *SQLiteGatewaySuite) SetupTest() {
	db, err := sql.Open("sqlite", filepath.Join(s.T().TempDir(), "contacts.db"))
	s.Require().NoError(err)
	s.sqlGW = NewSQL(db, DialectSQLite)
	s.Require().NoError(s.sqlGW.Migrate(context.Background()))
	s.gw = s.sqlGW
}

func (s *SQLiteGatewaySuite) TearDownTest() {
	s.Require().NoError(s.sqlGW.Close())
}

func (s *SQLiteGatewaySuite) TestMigrateIsIdempotent() {
	s.Require().NoError(s.sqlGW.Migrate(context.Background()))
}

func (s *SQLiteGatewaySuite) TestConstraintViolationIsValidationError() {
	bad := contact("John", "Smith")
	bad.Address.Zip = 123

	_, err := s.sqlGW.Insert(context.Background(), bad)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation), "got %v", err)
}

func (s *SQLiteGatewaySuite) TestFindIDsByLastNamePrefixFoldsUnicode() {
	ozil := s.insert(contact("Mesut", "Özil"))
	s.insert(contact("Amos", "Oz"))

	ids, err := s.sqlGW.FindIDsByLastNamePrefix(context.Background(), "öz")
	s.Require().NoError(err)
	s.Equal([]id.ContactID{ozil.ID}, ids)
}

func TestParseDialect(t *testing.T) {
	for _, name := range []string{"postgres", "PGX", " sqlite "} {
		_, err := ParseDialect(name)
		require.NoError(t, err, name)
	}
	_, err := ParseDialect("mysql")
	assert.Error(t, err)
}

func TestLikePrefix(t *testing.T) {
	assert.Equal(t, "%", likePrefix(""))
	assert.Equal(t, "doe%", likePrefix("DOE"))
	assert.Equal(t, `100\%\_\\%`, likePrefix(`100%_\`))
}

func TestClassifyPassesThroughUnknownErrors(t *testing.T) {
	cause := errors.New("connection reset")
	err := classify("insert contact", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, dErrors.CodeInternal, dErrors.CodeOf(err))
	assert.NoError(t, classify("insert contact", nil))
}
