package gateway

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"addressbook/internal/contacts/directory"
	"addressbook/internal/contacts/models"
	id "addressbook/pkg/domain"
	"addressbook/pkg/platform/sentinel"
)

// Dialect names the database/sql driver behind a SQLGateway.
type Dialect string

const (
	DialectPostgres Dialect = "postgres" // github.com/lib/pq
	DialectPgx      Dialect = "pgx"      // github.com/jackc/pgx/v5/stdlib
	DialectSQLite   Dialect = "sqlite"   // modernc.org/sqlite
)

// ParseDialect validates a configured driver name.
func ParseDialect(name string) (Dialect, error) {
	switch d := Dialect(strings.ToLower(strings.TrimSpace(name))); d {
	case DialectPostgres, DialectPgx, DialectSQLite:
		return d, nil
	default:
		return "", fmt.Errorf("unsupported sql dialect %q", name)
	}
}

const entryColumns = `id, first_name, last_name, street, city, state, zip, phone, email`

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS address_entries (
		id         UUID PRIMARY KEY,
		first_name VARCHAR(100) NOT NULL,
		last_name  VARCHAR(100) NOT NULL,
		street     VARCHAR(200) NOT NULL,
		city       VARCHAR(100) NOT NULL,
		state      VARCHAR(2)   NOT NULL,
		zip        INTEGER      NOT NULL CHECK (zip BETWEEN 10000 AND 99999),
		phone      VARCHAR(40)  NOT NULL,
		email      VARCHAR(200) NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS address_entries_last_name_idx ON address_entries (lower(last_name), first_name)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS address_entries (
		id         TEXT PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name  TEXT NOT NULL,
		street     TEXT NOT NULL,
		city       TEXT NOT NULL,
		state      TEXT NOT NULL CHECK (length(state) = 2),
		zip        INTEGER NOT NULL CHECK (zip BETWEEN 10000 AND 99999),
		phone      TEXT NOT NULL,
		email      TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS address_entries_last_name_idx ON address_entries (lower(last_name), first_name)`,
}

// SQLGateway persists entries in the address_entries table.
type SQLGateway struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQL wraps an open database. The caller owns the pool unless Close is called.
func NewSQL(db *sql.DB, dialect Dialect) *SQLGateway {
	return &SQLGateway{db: db, dialect: dialect}
}

// Migrate creates the table and its index when missing.
func (g *SQLGateway) Migrate(ctx context.Context) error {
	schema := postgresSchema
	if g.dialect == DialectSQLite {
		schema = sqliteSchema
	}
	for _, stmt := range schema {
		if _, err := g.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate address_entries: %w", err)
		}
	}
	return nil
}

func (g *SQLGateway) LoadAll(ctx context.Context) ([]models.Entry, error) {
	rows, err := g.db.QueryContext(ctx, `SELECT `+entryColumns+` FROM address_entries ORDER BY last_name, first_name`)
	if err != nil {
		return nil, fmt.Errorf("load contacts: %w", err)
	}
	defer rows.Close()

	var entries []models.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contacts: %w", err)
	}
	return entries, nil
}

// Insert stores entry under a freshly generated identifier. Any ID already on
// entry is ignored.
func (g *SQLGateway) Insert(ctx context.Context, entry models.Entry) (id.ContactID, error) {
	contactID := id.NewContactID()
	_, err := g.db.ExecContext(ctx, `
		INSERT INTO address_entries (`+entryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, entryArgs(entry.WithID(contactID))...)
	if err != nil {
		return id.ContactID{}, classify("insert contact", err)
	}
	return contactID, nil
}

func (g *SQLGateway) Update(ctx context.Context, entry models.Entry) error {
	res, err := g.db.ExecContext(ctx, `
		UPDATE address_entries
		SET first_name = $2, last_name = $3, street = $4, city = $5,
			state = $6, zip = $7, phone = $8, email = $9
		WHERE id = $1
	`, entryArgs(entry)...)
	if err != nil {
		return classify("update contact", err)
	}
	return requireRow(res, "update contact")
}

func (g *SQLGateway) Delete(ctx context.Context, contactID id.ContactID) error {
	res, err := g.db.ExecContext(ctx, `DELETE FROM address_entries WHERE id = $1`, uuid.UUID(contactID))
	if err != nil {
		return classify("delete contact", err)
	}
	return requireRow(res, "delete contact")
}

// FindIDsByLastNamePrefix filters server side. Matching ignores case and the
// result is ordered by last name, then first name. SQLite's lower() and LIKE
// fold ASCII only, so that dialect scans last names and folds them here.
func (g *SQLGateway) FindIDsByLastNamePrefix(ctx context.Context, prefix string) ([]id.ContactID, error) {
	if g.dialect == DialectSQLite {
		return g.findIDsFolded(ctx, prefix)
	}
	rows, err := g.db.QueryContext(ctx, `
		SELECT id FROM address_entries
		WHERE lower(last_name) LIKE $1 ESCAPE '\'
		ORDER BY last_name, first_name
	`, likePrefix(prefix))
	if err != nil {
		return nil, fmt.Errorf("find contacts by last name: %w", err)
	}
	defer rows.Close()

	var ids []id.ContactID
	for rows.Next() {
		var raw uuid.UUID
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan contact id: %w", err)
		}
		ids = append(ids, id.ContactID(raw))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contact ids: %w", err)
	}
	return ids, nil
}

func (g *SQLGateway) findIDsFolded(ctx context.Context, prefix string) ([]id.ContactID, error) {
	rows, err := g.db.QueryContext(ctx, `
		SELECT id, last_name FROM address_entries
		ORDER BY last_name, first_name
	`)
	if err != nil {
		return nil, fmt.Errorf("find contacts by last name: %w", err)
	}
	defer rows.Close()

	var ids []id.ContactID
	for rows.Next() {
		var (
			raw  uuid.UUID
			last string
		)
		if err := rows.Scan(&raw, &last); err != nil {
			return nil, fmt.Errorf("scan contact id: %w", err)
		}
		if directory.HasPrefixFold(last, prefix) {
			ids = append(ids, id.ContactID(raw))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contact ids: %w", err)
	}
	return ids, nil
}

// Close releases the connection pool.
func (g *SQLGateway) Close() error {
	return g.db.Close()
}

func entryArgs(e models.Entry) []any {
	return []any{
		uuid.UUID(e.ID),
		e.Name.First,
		e.Name.Last,
		e.Address.Street,
		e.Address.City,
		e.Address.State,
		e.Address.Zip,
		e.Phone,
		e.Email,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (models.Entry, error) {
	var (
		raw uuid.UUID
		e   models.Entry
	)
	err := row.Scan(&raw, &e.Name.First, &e.Name.Last, &e.Address.Street, &e.Address.City,
		&e.Address.State, &e.Address.Zip, &e.Phone, &e.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Entry{}, sentinel.ErrNotFound
		}
		return models.Entry{}, fmt.Errorf("scan contact: %w", err)
	}
	e.ID = id.ContactID(raw)
	return e, nil
}

func requireRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, sentinel.ErrNotFound)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePrefix(prefix string) string {
	return likeEscaper.Replace(strings.ToLower(prefix)) + "%"
}
