package gateway

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"addressbook/internal/contacts/models"
	id "addressbook/pkg/domain"
	"addressbook/pkg/platform/sentinel"
)

const (
	contactKeyPrefix = "contact:"
	contactIndexKey  = "contacts"
)

// RedisGateway stores each entry as a hash under contact:<id> and tracks the
// identifiers in the contacts set.
type RedisGateway struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisGateway {
	return &RedisGateway{client: client}
}

func contactKey(contactID id.ContactID) string {
	return contactKeyPrefix + contactID.String()
}

func (g *RedisGateway) LoadAll(ctx context.Context) ([]models.Entry, error) {
	members, err := g.client.SMembers(ctx, contactIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("load contact index: %w", err)
	}
	if len(members) == 0 {
		return nil, nil
	}

	cmds := make([]*redis.MapStringStringCmd, 0, len(members))
	_, err = g.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, member := range members {
			cmds = append(cmds, pipe.HGetAll(ctx, contactKeyPrefix+member))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load contacts: %w", err)
	}

	entries := make([]models.Entry, 0, len(cmds))
	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			// index entry without a hash, left behind by an interrupted delete
			continue
		}
		e, err := entryFromHash(members[i], fields)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return sortedEntries(entries, ""), nil
}

func (g *RedisGateway) Insert(ctx context.Context, entry models.Entry) (id.ContactID, error) {
	contactID := id.NewContactID()
	_, err := g.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, contactKey(contactID), entryHash(entry))
		pipe.SAdd(ctx, contactIndexKey, contactID.String())
		return nil
	})
	if err != nil {
		return id.ContactID{}, fmt.Errorf("insert contact: %w", err)
	}
	return contactID, nil
}

// Update overwrites an existing hash. WATCH guards against a concurrent delete
// between the existence check and the write.
func (g *RedisGateway) Update(ctx context.Context, entry models.Entry) error {
	key := contactKey(entry.ID)
	err := g.client.Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n == 0 {
			return sentinel.ErrNotFound
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, entryHash(entry))
			return nil
		})
		return err
	}, key)
	if err != nil {
		return fmt.Errorf("update contact: %w", err)
	}
	return nil
}

func (g *RedisGateway) Delete(ctx context.Context, contactID id.ContactID) error {
	var del *redis.IntCmd
	_, err := g.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, contactKey(contactID))
		pipe.SRem(ctx, contactIndexKey, contactID.String())
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	if del.Val() == 0 {
		return fmt.Errorf("delete contact: %w", sentinel.ErrNotFound)
	}
	return nil
}

// FindIDsByLastNamePrefix has no server-side index to lean on, so it loads
// every hash and filters with the directory's matching rules.
func (g *RedisGateway) FindIDsByLastNamePrefix(ctx context.Context, prefix string) ([]id.ContactID, error) {
	entries, err := g.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	matches := sortedEntries(entries, prefix)
	ids := make([]id.ContactID, 0, len(matches))
	for _, e := range matches {
		ids = append(ids, e.ID)
	}
	return ids, nil
}

// Close is a no-op; the client lifecycle is managed by the caller.
func (g *RedisGateway) Close() error { return nil }

func entryHash(e models.Entry) map[string]any {
	return map[string]any{
		"first_name": e.Name.First,
		"last_name":  e.Name.Last,
		"street":     e.Address.Street,
		"city":       e.Address.City,
		"state":      e.Address.State,
		"zip":        e.Address.Zip,
		"phone":      e.Phone,
		"email":      e.Email,
	}
}

func entryFromHash(member string, fields map[string]string) (models.Entry, error) {
	contactID, err := id.ParseContactID(member)
	if err != nil {
		return models.Entry{}, fmt.Errorf("parse contact id %q: %w", member, err)
	}
	zip, err := strconv.Atoi(fields["zip"])
	if err != nil {
		return models.Entry{}, fmt.Errorf("parse zip of contact %s: %w", member, err)
	}
	return models.Entry{
		ID:      contactID,
		Name:    models.Name{First: fields["first_name"], Last: fields["last_name"]},
		Address: models.Address{Street: fields["street"], City: fields["city"], State: fields["state"], Zip: zip},
		Phone:   fields["phone"],
		Email:   fields["email"],
	}, nil
}
