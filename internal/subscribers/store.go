// Package subscribers reads subscription records, including the dynamic
// custom-field columns defined per list.
package subscribers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ignite/list-engine/internal/fields"
)

// Subscription is one subscriber of a list. Fields holds the dynamic
// custom-field columns keyed by physical column name.
type Subscription struct {
	ID        int64
	CID       string
	Email     string
	Status    string
	FirstName string
	LastName  string
	Fields    fields.Record
}

// ErrSubscriptionNotFound is returned for an unknown subscriber cid.
var ErrSubscriptionNotFound = fmt.Errorf("subscription not found")

// NewCID generates a public subscriber identifier.
func NewCID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// Store reads subscription records. Each list stores its subscribers in its
// own table so custom-field columns stay per-list.
type Store struct {
	db *sql.DB
}

// NewStore creates a subscription store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func subscriptionTable(listID int64) string {
	return fmt.Sprintf("subscription__%d", listID)
}

// GetByCID loads a subscription with all of its columns. Column names are
// taken from the result set, so custom fields added after this code was
// written still come through.
func (s *Store) GetByCID(ctx context.Context, listID int64, cid string) (*Subscription, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT * FROM `+subscriptionTable(listID)+` WHERE cid = $1`, cid)
	if err != nil {
		return nil, fmt.Errorf("reading subscription %q: %w", cid, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("reading subscription %q: %w", cid, err)
		}
		return nil, ErrSubscriptionNotFound
	}

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading subscription columns: %w", err)
	}

	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("scanning subscription %q: %w", cid, err)
	}

	sub := &Subscription{Fields: make(fields.Record)}
	for i, col := range cols {
		v := values[i]
		// Drivers hand text back as []byte.
		if b, ok := v.([]byte); ok {
			v = string(b)
		}

		switch col {
		case "id":
			if n, ok := v.(int64); ok {
				sub.ID = n
			}
		case fields.ColCID:
			sub.CID, _ = v.(string)
		case fields.ColEmail:
			sub.Email, _ = v.(string)
		case fields.ColStatus:
			sub.Status, _ = v.(string)
		case fields.ColFirstName:
			sub.FirstName, _ = v.(string)
		case fields.ColLastName:
			sub.LastName, _ = v.(string)
		default:
			sub.Fields[col] = v
		}
	}
	return sub, nil
}
