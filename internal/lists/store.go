// Package lists provides access to mailing lists and their key-value
// settings, with an optional Redis read-through cache for settings
// snapshots.
package lists

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// Well-known settings keys read by the notification pipeline.
const (
	SettingDefaultHomepage      = "defaultHomepage"
	SettingDefaultFrom          = "defaultFrom"
	SettingDefaultAddress       = "defaultAddress"
	SettingDefaultPostaddress   = "defaultPostaddress"
	SettingServiceURL           = "serviceUrl"
	SettingDisableConfirmations = "disableConfirmations"
)

// List is a mailing list. DefaultForm references the custom form record
// whose templates override the built-in notification content.
type List struct {
	ID          int64  `json:"id"`
	CID         string `json:"cid"`
	Name        string `json:"name"`
	DefaultForm *int64 `json:"default_form,omitempty"`
}

// ErrListNotFound is returned for an unknown list id.
var ErrListNotFound = fmt.Errorf("list not found")

// Store provides Postgres-backed access to lists and settings.
type Store struct {
	db *sql.DB
}

// NewStore creates a list store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// GetList returns one list by id.
func (s *Store) GetList(ctx context.Context, id int64) (*List, error) {
	var l List
	err := s.db.QueryRowContext(ctx, `
		SELECT id, cid, name, default_form FROM lists WHERE id = $1
	`, id).Scan(&l.ID, &l.CID, &l.Name, &l.DefaultForm)
	if err == sql.ErrNoRows {
		return nil, ErrListNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting list %d: %w", id, err)
	}
	return &l, nil
}

// GetListByCID returns one list by its public cid.
func (s *Store) GetListByCID(ctx context.Context, cid string) (*List, error) {
	var l List
	err := s.db.QueryRowContext(ctx, `
		SELECT id, cid, name, default_form FROM lists WHERE cid = $1
	`, cid).Scan(&l.ID, &l.CID, &l.Name, &l.DefaultForm)
	if err == sql.ErrNoRows {
		return nil, ErrListNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting list %q: %w", cid, err)
	}
	return &l, nil
}

// GetSettings returns the values of the requested settings keys. Keys
// missing from storage are absent from the result, matching the original
// key-value contract.
func (s *Store) GetSettings(ctx context.Context, keys []string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, value FROM settings WHERE key = ANY($1)
	`, pq.Array(keys))
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string, len(keys))
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scanning setting: %w", err)
		}
		out[k] = v
	}
	return out, rows.Err()
}
