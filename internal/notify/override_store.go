package notify

import (
	"context"
	"database/sql"
	"fmt"
)

// FormTemplateStore loads override templates from the custom_form_templates
// table, one row per (form, kind).
type FormTemplateStore struct {
	db *sql.DB
}

// NewFormTemplateStore creates an override store.
func NewFormTemplateStore(db *sql.DB) *FormTemplateStore {
	return &FormTemplateStore{db: db}
}

// GetOverride returns the override document for a form and kind, or
// ErrNoOverride when none is configured.
func (s *FormTemplateStore) GetOverride(ctx context.Context, formID int64, kind Kind) (string, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `
		SELECT template FROM custom_form_templates
		WHERE form_id = $1 AND kind = $2
	`, formID, string(kind)).Scan(&doc)
	if err == sql.ErrNoRows {
		return "", ErrNoOverride
	}
	if err != nil {
		return "", fmt.Errorf("loading override for form %d kind %s: %w", formID, kind, err)
	}
	return doc, nil
}
