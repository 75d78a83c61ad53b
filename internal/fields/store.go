package fields

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Order anchor values accepted next to a numeric predecessor id.
const (
	OrderEnd  = "end"
	OrderNone = "none"
)

// SaveFieldRequest is the payload for creating or updating a field
// definition. The order-before members take a field id, "end" or "none".
type SaveFieldRequest struct {
	Name         string   `json:"name"`
	Key          string   `json:"key"`
	Kind         Kind     `json:"kind"`
	Settings     Settings `json:"settings"`
	DefaultValue *string  `json:"default_value,omitempty"`

	// EnumOptions holds options authored as key|label lines for enumeration
	// kinds. When set it takes precedence over Settings.Options.
	EnumOptions string `json:"enum_options,omitempty"`

	OrderListBefore      string `json:"order_list_before"`
	OrderSubscribeBefore string `json:"order_subscribe_before"`
	OrderManageBefore    string `json:"order_manage_before"`
}

// ParseEnumOptions parses options authored one per line as key|label.
// A line without a separator uses the key as its label.
func ParseEnumOptions(text string) ([]Option, error) {
	var opts []Option
	seen := make(map[string]bool)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, label, found := strings.Cut(line, "|")
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("option line %q has an empty key", line)
		}
		if seen[key] {
			return nil, fmt.Errorf("duplicate option key %q", key)
		}
		seen[key] = true
		if !found || strings.TrimSpace(label) == "" {
			label = key
		}
		opts = append(opts, Option{Key: key, Label: strings.TrimSpace(label)})
	}
	return opts, nil
}

// Store provides Postgres-backed access to field definitions.
type Store struct {
	db *sql.DB
}

// NewStore creates a field-definition store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const fieldColumns = `id, list_id, name, key, kind, settings, default_value,
	       order_list, order_subscribe, order_manage`

func scanField(scan func(...any) error) (*FieldDefinition, error) {
	var f FieldDefinition
	var settingsJSON []byte
	err := scan(
		&f.ID, &f.ListID, &f.Name, &f.Key, &f.Kind, &settingsJSON,
		&f.DefaultValue, &f.OrderList, &f.OrderSubscribe, &f.OrderManage,
	)
	if err != nil {
		return nil, err
	}
	if len(settingsJSON) > 0 {
		if err := json.Unmarshal(settingsJSON, &f.Settings); err != nil {
			return nil, fmt.Errorf("decoding field %d settings: %w", f.ID, err)
		}
	}
	return &f, nil
}

// ListFields returns every field definition of a list in subscribe-form
// order, hidden fields last.
func (s *Store) ListFields(ctx context.Context, listID int64) ([]*FieldDefinition, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+fieldColumns+`
		FROM list_fields
		WHERE list_id = $1
		ORDER BY order_subscribe NULLS LAST, id
	`, listID)
	if err != nil {
		return nil, fmt.Errorf("listing fields for list %d: %w", listID, err)
	}
	defer rows.Close()

	var out []*FieldDefinition
	for rows.Next() {
		f, err := scanField(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning field: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// GetField returns one field definition.
func (s *Store) GetField(ctx context.Context, listID, fieldID int64) (*FieldDefinition, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+fieldColumns+`
		FROM list_fields
		WHERE list_id = $1 AND id = $2
	`, listID, fieldID)
	f, err := scanField(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrFieldNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting field %d: %w", fieldID, err)
	}
	return f, nil
}

// KeyExists reports whether another field of the list already uses the merge
// tag. The field being edited is excluded via excludeID (0 when creating).
func (s *Store) KeyExists(ctx context.Context, listID int64, key string, excludeID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM list_fields
			WHERE list_id = $1 AND key = $2 AND id <> $3
		)
	`, listID, key, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking merge tag %q: %w", key, err)
	}
	return exists, nil
}

// CreateField validates and inserts a field definition, resolving the
// order-before anchors inside one transaction.
func (s *Store) CreateField(ctx context.Context, listID int64, req *SaveFieldRequest) (*FieldDefinition, error) {
	return s.saveField(ctx, listID, 0, req)
}

// UpdateField validates and rewrites an existing field definition.
func (s *Store) UpdateField(ctx context.Context, listID, fieldID int64, req *SaveFieldRequest) (*FieldDefinition, error) {
	if fieldID == 0 {
		return nil, ErrFieldNotFound
	}
	return s.saveField(ctx, listID, fieldID, req)
}

func (s *Store) saveField(ctx context.Context, listID, fieldID int64, req *SaveFieldRequest) (*FieldDefinition, error) {
	if !MergeTagValid(req.Key) {
		return nil, fmt.Errorf("merge tag %q is invalid", req.Key)
	}
	exists, err := s.KeyExists(ctx, listID, req.Key, fieldID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrKeyExists
	}

	settings := req.Settings
	if req.EnumOptions != "" {
		opts, err := ParseEnumOptions(req.EnumOptions)
		if err != nil {
			return nil, err
		}
		settings.Options = opts
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if req.Kind == KindOption {
		// An option must hang off an existing grouped composite.
		var composite Kind
		err := tx.QueryRowContext(ctx, `
			SELECT kind FROM list_fields WHERE list_id = $1 AND id = $2
		`, listID, settings.Group).Scan(&composite)
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("group field %d: %w", settings.Group, ErrFieldNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("checking group field: %w", err)
		}
		if !groupedKind(composite) {
			return nil, fmt.Errorf("field %d is not a grouped field", settings.Group)
		}
	}

	orderList, err := s.resolveOrder(ctx, tx, listID, fieldID, "order_list", req.OrderListBefore)
	if err != nil {
		return nil, err
	}
	orderSubscribe, err := s.resolveOrder(ctx, tx, listID, fieldID, "order_subscribe", req.OrderSubscribeBefore)
	if err != nil {
		return nil, err
	}
	orderManage, err := s.resolveOrder(ctx, tx, listID, fieldID, "order_manage", req.OrderManageBefore)
	if err != nil {
		return nil, err
	}

	settingsJSON, err := json.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("encoding settings: %w", err)
	}

	f := &FieldDefinition{
		ID:             fieldID,
		ListID:         listID,
		Name:           req.Name,
		Key:            req.Key,
		Kind:           req.Kind,
		Settings:       settings,
		DefaultValue:   req.DefaultValue,
		OrderList:      orderList,
		OrderSubscribe: orderSubscribe,
		OrderManage:    orderManage,
	}

	if fieldID == 0 {
		err = tx.QueryRowContext(ctx, `
			INSERT INTO list_fields
			(list_id, name, key, kind, settings, default_value, order_list, order_subscribe, order_manage)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id
		`, listID, f.Name, f.Key, f.Kind, settingsJSON, f.DefaultValue,
			f.OrderList, f.OrderSubscribe, f.OrderManage,
		).Scan(&f.ID)
		if err != nil {
			return nil, fmt.Errorf("inserting field: %w", err)
		}
	} else {
		res, err := tx.ExecContext(ctx, `
			UPDATE list_fields
			SET name = $3, key = $4, kind = $5, settings = $6, default_value = $7,
			    order_list = $8, order_subscribe = $9, order_manage = $10
			WHERE list_id = $1 AND id = $2
		`, listID, fieldID, f.Name, f.Key, f.Kind, settingsJSON, f.DefaultValue,
			f.OrderList, f.OrderSubscribe, f.OrderManage,
		)
		if err != nil {
			return nil, fmt.Errorf("updating field %d: %w", fieldID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil, ErrFieldNotFound
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing field save: %w", err)
	}
	return f, nil
}

// resolveOrder turns an order-before anchor into a numeric position. "none"
// hides the field (nil), "end" appends after the current maximum, and a
// numeric id takes that field's position after shifting it and everything
// behind it down by one. A deleted anchor is a DependencyNotFoundError so
// the caller can distinguish it from plain validation failures.
func (s *Store) resolveOrder(ctx context.Context, tx *sql.Tx, listID, excludeID int64, column, before string) (*int, error) {
	switch before {
	case OrderNone, "":
		return nil, nil

	case OrderEnd:
		var maxOrder sql.NullInt64
		err := tx.QueryRowContext(ctx, `
			SELECT MAX(`+column+`) FROM list_fields WHERE list_id = $1 AND id <> $2
		`, listID, excludeID).Scan(&maxOrder)
		if err != nil {
			return nil, fmt.Errorf("resolving %s end: %w", column, err)
		}
		pos := int(maxOrder.Int64) + 1
		if !maxOrder.Valid {
			pos = 0
		}
		return &pos, nil
	}

	anchorID, err := strconv.ParseInt(before, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s anchor %q", column, before)
	}

	var anchor sql.NullInt64
	err = tx.QueryRowContext(ctx, `
		SELECT `+column+` FROM list_fields WHERE list_id = $1 AND id = $2
	`, listID, anchorID).Scan(&anchor)
	if err == sql.ErrNoRows || (err == nil && !anchor.Valid) {
		return nil, &DependencyNotFoundError{OrderColumn: column, FieldID: anchorID}
	}
	if err != nil {
		return nil, fmt.Errorf("resolving %s anchor: %w", column, err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE list_fields SET `+column+` = `+column+` + 1
		WHERE list_id = $1 AND `+column+` >= $2 AND id <> $3
	`, listID, anchor.Int64, excludeID)
	if err != nil {
		return nil, fmt.Errorf("shifting %s positions: %w", column, err)
	}

	pos := int(anchor.Int64)
	return &pos, nil
}

// DeleteField removes a field definition together with the option children
// hanging off it.
func (s *Store) DeleteField(ctx context.Context, listID, fieldID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM list_fields
		WHERE list_id = $1 AND kind = 'option' AND settings->>'group' = $2
	`, listID, strconv.FormatInt(fieldID, 10)); err != nil {
		return fmt.Errorf("deleting option children of field %d: %w", fieldID, err)
	}

	res, err := tx.ExecContext(ctx, `
		DELETE FROM list_fields WHERE list_id = $1 AND id = $2
	`, listID, fieldID)
	if err != nil {
		return fmt.Errorf("deleting field %d: %w", fieldID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrFieldNotFound
	}

	return tx.Commit()
}
