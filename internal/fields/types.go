// Package fields implements user-defined subscriber attributes ("merge
// fields"): per-kind value behavior, grouped composite fields, the
// subscription value codec, and the Postgres-backed field-definition store.
package fields

import "time"

// Kind tags a field definition with its value behavior.
type Kind string

const (
	KindText            Kind = "text"
	KindWebsite         Kind = "website"
	KindLongText        Kind = "longtext"
	KindGPG             Kind = "gpg"
	KindNumber          Kind = "number"
	KindDate            Kind = "date"
	KindBirthday        Kind = "birthday"
	KindJSON            Kind = "json"
	KindDropdownEnum    Kind = "dropdown-enum"
	KindRadioEnum       Kind = "radio-enum"
	KindCheckboxGrouped Kind = "checkbox-grouped"
	KindRadioGrouped    Kind = "radio-grouped"
	KindDropdownGrouped Kind = "dropdown-grouped"

	// KindOption is the child definition backing one selectable option of a
	// grouped composite field. It never reaches the dispatch registry on its
	// own; BuildGroupedViews folds options into their composite.
	KindOption Kind = "option"
)

// DateFormat selects between US and European day/month ordering.
type DateFormat string

const (
	DateFormatUS  DateFormat = "us"
	DateFormatEUR DateFormat = "eur"
)

// Option is one selectable entry of an enumeration field.
type Option struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Settings carries the kind-specific configuration of a field definition.
type Settings struct {
	DateFormat DateFormat `json:"date_format,omitempty"`
	Options    []Option   `json:"options,omitempty"`
	// Group references the owning composite field for option kinds.
	Group int64 `json:"group,omitempty"`
}

// FieldDefinition is a stored merge-field schema entry for one list.
// Key is the merge tag identifier (A-Z, 0-9, _; starts with a letter) and is
// unique within the list. The order columns hold the numeric display position
// per screen, or nil when the field is hidden on that screen.
type FieldDefinition struct {
	ID           int64    `json:"id"`
	ListID       int64    `json:"list_id"`
	Name         string   `json:"name"`
	Key          string   `json:"key"`
	Kind         Kind     `json:"kind"`
	Settings     Settings `json:"settings"`
	DefaultValue *string  `json:"default_value,omitempty"`

	OrderList      *int `json:"order_list,omitempty"`
	OrderSubscribe *int `json:"order_subscribe,omitempty"`
	OrderManage    *int `json:"order_manage,omitempty"`
}

// Record maps physical column names to stored values. Stored values are
// nil, string, int64, time.Time or bool depending on the field kind.
type Record map[string]any

// FormValues maps logical merge-tag columns to display values: string for
// every kind except multi-select grouped fields, which use []string.
type FormValues map[string]any

// Fixed subscription columns that exist on every list independent of any
// field definition.
const (
	ColEmail     = "email"
	ColCID       = "cid"
	ColStatus    = "status"
	ColFirstName = "first_name"
	ColLastName  = "last_name"
)

// RowValue pairs a logical field with its current value in a record.
type RowValue struct {
	Field *GroupedField
	Value any
}

// dateLayouts maps a DateFormat to the Go reference layout.
var dateLayouts = map[DateFormat]string{
	DateFormatUS:  "01/02/2006",
	DateFormatEUR: "02/01/2006",
}

var birthdayLayouts = map[DateFormat]string{
	DateFormatUS:  "01/02",
	DateFormatEUR: "02/01",
}

// birthdayYear is the fixed year birthdays are stored under so that two
// birthdays compare by month and day only.
const birthdayYear = 2000

func dateLayout(f DateFormat) string {
	if l, ok := dateLayouts[f]; ok {
		return l
	}
	return dateLayouts[DateFormatUS]
}

func birthdayLayout(f DateFormat) string {
	if l, ok := birthdayLayouts[f]; ok {
		return l
	}
	return birthdayLayouts[DateFormatUS]
}

// normalizeBirthday pins a parsed birthday to the fixed storage year.
func normalizeBirthday(t time.Time) time.Time {
	return time.Date(birthdayYear, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
