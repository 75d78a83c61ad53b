package fields

import (
	"strconv"
	"strings"
	"time"
)

// Type describes the value behavior of one field kind. Implementations are
// stateless; a single Registry instance serves unlimited concurrent readers.
//
// InitDisplay produces the value shown in a new, empty form. ToDisplay maps
// a stored value to its form representation and ToStored maps a submitted
// form value back. Validate returns a human-readable message for an invalid
// display value, or "" when the value passes. Indexable reports whether the
// kind is safe to use in sortable and filterable listings.
type Type interface {
	InitDisplay(f *GroupedField) any
	ToDisplay(f *GroupedField, stored any) any
	ToStored(f *GroupedField, display any) any
	Validate(f *GroupedField, display any) string
	Indexable() bool
}

// Registry is the immutable kind → behavior table. Adding a field kind means
// adding a Type implementation here; nothing else branches on the kind tag.
type Registry struct {
	types map[Kind]Type
}

// NewRegistry builds the registry with all supported kinds.
func NewRegistry() *Registry {
	return &Registry{types: map[Kind]Type{
		KindText:     stringType{},
		KindWebsite:  stringType{},
		KindLongText: stringType{},
		KindGPG:      stringType{},
		KindNumber:   numberType{},
		KindDate:     dateType{},
		KindBirthday: dateType{birthday: true},
		KindJSON:     jsonType{},

		KindDropdownEnum: enumSingleType{},
		KindRadioEnum:    enumSingleType{},

		// Grouped kinds are normalized into the enumeration shape by
		// BuildGroupedViews, so they share the enum behaviors.
		KindRadioGrouped:    enumSingleType{},
		KindDropdownGrouped: enumSingleType{},
		KindCheckboxGrouped: enumMultiType{},
	}}
}

// Get returns the behavior for a kind.
func (r *Registry) Get(k Kind) (Type, bool) {
	t, ok := r.types[k]
	return t, ok
}

// Kinds returns every registered kind tag.
func (r *Registry) Kinds() []Kind {
	out := make([]Kind, 0, len(r.types))
	for k := range r.types {
		out = append(out, k)
	}
	return out
}

func displayString(display any) string {
	s, _ := display.(string)
	return s
}

// stringType covers text, website, longtext and gpg. An empty submitted
// string is stored as nil so "no value" has a single representation.
type stringType struct{}

func (stringType) InitDisplay(*GroupedField) any { return "" }

func (stringType) ToDisplay(_ *GroupedField, stored any) any {
	if stored == nil {
		return ""
	}
	if s, ok := stored.(string); ok {
		return s
	}
	return ""
}

func (stringType) ToStored(_ *GroupedField, display any) any {
	s := displayString(display)
	if s == "" {
		return nil
	}
	return s
}

func (stringType) Validate(*GroupedField, any) string { return "" }
func (stringType) Indexable() bool                    { return true }

type numberType struct{}

func (numberType) InitDisplay(*GroupedField) any { return "" }

func (numberType) ToDisplay(_ *GroupedField, stored any) any {
	switch v := stored.(type) {
	case nil:
		return ""
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case string:
		return v
	}
	return ""
}

func (numberType) ToStored(_ *GroupedField, display any) any {
	s := strings.TrimSpace(displayString(display))
	if s == "" {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// Validation reports the error; nothing usable to store.
		return nil
	}
	return n
}

func (numberType) Validate(_ *GroupedField, display any) string {
	s := strings.TrimSpace(displayString(display))
	if s == "" {
		return ""
	}
	if _, err := strconv.ParseInt(s, 10, 64); err != nil {
		return "Value must be a number"
	}
	return ""
}

func (numberType) Indexable() bool { return true }

// dateType covers date and birthday. The display format follows the field's
// configured DateFormat; birthdays carry no year and are stored under a
// fixed one.
type dateType struct {
	birthday bool
}

func (d dateType) layout(f *GroupedField) string {
	if d.birthday {
		return birthdayLayout(f.Settings.DateFormat)
	}
	return dateLayout(f.Settings.DateFormat)
}

func (dateType) InitDisplay(*GroupedField) any { return "" }

func (d dateType) ToDisplay(f *GroupedField, stored any) any {
	t, ok := stored.(time.Time)
	if !ok {
		return ""
	}
	return t.Format(d.layout(f))
}

func (d dateType) ToStored(f *GroupedField, display any) any {
	s := strings.TrimSpace(displayString(display))
	if s == "" {
		return nil
	}
	t, err := time.Parse(d.layout(f), s)
	if err != nil {
		return nil
	}
	if d.birthday {
		return normalizeBirthday(t)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (d dateType) Validate(f *GroupedField, display any) string {
	s := strings.TrimSpace(displayString(display))
	if s == "" {
		return ""
	}
	if _, err := time.Parse(d.layout(f), s); err != nil {
		return "Date is invalid"
	}
	return ""
}

func (dateType) Indexable() bool { return true }

// jsonType passes values through untouched; the raw document is edited as
// text and rendered by templates downstream.
type jsonType struct{}

func (jsonType) InitDisplay(*GroupedField) any { return "" }

func (jsonType) ToDisplay(_ *GroupedField, stored any) any {
	if stored == nil {
		return ""
	}
	if s, ok := stored.(string); ok {
		return s
	}
	return ""
}

func (jsonType) ToStored(_ *GroupedField, display any) any {
	return displayString(display)
}

func (jsonType) Validate(*GroupedField, any) string { return "" }
func (jsonType) Indexable() bool                    { return false }

// enumSingleType covers dropdown-enum, radio-enum and the single-select
// grouped kinds. A missing value falls back to the field's default value,
// then the first option key, then the empty string.
type enumSingleType struct{}

func fallbackKey(f *GroupedField) string {
	if f.DefaultValue != nil && *f.DefaultValue != "" {
		return *f.DefaultValue
	}
	if len(f.Options) > 0 {
		return f.Options[0].Key
	}
	return ""
}

func (enumSingleType) InitDisplay(f *GroupedField) any { return fallbackKey(f) }

func (enumSingleType) ToDisplay(f *GroupedField, stored any) any {
	if stored == nil {
		return fallbackKey(f)
	}
	if s, ok := stored.(string); ok {
		return s
	}
	return fallbackKey(f)
}

func (enumSingleType) ToStored(_ *GroupedField, display any) any {
	return displayString(display)
}

func (enumSingleType) Validate(*GroupedField, any) string { return "" }
func (enumSingleType) Indexable() bool                    { return true }

// enumMultiType covers checkbox-grouped. The logical value is the set of
// selected option keys; the codec fans it out to the per-option columns.
type enumMultiType struct{}

func (enumMultiType) InitDisplay(*GroupedField) any { return []string{} }

func (enumMultiType) ToDisplay(_ *GroupedField, stored any) any {
	if set, ok := stored.([]string); ok {
		return set
	}
	return []string{}
}

func (enumMultiType) ToStored(_ *GroupedField, display any) any {
	if set, ok := display.([]string); ok {
		return set
	}
	return []string{}
}

func (enumMultiType) Validate(*GroupedField, any) string { return "" }
func (enumMultiType) Indexable() bool                    { return false }
