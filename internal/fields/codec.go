package fields

import "regexp"

// mergeTagPattern is the merge tag syntax: uppercase, digits and
// underscores, starting with a letter.
var mergeTagPattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

// MergeTagValid reports whether key is a syntactically valid merge tag.
func MergeTagValid(key string) bool {
	return mergeTagPattern.MatchString(key)
}

// Codec converts whole subscriber records between their stored and
// form-display representations using the registry behaviors.
type Codec struct {
	reg *Registry
}

// NewCodec creates a codec over the given registry.
func NewCodec(reg *Registry) *Codec {
	return &Codec{reg: reg}
}

// ToFormValues maps a stored record to display values, one entry per
// logical field keyed by its column. A nil record produces the new-entity
// form: every field gets its init value.
func (c *Codec) ToFormValues(gfs []*GroupedField, rec Record) FormValues {
	form := make(FormValues, len(gfs))
	for _, gf := range gfs {
		t, ok := c.reg.Get(gf.Kind)
		if !ok {
			continue
		}
		if rec == nil {
			form[gf.Column] = t.InitDisplay(gf)
			continue
		}
		var stored any
		if gf.MultiEnum() {
			stored = CollectMulti(gf, rec)
		} else {
			stored = rec[gf.Column]
		}
		form[gf.Column] = t.ToDisplay(gf, stored)
	}
	return form
}

// ToEntityValues maps submitted display values back to a stored record.
// Multi-select grouped fields fan out to their per-option columns.
func (c *Codec) ToEntityValues(gfs []*GroupedField, form FormValues) Record {
	rec := make(Record)
	for _, gf := range gfs {
		t, ok := c.reg.Get(gf.Kind)
		if !ok {
			continue
		}
		stored := t.ToStored(gf, form[gf.Column])
		if gf.MultiEnum() {
			set, _ := stored.([]string)
			ExplodeMulti(gf, set, rec)
			continue
		}
		rec[gf.Column] = stored
	}
	return rec
}

// ValidateAll runs the per-kind validation over submitted display values and
// additionally checks every field's merge tag for syntactic validity and for
// collisions with sibling fields. The result maps field keys to messages;
// an empty map means the submission is valid.
func (c *Codec) ValidateAll(gfs []*GroupedField, form FormValues) map[string]string {
	errs := make(map[string]string)

	seen := make(map[string]int, len(gfs))
	for _, gf := range gfs {
		seen[gf.Key]++
	}

	for _, gf := range gfs {
		if !MergeTagValid(gf.Key) {
			errs[gf.Key] = "Merge tag is invalid"
			continue
		}
		if seen[gf.Key] > 1 {
			errs[gf.Key] = "Another field with the same merge tag exists"
			continue
		}
		t, ok := c.reg.Get(gf.Kind)
		if !ok {
			continue
		}
		if msg := t.Validate(gf, form[gf.Column]); msg != "" {
			errs[gf.Key] = msg
		}
	}
	return errs
}
