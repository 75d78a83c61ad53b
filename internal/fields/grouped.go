package fields

import (
	"sort"
	"strconv"
)

// GroupedField is the logical view of a field after grouped composites have
// been merged with their option children. Plain fields pass through with
// their own column and inline options, so every field downstream of
// BuildGroupedViews has the same shape and the registry behaviors apply
// uniformly -- grouped kinds are not a separate dispatch branch.
type GroupedField struct {
	FieldDefinition

	// Column is the logical merge-tag column. For multi-select grouped
	// fields it keys the display map only; storage goes through
	// OptionColumns.
	Column string

	// Options is the assembled option list: Settings.Options for plain
	// enumerations, one entry per child definition for grouped composites.
	Options []Option

	// OptionColumns maps an option key to the physical column of the child
	// definition backing it. Populated for multi-select grouped kinds only.
	OptionColumns map[string]string
}

// MultiEnum reports whether the field stores a set of option keys across
// several physical columns.
func (gf *GroupedField) MultiEnum() bool {
	return gf.Kind == KindCheckboxGrouped
}

func groupedKind(k Kind) bool {
	switch k {
	case KindCheckboxGrouped, KindRadioGrouped, KindDropdownGrouped:
		return true
	}
	return false
}

// BuildGroupedViews folds option child definitions into their grouped
// composite and adapts every remaining definition into a GroupedField.
// Children are matched by Settings.Group and ordered by their own list
// order (hidden children last, ties by id). The input order of the
// non-option definitions is preserved.
func BuildGroupedViews(defs []*FieldDefinition) []*GroupedField {
	childrenOf := make(map[int64][]*FieldDefinition)
	for _, d := range defs {
		if d.Kind == KindOption {
			childrenOf[d.Settings.Group] = append(childrenOf[d.Settings.Group], d)
		}
	}
	for _, children := range childrenOf {
		sort.SliceStable(children, func(i, j int) bool {
			oi, oj := children[i].OrderList, children[j].OrderList
			switch {
			case oi != nil && oj != nil && *oi != *oj:
				return *oi < *oj
			case oi != nil && oj == nil:
				return true
			case oi == nil && oj != nil:
				return false
			}
			return children[i].ID < children[j].ID
		})
	}

	var out []*GroupedField
	for _, d := range defs {
		if d.Kind == KindOption {
			continue
		}

		gf := &GroupedField{
			FieldDefinition: *d,
			Column:          Column(d),
			Options:         d.Settings.Options,
		}

		if groupedKind(d.Kind) {
			children := childrenOf[d.ID]
			gf.Options = make([]Option, 0, len(children))
			if gf.MultiEnum() {
				gf.OptionColumns = make(map[string]string, len(children))
			}
			for _, c := range children {
				key := strconv.FormatInt(c.ID, 10)
				gf.Options = append(gf.Options, Option{Key: key, Label: c.Name})
				if gf.MultiEnum() {
					gf.OptionColumns[key] = Column(c)
				}
			}
		}

		out = append(out, gf)
	}
	return out
}

// CollectMulti gathers the selected option keys of a multi-select grouped
// field from its per-option boolean columns, in option order.
func CollectMulti(gf *GroupedField, rec Record) []string {
	selected := []string{}
	for _, opt := range gf.Options {
		col := gf.OptionColumns[opt.Key]
		if on, ok := rec[col].(bool); ok && on {
			selected = append(selected, opt.Key)
		}
	}
	return selected
}

// ExplodeMulti fans a set of selected option keys out to the per-option
// boolean columns of a multi-select grouped field. Every option column gets
// written so a deselected option clears its column.
func ExplodeMulti(gf *GroupedField, selected []string, rec Record) {
	on := make(map[string]bool, len(selected))
	for _, key := range selected {
		on[key] = true
	}
	for _, opt := range gf.Options {
		rec[gf.OptionColumns[opt.Key]] = on[opt.Key]
	}
}

// GetRow pairs every logical field with its current value in the record.
// Multi-select grouped fields yield their collected key set.
func GetRow(gfs []*GroupedField, rec Record) []RowValue {
	out := make([]RowValue, 0, len(gfs))
	for _, gf := range gfs {
		var v any
		if gf.MultiEnum() {
			v = CollectMulti(gf, rec)
		} else {
			v = rec[gf.Column]
		}
		out = append(out, RowValue{Field: gf, Value: v})
	}
	return out
}
