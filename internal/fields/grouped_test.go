package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intptr(n int) *int { return &n }

func testDefs() []*FieldDefinition {
	return []*FieldDefinition{
		{ID: 1, Name: "First custom", Key: "CUSTOM_A", Kind: Kind("text")},
		{ID: 2, Name: "Interests", Key: "INTERESTS", Kind: KindCheckboxGrouped},
		{ID: 3, Name: "Music", Key: "INT_MUSIC", Kind: KindOption, Settings: Settings{Group: 2}, OrderList: intptr(2)},
		{ID: 4, Name: "Sports", Key: "INT_SPORTS", Kind: KindOption, Settings: Settings{Group: 2}, OrderList: intptr(1)},
		{ID: 5, Name: "Books", Key: "INT_BOOKS", Kind: KindOption, Settings: Settings{Group: 2}},
		{ID: 6, Name: "Plan", Key: "PLAN", Kind: KindRadioGrouped},
		{ID: 7, Name: "Free", Key: "PLAN_FREE", Kind: KindOption, Settings: Settings{Group: 6}, OrderList: intptr(1)},
	}
}

func TestBuildGroupedViews(t *testing.T) {
	gfs := BuildGroupedViews(testDefs())
	require.Len(t, gfs, 3, "option children must fold into their composites")

	text := gfs[0]
	assert.Equal(t, Kind("text"), text.Kind)
	assert.Empty(t, text.Options)
	assert.Nil(t, text.OptionColumns)

	multi := gfs[1]
	assert.Equal(t, KindCheckboxGrouped, multi.Kind)
	assert.True(t, multi.MultiEnum())
	// Ordered children first (by order_list), hidden child last.
	require.Len(t, multi.Options, 3)
	assert.Equal(t, Option{Key: "4", Label: "Sports"}, multi.Options[0])
	assert.Equal(t, Option{Key: "3", Label: "Music"}, multi.Options[1])
	assert.Equal(t, Option{Key: "5", Label: "Books"}, multi.Options[2])
	require.Len(t, multi.OptionColumns, 3)

	single := gfs[2]
	assert.Equal(t, KindRadioGrouped, single.Kind)
	assert.False(t, single.MultiEnum())
	require.Len(t, single.Options, 1)
	assert.Equal(t, Option{Key: "7", Label: "Free"}, single.Options[0])
	assert.Nil(t, single.OptionColumns, "single-select grouped fields store in their own column")
}

func TestBuildGroupedViewsHiddenTieBreaksByID(t *testing.T) {
	defs := []*FieldDefinition{
		{ID: 1, Name: "Group", Key: "G", Kind: KindCheckboxGrouped},
		{ID: 9, Name: "Later", Key: "G_B", Kind: KindOption, Settings: Settings{Group: 1}},
		{ID: 3, Name: "Earlier", Key: "G_A", Kind: KindOption, Settings: Settings{Group: 1}},
	}
	gfs := BuildGroupedViews(defs)
	require.Len(t, gfs, 1)
	require.Len(t, gfs[0].Options, 2)
	assert.Equal(t, "3", gfs[0].Options[0].Key)
	assert.Equal(t, "9", gfs[0].Options[1].Key)
}

func TestMultiRoundTrip(t *testing.T) {
	gfs := BuildGroupedViews(testDefs())
	multi := gfs[1]

	rec := make(Record)
	ExplodeMulti(multi, []string{"4", "5"}, rec)

	// Every option column written, deselected one false.
	require.Len(t, rec, 3)
	assert.Equal(t, true, rec[multi.OptionColumns["4"]])
	assert.Equal(t, false, rec[multi.OptionColumns["3"]])
	assert.Equal(t, true, rec[multi.OptionColumns["5"]])

	assert.Equal(t, []string{"4", "5"}, CollectMulti(multi, rec))
}

func TestMultiRoundTripEmptySet(t *testing.T) {
	gfs := BuildGroupedViews(testDefs())
	multi := gfs[1]

	rec := make(Record)
	ExplodeMulti(multi, nil, rec)
	require.Len(t, rec, 3)
	assert.Equal(t, []string{}, CollectMulti(multi, rec))
}

func TestGetRow(t *testing.T) {
	gfs := BuildGroupedViews(testDefs())
	rec := Record{
		gfs[0].Column:             "hello",
		gfs[1].OptionColumns["4"]: true,
		gfs[2].Column:             "7",
	}

	row := GetRow(gfs, rec)
	require.Len(t, row, 3)
	assert.Equal(t, "hello", row[0].Value)
	assert.Equal(t, []string{"4"}, row[1].Value)
	assert.Equal(t, "7", row[2].Value)
}
