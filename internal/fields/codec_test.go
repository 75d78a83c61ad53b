package fields

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codecDefs() []*FieldDefinition {
	return []*FieldDefinition{
		{ID: 1, Name: "Nickname", Key: "NICK", Kind: KindText},
		{ID: 2, Name: "Age", Key: "AGE", Kind: KindNumber},
		{ID: 3, Name: "Joined", Key: "JOINED", Kind: KindDate, Settings: Settings{DateFormat: DateFormatEUR}},
		{ID: 4, Name: "Interests", Key: "INTERESTS", Kind: KindCheckboxGrouped},
		{ID: 5, Name: "Music", Key: "INT_MUSIC", Kind: KindOption, Settings: Settings{Group: 4}, OrderList: intptr(1)},
		{ID: 6, Name: "Sports", Key: "INT_SPORTS", Kind: KindOption, Settings: Settings{Group: 4}, OrderList: intptr(2)},
	}
}

func TestToFormValuesNilRecordInitializes(t *testing.T) {
	codec := NewCodec(NewRegistry())
	gfs := BuildGroupedViews(codecDefs())

	form := codec.ToFormValues(gfs, nil)
	require.Len(t, form, 4)
	assert.Equal(t, "", form[gfs[0].Column])
	assert.Equal(t, "", form[gfs[1].Column])
	assert.Equal(t, "", form[gfs[2].Column])
	assert.Equal(t, []string{}, form[gfs[3].Column])
}

func TestCodecRoundTrip(t *testing.T) {
	codec := NewCodec(NewRegistry())
	gfs := BuildGroupedViews(codecDefs())
	multi := gfs[3]

	form := FormValues{
		gfs[0].Column: "sam",
		gfs[1].Column: "34",
		gfs[2].Column: "03/04/2024",
		multi.Column:  []string{"5"},
	}

	rec := codec.ToEntityValues(gfs, form)
	assert.Equal(t, "sam", rec[gfs[0].Column])
	assert.Equal(t, int64(34), rec[gfs[1].Column])
	assert.Equal(t, time.Date(2024, time.April, 3, 0, 0, 0, 0, time.UTC), rec[gfs[2].Column])
	assert.Equal(t, true, rec[multi.OptionColumns["5"]])
	assert.Equal(t, false, rec[multi.OptionColumns["6"]])

	back := codec.ToFormValues(gfs, rec)
	assert.Equal(t, form, back)
}

func TestToEntityValuesEmptyTextClearsColumn(t *testing.T) {
	codec := NewCodec(NewRegistry())
	gfs := BuildGroupedViews([]*FieldDefinition{
		{ID: 1, Name: "Nickname", Key: "NICK", Kind: KindText},
	})

	rec := codec.ToEntityValues(gfs, FormValues{gfs[0].Column: ""})
	require.Contains(t, rec, gfs[0].Column, "the column must be written so the old value clears")
	assert.Nil(t, rec[gfs[0].Column])
}

func TestMergeTagValid(t *testing.T) {
	tests := []struct {
		key   string
		valid bool
	}{
		{"FIRST_NAME", true},
		{"A", true},
		{"A1", true},
		{"X_2_Y", true},
		{"", false},
		{"first_name", false},
		{"1NAME", false},
		{"_NAME", false},
		{"NA ME", false},
		{"NAME-TAG", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.valid, MergeTagValid(tt.key), "key %q", tt.key)
	}
}

func TestValidateAll(t *testing.T) {
	codec := NewCodec(NewRegistry())

	defs := []*FieldDefinition{
		{ID: 1, Name: "Age", Key: "AGE", Kind: KindNumber},
		{ID: 2, Name: "Bad tag", Key: "bad tag", Kind: KindText},
		{ID: 3, Name: "Dup A", Key: "DUP", Kind: KindText},
		{ID: 4, Name: "Dup B", Key: "DUP", Kind: KindText},
		{ID: 5, Name: "Joined", Key: "JOINED", Kind: KindDate},
	}
	gfs := BuildGroupedViews(defs)

	form := FormValues{
		gfs[0].Column: "not a number",
		gfs[4].Column: "02/30/2024",
	}

	errs := codec.ValidateAll(gfs, form)
	assert.Equal(t, map[string]string{
		"AGE":     "Value must be a number",
		"bad tag": "Merge tag is invalid",
		"DUP":     "Another field with the same merge tag exists",
		"JOINED":  "Date is invalid",
	}, errs)
}

func TestValidateAllCleanSubmission(t *testing.T) {
	codec := NewCodec(NewRegistry())
	gfs := BuildGroupedViews(codecDefs())

	form := FormValues{
		gfs[0].Column: "sam",
		gfs[1].Column: "34",
		gfs[2].Column: "03/04/2024",
		gfs[3].Column: []string{"5", "6"},
	}
	assert.Empty(t, codec.ValidateAll(gfs, form))
}
