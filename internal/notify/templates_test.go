package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/list-engine/internal/lists"
)

type fakeOverrides struct {
	docs map[Kind]string
	err  error
}

func (f *fakeOverrides) GetOverride(_ context.Context, _ int64, kind Kind) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	doc, ok := f.docs[kind]
	if !ok {
		return "", ErrNoOverride
	}
	return doc, nil
}

func formList(formID int64) *lists.List {
	return &lists.List{ID: 1, CID: "abc", Name: "Weekly Digest", DefaultForm: &formID}
}

func TestNewResolverLoadsAllDefaults(t *testing.T) {
	r, err := NewResolver(nil)
	require.NoError(t, err)

	for _, kind := range Kinds() {
		tpl := r.Default(kind)
		assert.NotEmpty(t, tpl.Text, "kind %s missing text default", kind)
		assert.NotEmpty(t, tpl.HTML, "kind %s missing html default", kind)
		assert.NotEmpty(t, tpl.Layout)
		assert.False(t, tpl.Override)
	}
}

func TestResolvePrefersOverride(t *testing.T) {
	r, err := NewResolver(&fakeOverrides{docs: map[Kind]string{
		KindConfirmSubscription: "custom {{ confirmUrl }}",
	}})
	require.NoError(t, err)

	tpl := r.Resolve(context.Background(), formList(12), KindConfirmSubscription)
	assert.True(t, tpl.Override)
	assert.Equal(t, "custom {{ confirmUrl }}", tpl.Text)
	assert.Equal(t, "custom {{ confirmUrl }}", tpl.HTML)
	assert.Equal(t, ContentTypeMJML, tpl.ContentType)
}

func TestResolveFallsBackWithoutOverride(t *testing.T) {
	r, err := NewResolver(&fakeOverrides{})
	require.NoError(t, err)

	tpl := r.Resolve(context.Background(), formList(12), KindConfirmSubscription)
	assert.False(t, tpl.Override)
	assert.Equal(t, r.Default(KindConfirmSubscription).Text, tpl.Text)
}

func TestResolveSwallowsBrokenOverrideStore(t *testing.T) {
	r, err := NewResolver(&fakeOverrides{err: errors.New("connection refused")})
	require.NoError(t, err)

	tpl := r.Resolve(context.Background(), formList(12), KindConfirmSubscription)
	assert.False(t, tpl.Override)
	assert.NotEmpty(t, tpl.Text)
}

func TestResolveSkipsOverridesWithoutForm(t *testing.T) {
	r, err := NewResolver(&fakeOverrides{docs: map[Kind]string{
		KindConfirmSubscription: "custom",
	}})
	require.NoError(t, err)

	list := &lists.List{ID: 1, CID: "abc", Name: "Weekly Digest"}
	tpl := r.Resolve(context.Background(), list, KindConfirmSubscription)
	assert.False(t, tpl.Override)
}

func TestFormTemplateStore(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT template FROM custom_form_templates`).
		WithArgs(int64(12), string(KindConfirmSubscription)).
		WillReturnRows(sqlmock.NewRows([]string{"template"}).AddRow("custom doc"))

	doc, err := NewFormTemplateStore(db).GetOverride(context.Background(), 12, KindConfirmSubscription)
	require.NoError(t, err)
	assert.Equal(t, "custom doc", doc)
}

func TestFormTemplateStoreNoRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT template FROM custom_form_templates`).
		WithArgs(int64(12), string(KindConfirmSubscription)).
		WillReturnRows(sqlmock.NewRows([]string{"template"}))

	_, err = NewFormTemplateStore(db).GetOverride(context.Background(), 12, KindConfirmSubscription)
	assert.ErrorIs(t, err, ErrNoOverride)
}
