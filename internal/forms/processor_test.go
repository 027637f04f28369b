package forms

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/formscript/internal/formxml"
	"github.com/roach88/formscript/internal/manifest"
	"github.com/roach88/formscript/internal/xmltree"
)

// memRepo is an in-memory Repository that records every call.
type memRepo struct {
	forms     []EntityForm
	updates   []string
	published []string
	failOn    string
}

func (r *memRepo) GetForms(_ context.Context, q Query) ([]EntityForm, error) {
	var out []EntityForm
	for _, f := range r.forms {
		if f.Entity == q.Entity && q.Types.Has(f.Type) {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *memRepo) UpdateFormXML(_ context.Context, id, xml string) error {
	if id == r.failOn {
		return errors.New("boom")
	}
	for i := range r.forms {
		if r.forms[i].ID == id {
			r.forms[i].FormXML = xml
			r.updates = append(r.updates, id)
			return nil
		}
	}
	return ErrFormNotFound
}

func (r *memRepo) Publish(_ context.Context, entity string) error {
	r.published = append(r.published, entity)
	return nil
}

func newMemRepo() *memRepo {
	return &memRepo{forms: []EntityForm{
		{ID: "f-main", Entity: "lead", Name: "Lead", Type: Main, FormXML: `<form />`},
		{ID: "f-quick", Entity: "lead", Name: "Quick Lead", Type: QuickCreate, FormXML: `<form />`},
		{ID: "f-account", Entity: "account", Name: "Account", Type: Main, FormXML: `<form />`},
	}}
}

func TestAddFormScript_UpdatesSelectedFormsAndPublishes(t *testing.T) {
	repo := newMemRepo()
	p := NewProcessor(repo)
	ctx := context.Background()

	res, err := p.AddFormScript(ctx, "lead", Main, "lead.js", "onLoad", formxml.OnLoad)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Forms)
	require.Len(t, res.Changes, 1)
	assert.Equal(t, "f-main", res.Changes[0].FormID)
	assert.True(t, res.Published)
	assert.Equal(t, []string{"f-main"}, repo.updates)
	assert.Equal(t, []string{"lead"}, repo.published)

	b, err := formxml.Inspect(repo.forms[0].FormXML)
	require.NoError(t, err)
	require.Len(t, b.Handlers, 1)
	h := b.Handlers[0]
	assert.Equal(t, "onload", h.EventName)
	assert.True(t, h.Enabled)
	assert.True(t, h.PassExecutionContext)
	assert.Empty(t, h.Parameters)
	assert.Equal(t, `<form />`, repo.forms[1].FormXML, "quick create form untouched")
}

func TestAddFormScript_SecondRunIsNoop(t *testing.T) {
	repo := newMemRepo()
	p := NewProcessor(repo)
	ctx := context.Background()

	_, err := p.AddFormScript(ctx, "lead", AllForms, "lead.js", "onLoad", formxml.OnLoad)
	require.NoError(t, err)
	require.Len(t, repo.updates, 2)

	res, err := p.AddFormScript(ctx, "lead", AllForms, "lead.js", "onLoad", formxml.OnLoad)
	require.NoError(t, err)
	assert.False(t, res.Changed())
	assert.False(t, res.Published)
	assert.Len(t, repo.updates, 2)
	assert.Len(t, repo.published, 1)
}

func TestRemoveLibraryAndScript(t *testing.T) {
	repo := newMemRepo()
	p := NewProcessor(repo)
	ctx := context.Background()

	_, err := p.AddFormScript(ctx, "lead", Main, "lead.js", "onLoad", formxml.OnLoad)
	require.NoError(t, err)
	_, err = p.AddFormScript(ctx, "lead", Main, "lead.js", "onSave", formxml.OnSave)
	require.NoError(t, err)

	res, err := p.RemoveFormScript(ctx, "lead", Main, "lead.js", "onSave", formxml.OnSave)
	require.NoError(t, err)
	assert.True(t, res.Changed())

	b, err := formxml.Inspect(repo.forms[0].FormXML)
	require.NoError(t, err)
	assert.Len(t, b.Handlers, 1)

	res, err = p.RemoveLibrary(ctx, "lead", Main, "lead.js")
	require.NoError(t, err)
	assert.True(t, res.Changed())

	b, err = formxml.Inspect(repo.forms[0].FormXML)
	require.NoError(t, err)
	assert.Empty(t, b.Handlers)
	assert.Empty(t, b.Libraries)
}

func TestProcessor_DryRun(t *testing.T) {
	repo := newMemRepo()
	p := NewProcessor(repo, WithDryRun(true))

	res, err := p.AddFormScript(context.Background(), "lead", AllForms, "lead.js", "onLoad", formxml.OnLoad)
	require.NoError(t, err)
	assert.True(t, res.DryRun)
	assert.Len(t, res.Changes, 2)
	assert.Equal(t, `<form />`, res.Changes[0].Before)
	assert.Contains(t, res.Changes[0].After, `functionName="onLoad"`)
	assert.Empty(t, repo.updates)
	assert.Empty(t, repo.published)
	assert.False(t, res.Published)
}

func TestProcessor_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := NewProcessor(newMemRepo()).AddFormScript(ctx, "lead", Main, "", "fn", formxml.OnLoad)
	assert.True(t, xmltree.IsInvalidArgument(err))

	_, err = NewProcessor(newMemRepo()).AddFormScript(ctx, "", Main, "lib.js", "fn", formxml.OnLoad)
	assert.ErrorIs(t, err, ErrInvalidQuery)

	repo := newMemRepo()
	repo.failOn = "f-main"
	_, err = NewProcessor(repo).AddFormScript(ctx, "lead", Main, "lib.js", "fn", formxml.OnLoad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "update form Lead (f-main)")
	assert.Empty(t, repo.published, "nothing is published after a failed store")

	repo = newMemRepo()
	repo.forms[0].FormXML = `<entity />`
	_, err = NewProcessor(repo).AddFormScript(ctx, "lead", Main, "lib.js", "fn", formxml.OnLoad)
	assert.True(t, xmltree.IsMissingStructure(err))
}

// versionedRepo is a memRepo that tracks versions and rejects stale writes.
type versionedRepo struct {
	*memRepo
	unversioned int
}

func (r *versionedRepo) UpdateFormXML(ctx context.Context, id, xml string) error {
	r.unversioned++
	return r.memRepo.UpdateFormXML(ctx, id, xml)
}

func (r *versionedRepo) UpdateFormXMLIfVersion(ctx context.Context, id, xml string, version int64) error {
	for i := range r.forms {
		if r.forms[i].ID != id {
			continue
		}
		if r.forms[i].Version != version {
			return fmt.Errorf("%w: have version %d, form is at %d", ErrVersionConflict, version, r.forms[i].Version)
		}
		r.forms[i].Version++
		return r.memRepo.UpdateFormXML(ctx, id, xml)
	}
	return ErrFormNotFound
}

func newVersionedRepo() *versionedRepo {
	repo := &versionedRepo{memRepo: newMemRepo()}
	for i := range repo.forms {
		repo.forms[i].Version = 1
	}
	return repo
}

func TestProcessor_WritesAreVersionGuarded(t *testing.T) {
	repo := newVersionedRepo()

	res, err := NewProcessor(repo).AddFormScript(context.Background(), "lead", AllForms, "lib.js", "fn", formxml.OnLoad)
	require.NoError(t, err)
	assert.Len(t, res.Changes, 2)
	assert.Zero(t, repo.unversioned)
	assert.Equal(t, int64(2), repo.forms[0].Version)
	assert.Equal(t, int64(2), repo.forms[1].Version)
}

// staleRepo hands out forms whose version is already behind.
type staleRepo struct {
	*versionedRepo
}

func (r *staleRepo) GetForms(ctx context.Context, q Query) ([]EntityForm, error) {
	out, err := r.versionedRepo.GetForms(ctx, q)
	for i := range r.forms {
		r.forms[i].Version++
	}
	return out, err
}

func TestProcessor_StaleFormIsNotOverwritten(t *testing.T) {
	repo := &staleRepo{versionedRepo: newVersionedRepo()}

	_, err := NewProcessor(repo).AddFormScript(context.Background(), "lead", Main, "lib.js", "fn", formxml.OnLoad)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrVersionConflict)
	assert.Equal(t, `<form />`, repo.forms[0].FormXML)
	assert.Empty(t, repo.updates)
	assert.Empty(t, repo.published)
}

// boundForm registers lib.js and its onload handler in a layout the XML
// writer would not reproduce.
const boundForm = `<form><tabs></tabs><formLibraries><Library name='lib.js' libraryUniqueId='{L}'/></formLibraries>` +
	`<events><event name='onload' application='false' active='false'><Handlers>` +
	`<Handler functionName='fn' libraryName='lib.js' handlerUniqueId='{H}' enabled='true' parameters='' passExecutionContext='true'/>` +
	`</Handlers></event></events></form>`

func TestAddFormScript_AlreadyBoundFormIsNotRewritten(t *testing.T) {
	repo := newMemRepo()
	repo.forms[0].FormXML = boundForm
	p := NewProcessor(repo, WithEditor(formxml.NewEditor(formxml.WithIDGenerator(formxml.NewFixedGenerator()))))

	res, err := p.AddFormScript(context.Background(), "lead", Main, "lib.js", "fn", formxml.OnLoad)
	require.NoError(t, err)
	assert.False(t, res.Changed())
	assert.False(t, res.Published)
	assert.Empty(t, repo.updates)
	assert.Empty(t, repo.published)
	assert.Equal(t, boundForm, repo.forms[0].FormXML)
}

func TestApply(t *testing.T) {
	repo := newMemRepo()
	p := NewProcessor(repo, WithEditor(formxml.NewEditor(formxml.WithIDGenerator(
		formxml.NewFixedGenerator("{1}", "{2}", "{3}", "{4}", "{5}")))))
	ctx := context.Background()

	_, err := p.AddFormScript(ctx, "lead", Main, "legacy.js", "old", formxml.OnLoad)
	require.NoError(t, err)

	m := &manifest.Manifest{
		Entity:    "lead",
		Forms:     []string{"main"},
		Libraries: []string{"common.js"},
		Handlers: []manifest.Handler{
			{Event: "onload", Library: "lead.js", Function: "Lead.onLoad", PassExecutionContext: true, Enabled: true},
		},
		Remove: []manifest.Removal{{Library: "legacy.js"}},
	}
	res, err := p.Apply(ctx, m)
	require.NoError(t, err)
	assert.True(t, res.Published)

	b, err := formxml.Inspect(repo.forms[0].FormXML)
	require.NoError(t, err)
	assert.True(t, b.HasLibrary("common.js"))
	assert.True(t, b.HasLibrary("lead.js"))
	assert.False(t, b.HasLibrary("legacy.js"))
	require.Len(t, b.Handlers, 1)
	assert.Equal(t, "Lead.onLoad", b.Handlers[0].Function)
}

func TestParseFormTypes(t *testing.T) {
	tests := []struct {
		in   string
		want FormType
	}{
		{"main", Main},
		{"QuickCreate", QuickCreate},
		{"main, quickcreate", AllForms},
		{"all", AllForms},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormTypes(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseFormTypes("card")
	assert.Error(t, err)
	_, err = ParseFormTypes("")
	assert.Error(t, err)
}

func TestFormTypeCodes(t *testing.T) {
	assert.Equal(t, []int{CodeMain}, Main.Codes())
	assert.Equal(t, []int{CodeMain, CodeQuickCreate}, AllForms.Codes())
	assert.Empty(t, FormType(0).Codes())
	assert.Equal(t, "main,quickcreate", AllForms.String())

	ft, ok := FormTypeFromCode(7)
	assert.True(t, ok)
	assert.Equal(t, QuickCreate, ft)
	_, ok = FormTypeFromCode(6)
	assert.False(t, ok)
}
