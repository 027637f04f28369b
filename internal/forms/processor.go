package forms

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/formscript/internal/formxml"
	"github.com/roach88/formscript/internal/manifest"
	"github.com/roach88/formscript/internal/xmltree"
)

// Change records the XML of one form before and after an edit.
type Change struct {
	FormID   string `json:"form_id"`
	FormName string `json:"form_name"`
	Before   string `json:"-"`
	After    string `json:"-"`
}

// Result summarizes a Processor run over the forms of one entity.
type Result struct {
	Entity    string   `json:"entity"`
	Forms     int      `json:"forms"`
	Changes   []Change `json:"changes"`
	Published bool     `json:"published"`
	DryRun    bool     `json:"dry_run,omitempty"`
}

// Changed reports whether any form was modified.
func (r *Result) Changed() bool {
	return len(r.Changes) > 0
}

// Processor applies binding edits to every matching form of an entity.
type Processor struct {
	repo   Repository
	editor *formxml.Editor
	logger *slog.Logger
	dryRun bool
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithEditor sets the editor used for form XML changes.
func WithEditor(e *formxml.Editor) ProcessorOption {
	return func(p *Processor) { p.editor = e }
}

// WithProcessorLogger sets the logger.
func WithProcessorLogger(l *slog.Logger) ProcessorOption {
	return func(p *Processor) { p.logger = l }
}

// WithDryRun computes changes without storing or publishing them.
func WithDryRun(dryRun bool) ProcessorOption {
	return func(p *Processor) { p.dryRun = dryRun }
}

// NewProcessor creates a Processor over repo.
func NewProcessor(repo Repository, opts ...ProcessorOption) *Processor {
	p := &Processor{
		repo:   repo,
		editor: formxml.NewEditor(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AddFormScript registers function from library on event for every form of
// entity selected by types. Handlers are enabled, take no parameters and
// receive the execution context. Running it again changes nothing.
func (p *Processor) AddFormScript(ctx context.Context, entity string, types FormType, library, function string, event formxml.EventType) (*Result, error) {
	if err := requireArgs("library", library, "function", function); err != nil {
		return nil, err
	}
	h := formxml.Handler{
		Event:                event,
		Library:              library,
		Function:             function,
		Parameters:           "",
		PassExecutionContext: true,
		Enabled:              true,
	}
	return p.run(ctx, entity, types, func(xml string) (string, error) {
		return p.editor.UpsertEventHandler(xml, h)
	})
}

// RemoveFormScript removes the handler calling function from library on
// event. An empty function removes every handler of the library on event.
func (p *Processor) RemoveFormScript(ctx context.Context, entity string, types FormType, library, function string, event formxml.EventType) (*Result, error) {
	if err := requireArgs("library", library); err != nil {
		return nil, err
	}
	return p.run(ctx, entity, types, func(xml string) (string, error) {
		return p.editor.DeleteEventHandler(xml, event, library, function)
	})
}

// RemoveLibrary removes library and every handler bound to it.
func (p *Processor) RemoveLibrary(ctx context.Context, entity string, types FormType, library string) (*Result, error) {
	if err := requireArgs("library", library); err != nil {
		return nil, err
	}
	return p.run(ctx, entity, types, func(xml string) (string, error) {
		return p.editor.DeleteLibrary(xml, library)
	})
}

// Apply brings the entity's forms in line with m: libraries and handlers are
// upserted first, then removals run in the order given.
func (p *Processor) Apply(ctx context.Context, m *manifest.Manifest) (*Result, error) {
	types, err := ParseFormTypes(m.FormKinds())
	if err != nil {
		return nil, err
	}
	handlers := make([]formxml.Handler, 0, len(m.Handlers))
	for _, mh := range m.Handlers {
		h, err := mh.FormHandler()
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, h)
	}

	return p.run(ctx, m.Entity, types, func(xml string) (string, error) {
		var err error
		for _, lib := range m.Libraries {
			if xml, err = p.editor.UpsertLibrary(xml, lib); err != nil {
				return "", err
			}
		}
		for _, h := range handlers {
			if xml, err = p.editor.UpsertEventHandler(xml, h); err != nil {
				return "", err
			}
		}
		for _, r := range m.Remove {
			if xml, err = p.applyRemoval(xml, r); err != nil {
				return "", err
			}
		}
		return xml, nil
	})
}

func (p *Processor) applyRemoval(xml string, r manifest.Removal) (string, error) {
	if r.Event == "" {
		if r.Function != "" {
			var err error
			for _, ev := range formxml.AllEvents {
				if xml, err = p.editor.DeleteEventHandler(xml, ev, r.Library, r.Function); err != nil {
					return "", err
				}
			}
			return xml, nil
		}
		return p.editor.DeleteLibrary(xml, r.Library)
	}
	ev, err := formxml.ParseEventType(r.Event)
	if err != nil {
		return "", err
	}
	return p.editor.DeleteEventHandler(xml, ev, r.Library, r.Function)
}

// run fetches the forms, applies edit to each, stores the changed ones and
// publishes the entity when anything changed.
func (p *Processor) run(ctx context.Context, entity string, types FormType, edit func(string) (string, error)) (*Result, error) {
	if p.repo == nil {
		return nil, fmt.Errorf("forms: processor has no repository")
	}
	q := Query{Entity: entity, Types: types}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	forms, err := p.repo.GetForms(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("get forms for %s: %w", entity, err)
	}

	result := &Result{Entity: entity, Forms: len(forms), DryRun: p.dryRun}
	for _, f := range forms {
		updated, err := edit(f.FormXML)
		if err != nil {
			return result, fmt.Errorf("edit form %s (%s): %w", f.Name, f.ID, err)
		}
		if updated == f.FormXML {
			p.logger.Debug("form unchanged", "entity", entity, "form", f.Name, "id", f.ID)
			continue
		}

		result.Changes = append(result.Changes, Change{FormID: f.ID, FormName: f.Name, Before: f.FormXML, After: updated})
		if p.dryRun {
			continue
		}
		if err := p.store(ctx, f, updated); err != nil {
			return result, fmt.Errorf("update form %s (%s): %w", f.Name, f.ID, err)
		}
		p.logger.Info("form updated", "entity", entity, "form", f.Name, "id", f.ID)
	}

	if !result.Changed() || p.dryRun {
		return result, nil
	}
	if err := p.repo.Publish(ctx, entity); err != nil {
		return result, fmt.Errorf("publish %s: %w", entity, err)
	}
	result.Published = true
	p.logger.Info("entity published", "entity", entity, "forms", len(result.Changes))
	return result, nil
}

// store writes xml for f. A form read with a version is written only if it
// is still at that version.
func (p *Processor) store(ctx context.Context, f EntityForm, xml string) error {
	if vr, ok := p.repo.(VersionedRepository); ok && f.Version > 0 {
		return vr.UpdateFormXMLIfVersion(ctx, f.ID, xml, f.Version)
	}
	return p.repo.UpdateFormXML(ctx, f.ID, xml)
}

// requireArgs checks alternating name/value pairs for blank values.
func requireArgs(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			return xmltree.InvalidArgument(pairs[i], pairs[i]+" needs to have a non-empty value")
		}
	}
	return nil
}
