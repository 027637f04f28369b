package manifest

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"

	"github.com/roach88/formscript/internal/formxml"
)

//go:embed schema.cue
var schemaSrc string

// Manifest is the desired binding state for the forms of one entity.
type Manifest struct {
	Entity    string    `json:"entity"`
	Forms     []string  `json:"forms"`
	Libraries []string  `json:"libraries"`
	Handlers  []Handler `json:"handlers"`
	Remove    []Removal `json:"remove"`

	// Source is the file the manifest was loaded from.
	Source string `json:"-"`
}

// Handler is an event handler that should be registered.
type Handler struct {
	Event                string `json:"event"`
	Library              string `json:"library"`
	Function             string `json:"function"`
	Parameters           string `json:"parameters"`
	PassExecutionContext bool   `json:"passExecutionContext"`
	Enabled              bool   `json:"enabled"`
}

// Removal removes handlers, or a library with all its handlers.
//
// With only Library set, the library and every handler bound to it are
// removed. With Event set, only handlers on that event are removed, and
// Function narrows it to a single handler.
type Removal struct {
	Library  string `json:"library"`
	Function string `json:"function,omitempty"`
	Event    string `json:"event,omitempty"`
}

// FormHandler converts h into an editor handler.
func (h Handler) FormHandler() (formxml.Handler, error) {
	ev, err := formxml.ParseEventType(h.Event)
	if err != nil {
		return formxml.Handler{}, err
	}
	return formxml.Handler{
		Event:                ev,
		Library:              h.Library,
		Function:             h.Function,
		Parameters:           h.Parameters,
		PassExecutionContext: h.PassExecutionContext,
		Enabled:              h.Enabled,
	}, nil
}

// LoadError describes a manifest that failed to load or validate.
type LoadError struct {
	Path    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// LoadFile reads and validates a manifest file.
func LoadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Message: fmt.Sprintf("read manifest: %v", err), Err: err}
	}
	m, err := Parse(path, data)
	if err != nil {
		return nil, err
	}
	m.Source = path
	return m, nil
}

// Parse validates CUE source against the manifest schema and decodes it.
// filename is used in error positions only.
func Parse(filename string, src []byte) (*Manifest, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSrc, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, &LoadError{Message: "compile schema: " + formatCUEError(err), Err: err}
	}

	value := ctx.CompileBytes(src, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, &LoadError{Path: filename, Message: formatCUEError(err), Err: err}
	}

	unified := schema.LookupPath(cue.ParsePath("#Manifest")).Unify(value)
	if err := unified.Validate(); err != nil {
		return nil, &LoadError{Path: filename, Message: formatCUEError(err), Err: err}
	}

	var m Manifest
	if err := unified.Decode(&m); err != nil {
		return nil, &LoadError{Path: filename, Message: formatCUEError(err), Err: err}
	}
	if strings.TrimSpace(m.Entity) == "" {
		return nil, &LoadError{Path: filename, Message: "entity is required"}
	}
	if len(m.Libraries) == 0 && len(m.Handlers) == 0 && len(m.Remove) == 0 {
		return nil, &LoadError{Path: filename, Message: "manifest declares no libraries, handlers or removals"}
	}
	return &m, nil
}

// FormKinds joins the form kinds for forms.ParseFormTypes.
func (m *Manifest) FormKinds() string {
	return strings.Join(m.Forms, ",")
}

// formatCUEError flattens CUE errors into one line per error with positions.
func formatCUEError(err error) string {
	var lines []string
	for _, e := range errors.Errors(err) {
		msg := e.Error()
		if pos := e.Position(); pos.IsValid() {
			msg = fmt.Sprintf("%s:%d:%d: %s", pos.Filename(), pos.Line(), pos.Column(), msg)
		}
		lines = append(lines, msg)
	}
	if len(lines) == 0 {
		return err.Error()
	}
	return strings.Join(lines, "\n")
}
