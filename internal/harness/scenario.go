package harness

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/formscript/internal/formxml"
	"github.com/roach88/formscript/internal/manifest"
)

// DefaultEntity is used for scenarios that do not name an entity.
const DefaultEntity = "account"

// Scenario is a sequence of binding edits on one form followed by
// assertions on the result.
type Scenario struct {
	// Name identifies the scenario and its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Entity owns the form. Defaults to DefaultEntity.
	Entity string `yaml:"entity,omitempty"`

	// FormXML is the form before the first step.
	FormXML string `yaml:"form"`

	// IDs are handed out in order for new libraries and handlers.
	IDs []string `yaml:"ids,omitempty"`

	Steps      []Step      `yaml:"steps"`
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one binding edit.
type Step struct {
	Op       string `yaml:"op"`
	Library  string `yaml:"library"`
	Function string `yaml:"function,omitempty"`
	Event    string `yaml:"event,omitempty"`

	// Handler options for upsert_handler. Unset booleans default to true.
	Parameters           string `yaml:"parameters,omitempty"`
	PassExecutionContext *bool  `yaml:"pass_execution_context,omitempty"`
	Enabled              *bool  `yaml:"enabled,omitempty"`

	// ExpectError is the error code the step must fail with.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Assertion checks the final form or the entity's publish history.
type Assertion struct {
	Type     string `yaml:"type"`
	Library  string `yaml:"library,omitempty"`
	Function string `yaml:"function,omitempty"`
	Event    string `yaml:"event,omitempty"`
	ID       string `yaml:"id,omitempty"`
	Count    *int   `yaml:"count,omitempty"`
}

// Step operations.
const (
	OpUpsertLibrary = "upsert_library"
	OpUpsertHandler = "upsert_handler"
	OpDeleteLibrary = "delete_library"
	OpDeleteHandler = "delete_handler"
)

// Assertion types.
const (
	AssertLibraryCount = "library_count"
	AssertHandlerCount = "handler_count"
	AssertLibraryID    = "library_id"
	AssertHandlerID    = "handler_id"
	AssertPublishCount = "publish_count"
)

// Error codes accepted by expect_error.
var expectErrorCodes = map[string]bool{
	"invalid_argument":   true,
	"missing_structure":  true,
	"malformed_document": true,
}

// LoadScenario reads and validates a scenario file. Unknown fields are
// rejected.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}
	s, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}
	if s.Entity == "" {
		s.Entity = DefaultEntity
	}
	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if strings.ContainsAny(s.Name, `/\`) {
		return fmt.Errorf("name %q must not contain path separators", s.Name)
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if strings.TrimSpace(s.FormXML) == "" {
		return fmt.Errorf("form is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, st *Step) error {
	switch st.Op {
	case OpUpsertLibrary, OpDeleteLibrary:
	case OpUpsertHandler:
		if st.ExpectError == "" && st.Function == "" {
			return fmt.Errorf("steps[%d]: function is required for %s", index, st.Op)
		}
		fallthrough
	case OpDeleteHandler:
		if _, err := formxml.ParseEventType(st.Event); err != nil {
			return fmt.Errorf("steps[%d]: %w", index, err)
		}
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, st.Op)
	}
	if st.ExpectError != "" && !expectErrorCodes[st.ExpectError] {
		return fmt.Errorf("steps[%d]: unknown expect_error %q", index, st.ExpectError)
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertLibraryCount, AssertPublishCount:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for %s", index, a.Type)
		}
	case AssertHandlerCount:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for %s", index, a.Type)
		}
		if a.Event != "" {
			if _, err := formxml.ParseEventType(a.Event); err != nil {
				return fmt.Errorf("assertions[%d]: %w", index, err)
			}
		}
	case AssertLibraryID:
		if a.Library == "" || a.ID == "" {
			return fmt.Errorf("assertions[%d]: library and id are required for %s", index, a.Type)
		}
	case AssertHandlerID:
		if a.Library == "" || a.Function == "" || a.ID == "" {
			return fmt.Errorf("assertions[%d]: library, function and id are required for %s", index, a.Type)
		}
		if _, err := formxml.ParseEventType(a.Event); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

// manifest expresses the step as a one-form manifest for forms.Processor.
func (st Step) manifest(entity string) *manifest.Manifest {
	m := &manifest.Manifest{Entity: entity, Forms: []string{"main"}}
	switch st.Op {
	case OpUpsertLibrary:
		m.Libraries = []string{st.Library}
	case OpUpsertHandler:
		m.Handlers = []manifest.Handler{{
			Event:                st.Event,
			Library:              st.Library,
			Function:             st.Function,
			Parameters:           st.Parameters,
			PassExecutionContext: boolOr(st.PassExecutionContext, true),
			Enabled:              boolOr(st.Enabled, true),
		}}
	case OpDeleteLibrary:
		m.Remove = []manifest.Removal{{Library: st.Library}}
	case OpDeleteHandler:
		m.Remove = []manifest.Removal{{Library: st.Library, Event: st.Event, Function: st.Function}}
	}
	return m
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}
