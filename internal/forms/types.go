package forms

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// FormType selects kinds of entity forms. Values combine as bit flags.
type FormType int

const (
	Main FormType = 1 << iota
	QuickCreate

	AllForms = Main | QuickCreate
)

// Form type codes as stored by the form repository.
const (
	CodeMain        = 2
	CodeQuickCreate = 7
)

// Has reports whether t includes every flag of o.
func (t FormType) Has(o FormType) bool {
	return o != 0 && t&o == o
}

// Codes returns the repository type codes selected by t, in ascending order.
func (t FormType) Codes() []int {
	var codes []int
	if t.Has(Main) {
		codes = append(codes, CodeMain)
	}
	if t.Has(QuickCreate) {
		codes = append(codes, CodeQuickCreate)
	}
	return codes
}

// String renders t as a comma-separated list, e.g. "main,quickcreate".
func (t FormType) String() string {
	var parts []string
	if t.Has(Main) {
		parts = append(parts, "main")
	}
	if t.Has(QuickCreate) {
		parts = append(parts, "quickcreate")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ",")
}

// FormTypeFromCode maps a repository type code to its flag.
func FormTypeFromCode(code int) (FormType, bool) {
	switch code {
	case CodeMain:
		return Main, true
	case CodeQuickCreate:
		return QuickCreate, true
	default:
		return 0, false
	}
}

// ParseFormTypes parses a comma-separated list of "main", "quickcreate" or
// "all".
func ParseFormTypes(s string) (FormType, error) {
	var t FormType
	for _, part := range strings.Split(s, ",") {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "main":
			t |= Main
		case "quickcreate", "quick-create", "quick_create":
			t |= QuickCreate
		case "all":
			t |= AllForms
		case "":
		default:
			return 0, fmt.Errorf("unknown form type %q: must be main, quickcreate or all", part)
		}
	}
	if t == 0 {
		return 0, fmt.Errorf("no form type given")
	}
	return t, nil
}

// EntityForm is one form of an entity together with its XML.
type EntityForm struct {
	ID      string   `json:"id"`
	Entity  string   `json:"entity"`
	Name    string   `json:"name"`
	Type    FormType `json:"type"`
	FormXML string   `json:"form_xml,omitempty"`
	Version int64    `json:"version"`
}

// Query selects active, customizable forms of an entity. Name and FormID
// narrow the result further when set.
type Query struct {
	Entity string
	Types  FormType
	Name   string
	FormID string
}

// Validate checks that the query can be executed.
func (q Query) Validate() error {
	if strings.TrimSpace(q.Entity) == "" {
		return fmt.Errorf("%w: entity is required", ErrInvalidQuery)
	}
	if len(q.Types.Codes()) == 0 {
		return fmt.Errorf("%w: at least one form type is required", ErrInvalidQuery)
	}
	return nil
}

// Sentinel errors shared by repository implementations.
var (
	// ErrInvalidQuery is returned for queries without an entity or form type.
	ErrInvalidQuery = errors.New("invalid form query")

	// ErrFormNotFound is returned when updating a form id that does not exist.
	ErrFormNotFound = errors.New("form not found")

	// ErrVersionConflict is returned when a form changed since it was read.
	ErrVersionConflict = errors.New("form version conflict")
)

// Repository fetches, stores and publishes form XML.
type Repository interface {
	// GetForms returns the forms selected by q. No match is an empty slice.
	GetForms(ctx context.Context, q Query) ([]EntityForm, error)

	// UpdateFormXML replaces the XML of the form with the given id.
	UpdateFormXML(ctx context.Context, formID, formXML string) error

	// Publish makes stored changes of the entity's forms take effect.
	Publish(ctx context.Context, entity string) error
}

// VersionedRepository is a Repository that can refuse a write when the form
// changed after it was read. The Processor uses it when available.
type VersionedRepository interface {
	Repository

	// UpdateFormXMLIfVersion is UpdateFormXML that fails with
	// ErrVersionConflict unless the form is still at version.
	UpdateFormXMLIfVersion(ctx context.Context, formID, formXML string, version int64) error
}
