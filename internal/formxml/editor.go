package formxml

import (
	"io"
	"log/slog"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/formscript/internal/xmltree"
)

// Element and attribute names of the form XML binding sections.
const (
	elemForm          = "form"
	elemFormLibraries = "formLibraries"
	elemLibrary       = "Library"
	elemEvents        = "events"
	elemEvent         = "event"
	elemHandlers      = "Handlers"
	elemHandler       = "Handler"

	attrName                 = "name"
	attrLibraryUniqueID      = "libraryUniqueId"
	attrFunctionName         = "functionName"
	attrLibraryName          = "libraryName"
	attrHandlerUniqueID      = "handlerUniqueId"
	attrEnabled              = "enabled"
	attrParameters           = "parameters"
	attrPassExecutionContext = "passExecutionContext"
	attrApplication          = "application"
	attrActive               = "active"
)

// Handler describes an event handler binding.
type Handler struct {
	Event                EventType
	Library              string
	Function             string
	Parameters           string
	PassExecutionContext bool
	Enabled              bool
}

// Editor applies binding changes to form XML.
//
// An Editor holds no document state; it is safe for concurrent use as long
// as its IDGenerator is.
type Editor struct {
	ids    IDGenerator
	logger *slog.Logger
}

// Option configures an Editor.
type Option func(*Editor)

// WithIDGenerator sets the generator for new unique ids.
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Editor) { e.ids = g }
}

// WithLogger sets the logger for reconcile decisions.
func WithLogger(l *slog.Logger) Option {
	return func(e *Editor) { e.logger = l }
}

// NewEditor creates an Editor that generates random GUIDs and discards logs
// unless configured otherwise.
func NewEditor(opts ...Option) *Editor {
	e := &Editor{
		ids:    GUIDGenerator{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// UpsertLibrary adds libraryName to the form libraries if it is not already
// registered. An existing registration keeps its libraryUniqueId. When the
// library is already registered formXML is returned unchanged.
func (e *Editor) UpsertLibrary(formXML, libraryName string) (string, error) {
	if err := requireValue("formXml", formXML); err != nil {
		return "", err
	}
	if err := requireValue("libraryName", libraryName); err != nil {
		return "", err
	}

	doc, form, err := load(formXML)
	if err != nil {
		return "", err
	}
	changed, err := e.upsertLibrary(form, normalize(libraryName))
	if err != nil {
		return "", err
	}
	if !changed {
		return formXML, nil
	}
	return doc.String(), nil
}

// UpsertEventHandler registers h.Library (as UpsertLibrary does) and then
// adds or updates the handler calling h.Function from h.Library on h.Event.
// The event bucket is created with application="false" active="false" when
// missing; an existing bucket keeps its attributes. An existing handler
// keeps its handlerUniqueId and takes every other attribute from h. When the
// handler is already bound exactly as h describes, formXML is returned
// unchanged.
func (e *Editor) UpsertEventHandler(formXML string, h Handler) (string, error) {
	if err := requireValue("formXml", formXML); err != nil {
		return "", err
	}
	if err := requireValue("libraryName", h.Library); err != nil {
		return "", err
	}
	if err := requireValue("functionName", h.Function); err != nil {
		return "", err
	}
	if !h.Event.Valid() {
		return "", xmltree.InvalidArgument("eventType", "unsupported event type "+h.Event.String())
	}
	h.Library = normalize(h.Library)
	h.Function = normalize(h.Function)

	doc, form, err := load(formXML)
	if err != nil {
		return "", err
	}
	changed, err := e.upsertLibrary(form, h.Library)
	if err != nil {
		return "", err
	}

	events, made, err := ensureKeeping(form, xmltree.Named(elemEvents), nil)
	if err != nil {
		return "", err
	}
	changed = changed || made
	eventName := h.Event.String()
	bucket, made, err := ensureKeeping(events, xmltree.Element(elemEvent, attrName, eventName),
		xmltree.A(attrName, eventName, attrApplication, "false", attrActive, "false"))
	if err != nil {
		return "", err
	}
	changed = changed || made
	handlers, made, err := ensureKeeping(bucket, xmltree.Named(elemHandlers), nil)
	if err != nil {
		return "", err
	}
	changed = changed || made

	pred := handlerMatch(h.Library, h.Function)
	id, created := e.existingOrNewID(handlers, pred, attrHandlerUniqueID)
	_, made, err = xmltree.EnsureChild(handlers, pred, elemHandler, xmltree.A(
		attrFunctionName, h.Function,
		attrLibraryName, h.Library,
		attrHandlerUniqueID, id,
		attrEnabled, formatBool(h.Enabled),
		attrParameters, h.Parameters,
		attrPassExecutionContext, formatBool(h.PassExecutionContext),
	))
	if err != nil {
		return "", err
	}

	e.logger.Debug("handler reconciled",
		"event", eventName,
		"library", h.Library,
		"function", h.Function,
		"id", id,
		"created", created,
		"changed", made,
	)
	if !changed && !made {
		return formXML, nil
	}
	return doc.String(), nil
}

// DeleteLibrary removes every handler bound to libraryName on every event
// type, then removes the library itself. Event and Handlers containers are
// left in place even when they become empty.
func (e *Editor) DeleteLibrary(formXML, libraryName string) (string, error) {
	if err := requireValue("formXml", formXML); err != nil {
		return "", err
	}
	if err := requireValue("libraryName", libraryName); err != nil {
		return "", err
	}
	libraryName = normalize(libraryName)

	doc, form, err := load(formXML)
	if err != nil {
		return "", err
	}

	removed := 0
	for _, ev := range AllEvents {
		n, err := e.removeHandlers(form, ev, libraryName, "")
		if err != nil {
			return "", err
		}
		removed += n
	}

	if libraries := xmltree.Find(form, xmltree.Named(elemFormLibraries)); libraries != nil {
		n, err := xmltree.RemoveMatching(libraries, libraryMatch(libraryName))
		if err != nil {
			return "", err
		}
		e.logger.Debug("library removed", "library", libraryName, "count", n)
		removed += n
	}

	if removed == 0 {
		return formXML, nil
	}
	return doc.String(), nil
}

// DeleteEventHandler removes the handler calling functionName from
// libraryName on the given event. With an empty functionName every handler
// of the library on that event is removed. When nothing matches, formXML is
// returned unchanged.
func (e *Editor) DeleteEventHandler(formXML string, event EventType, libraryName, functionName string) (string, error) {
	if err := requireValue("formXml", formXML); err != nil {
		return "", err
	}
	if err := requireValue("libraryName", libraryName); err != nil {
		return "", err
	}
	if !event.Valid() {
		return "", xmltree.InvalidArgument("eventType", "unsupported event type "+event.String())
	}

	doc, form, err := load(formXML)
	if err != nil {
		return "", err
	}

	n, err := e.removeHandlers(form, event, normalize(libraryName), normalize(strings.TrimSpace(functionName)))
	if err != nil {
		return "", err
	}
	if n == 0 {
		return formXML, nil
	}
	return doc.String(), nil
}

// upsertLibrary reports whether the form was modified.
func (e *Editor) upsertLibrary(form *xmltree.Node, libraryName string) (bool, error) {
	libraries, madeContainer, err := ensureKeeping(form, xmltree.Named(elemFormLibraries), nil)
	if err != nil {
		return false, err
	}

	pred := libraryMatch(libraryName)
	id, created := e.existingOrNewID(libraries, pred, attrLibraryUniqueID)
	_, changed, err := xmltree.EnsureChild(libraries, pred, elemLibrary,
		xmltree.A(attrName, libraryName, attrLibraryUniqueID, id))
	if err != nil {
		return false, err
	}

	e.logger.Debug("library reconciled", "library", libraryName, "id", id, "created", created, "changed", changed)
	return madeContainer || changed, nil
}

func (e *Editor) removeHandlers(form *xmltree.Node, event EventType, libraryName, functionName string) (int, error) {
	events := xmltree.Find(form, xmltree.Named(elemEvents))
	bucket := xmltree.Find(events, xmltree.Element(elemEvent, attrName, event.String()))
	handlers := xmltree.Find(bucket, xmltree.Named(elemHandlers))
	if handlers == nil {
		return 0, nil
	}

	pred := xmltree.Element(elemHandler, attrLibraryName, libraryName)
	if functionName != "" {
		pred = handlerMatch(libraryName, functionName)
	}
	n, err := xmltree.RemoveMatching(handlers, pred)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		e.logger.Debug("handlers removed", "event", event.String(), "match", pred.String(), "count", n)
	}
	return n, nil
}

// existingOrNewID returns the id stored in attr on the node matching pred,
// or a fresh id when there is no such node or it has no id.
func (e *Editor) existingOrNewID(parent *xmltree.Node, pred xmltree.Predicate, attr string) (id string, created bool) {
	if existing := xmltree.Find(parent, pred); existing != nil {
		if id, ok := existing.Attr(attr); ok && id != "" {
			return id, false
		}
	}
	return e.ids.NewID(), true
}

// ensureKeeping ensures a child matching pred exists. A new child gets
// defaults; an existing child keeps the attributes it has, so only creation
// reports a change.
func ensureKeeping(parent *xmltree.Node, pred xmltree.Match, defaults xmltree.Attrs) (*xmltree.Node, bool, error) {
	attrs := defaults
	if existing := xmltree.Find(parent, pred); existing != nil {
		attrs = existing.Attrs()
	}
	return xmltree.EnsureChild(parent, pred, pred.Name, attrs)
}

func libraryMatch(libraryName string) xmltree.Match {
	return xmltree.Element(elemLibrary, attrName, libraryName)
}

func handlerMatch(libraryName, functionName string) xmltree.Match {
	return xmltree.Element(elemHandler, attrFunctionName, functionName, attrLibraryName, libraryName)
}

// load parses formXML and returns its <form> root.
func load(formXML string) (*xmltree.Document, *xmltree.Node, error) {
	doc, err := xmltree.ParseString(formXML)
	if err != nil {
		return nil, nil, err
	}
	form := doc.Root()
	if form == nil || form.Name() != elemForm {
		return nil, nil, xmltree.MissingStructure(elemForm)
	}
	return doc, form, nil
}

func requireValue(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return xmltree.InvalidArgument(field, field+" needs to have a non-empty value")
	}
	return nil
}

// normalize applies NFC so that visually identical names match.
func normalize(s string) string {
	return norm.NFC.String(s)
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
