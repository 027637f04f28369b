package formxml

import (
	"strconv"

	"github.com/roach88/formscript/internal/xmltree"
)

// Library is a registered form library.
type Library struct {
	Name string `json:"name"`
	ID   string `json:"library_unique_id,omitempty"`
}

// RegisteredHandler is a handler as found in a form, including events the
// editor does not manage (for example field onchange events).
type RegisteredHandler struct {
	EventName            string `json:"event"`
	Attribute            string `json:"attribute,omitempty"`
	Function             string `json:"function"`
	Library              string `json:"library"`
	ID                   string `json:"handler_unique_id,omitempty"`
	Parameters           string `json:"parameters,omitempty"`
	Enabled              bool   `json:"enabled"`
	PassExecutionContext bool   `json:"pass_execution_context"`
}

// Bindings lists the script bindings of a form in document order.
type Bindings struct {
	Libraries []Library           `json:"libraries"`
	Handlers  []RegisteredHandler `json:"handlers"`
}

// HandlersFor returns the handlers bound to library on event.
func (b *Bindings) HandlersFor(event EventType, library string) []RegisteredHandler {
	var out []RegisteredHandler
	for _, h := range b.Handlers {
		if h.EventName == event.String() && h.Library == library {
			out = append(out, h)
		}
	}
	return out
}

// HasLibrary reports whether library is registered.
func (b *Bindings) HasLibrary(library string) bool {
	for _, l := range b.Libraries {
		if l.Name == library {
			return true
		}
	}
	return false
}

// Inspect reads the bindings of a form without changing it.
func Inspect(formXML string) (*Bindings, error) {
	if err := requireValue("formXml", formXML); err != nil {
		return nil, err
	}
	_, form, err := load(formXML)
	if err != nil {
		return nil, err
	}

	b := &Bindings{}
	libraries := xmltree.Find(form, xmltree.Named(elemFormLibraries))
	for _, l := range xmltree.FindAll(libraries, xmltree.Named(elemLibrary)) {
		name, _ := l.Attr(attrName)
		id, _ := l.Attr(attrLibraryUniqueID)
		b.Libraries = append(b.Libraries, Library{Name: name, ID: id})
	}

	events := xmltree.Find(form, xmltree.Named(elemEvents))
	for _, bucket := range xmltree.FindAll(events, xmltree.Named(elemEvent)) {
		eventName, _ := bucket.Attr(attrName)
		attribute, _ := bucket.Attr("attribute")
		handlers := xmltree.Find(bucket, xmltree.Named(elemHandlers))
		for _, h := range xmltree.FindAll(handlers, xmltree.Named(elemHandler)) {
			b.Handlers = append(b.Handlers, RegisteredHandler{
				EventName:            eventName,
				Attribute:            attribute,
				Function:             attrOf(h, attrFunctionName),
				Library:              attrOf(h, attrLibraryName),
				ID:                   attrOf(h, attrHandlerUniqueID),
				Parameters:           attrOf(h, attrParameters),
				Enabled:              parseBool(attrOf(h, attrEnabled)),
				PassExecutionContext: parseBool(attrOf(h, attrPassExecutionContext)),
			})
		}
	}
	return b, nil
}

func attrOf(n *xmltree.Node, name string) string {
	v, _ := n.Attr(name)
	return v
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	return err == nil && b
}
