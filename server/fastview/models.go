// Package fastview implements a builder pattern for simple server-pushed
// views: given an input data model, apply a transformation to a view-model,
// then multiplex that data to one or more view components over websocket.
package fastview

import (
	"html/template"
)

// EleUpdate is an element identifier and a set of operations to apply to its
// attributes/content.
type EleUpdate struct {
	// EleId is the id by which to find the element.
	EleId string
	// Op keys are attribute names or 'textContent'; values are the strings to
	// which these are set. ('textContent', 'abc') means ele.textContent = abc.
	Ops []Op
}

// Op is a key and value, e.g. an html attribute and its new value.
type Op struct {
	Key   string
	Value string
}

// ViewComponent implements a server-side view: Parse renders its template
// into a parent template, Updates exposes the channel of diffs to push to
// connected clients.
type ViewComponent interface {
	Updates() <-chan []EleUpdate
	Parse(*template.Template) (string, error)
}
