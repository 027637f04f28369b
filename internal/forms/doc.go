// Package forms connects the form XML editor to a form repository.
//
// A Repository supplies form XML for an entity, stores edited XML back and
// publishes an entity once a batch of edits is complete. The Processor loops
// over every matching form, edits it through formxml.Editor, stores the forms
// whose XML actually changed and publishes the entity once.
//
// The Processor does not retry and does not coordinate concurrent writers;
// both belong to the Repository implementation.
package forms
