/*
Package session holds the document currently being edited and the operations a user can
perform on it: loading a file, editing target texts and exporting.

A Session is owned by whoever dispatches user actions. It does no locking and must not be used
from more than one goroutine at a time.
*/
package session

import (
	"errors"
	"fmt"

	"github.com/e-imamura/TMX-Editor/tmx"
)

// ErrNoDocument is returned by operations that need a loaded document.
var ErrNoDocument = errors.New("no TMX document loaded")

// Notifier receives the side effects of session operations that the user interface has to
// reflect.
type Notifier interface {
	// Status reports a human-readable status message.
	Status(msg string)
	// Rerender asks for the unit listing to be redrawn because a unit changed shape.
	Rerender()
}

type discard struct{}

func (discard) Status(string) {}
func (discard) Rerender()     {}

// Discard is a Notifier that ignores everything.
var Discard Notifier = discard{}

// Download is an exported document, ready to be offered to the user.
type Download struct {
	Filename string
	Content  []byte
}

type Session struct {
	doc      *tmx.Document
	fileName string
	notify   Notifier
}

// New creates an empty session. A nil notifier is replaced by Discard.
func New(n Notifier) *Session {
	if n == nil {
		n = Discard
	}
	return &Session{notify: n}
}

// Loaded reports whether a document has been loaded.
func (s *Session) Loaded() bool {
	return s.doc != nil
}

// FileName returns the name the current document was loaded from.
func (s *Session) FileName() string {
	return s.fileName
}

// Document returns the live document, or nil when nothing is loaded.
func (s *Session) Document() *tmx.Document {
	return s.doc
}

// Load replaces the current document with the one in raw. If raw cannot be loaded the
// previous document, if any, stays in place.
func (s *Session) Load(name string, raw []byte) error {
	doc, err := tmx.Load(raw)
	if err != nil {
		s.notify.Status("Error loading TMX: " + err.Error())
		return err
	}

	s.doc = doc
	s.fileName = name
	s.notify.Status("TMX loaded successfully.")
	s.notify.Rerender()

	return nil
}

// Replace installs an already parsed document, such as one restored from storage, as though it
// had been loaded from a file called name.
func (s *Session) Replace(name string, doc *tmx.Document) {
	tmx.AssignMissingIDs(doc)
	s.doc = doc
	s.fileName = name
	s.notify.Status("TMX loaded successfully.")
	s.notify.Rerender()
}

// Units lists the translation units of the current document.
func (s *Session) Units() []tmx.Unit {
	if s.doc == nil {
		return nil
	}
	return s.doc.Units()
}

// SetTargetText sets the target text of the unit at index.
func (s *Session) SetTargetText(index int, text string) error {
	if s.doc == nil {
		return ErrNoDocument
	}

	created, err := s.doc.SetTargetText(index, text)
	if err != nil {
		return err
	}
	if created {
		s.notify.Rerender()
	}

	return nil
}

// Export serializes the current document, with every attribute removed when strip is set.
// The live document is never changed by an export.
func (s *Session) Export(strip bool) (Download, error) {
	if s.doc == nil {
		return Download{}, ErrNoDocument
	}

	text, err := tmx.Export(s.doc, tmx.ExportOptions{StripAttributes: strip})
	if err != nil {
		s.notify.Status("Error exporting TMX: " + err.Error())
		return Download{}, fmt.Errorf("session: %w", err)
	}

	if strip {
		s.notify.Status("TMX exported without attributes.")
	} else {
		s.notify.Status("TMX exported.")
	}

	return Download{Filename: tmx.ExportFilename(s.fileName), Content: []byte(text)}, nil
}
