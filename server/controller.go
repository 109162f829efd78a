package server

import (
	"context"
	"errors"
	"github.com/e-imamura/TMX-Editor/datastore"
	"github.com/e-imamura/TMX-Editor/session"
	"github.com/e-imamura/TMX-Editor/tmx"
	"github.com/sirupsen/logrus"
)

// ErrStopped is returned by Dispatch once the controller has stopped running.
var ErrStopped = errors.New("controller stopped")

// Store is the part of the datastore the controller uses to keep documents.
type Store interface {
	SaveDocument(name string, doc *tmx.Document) error
	GetDocument(name string) (*tmx.Document, error)
	GetDocumentList() ([]datastore.DocumentInfo, error)
}

// Result carries whatever an action produces. Only the fields relevant to the action are set.
type Result struct {
	Name      string
	Loaded    bool
	Units     []tmx.Unit
	Download  session.Download
	Documents []datastore.DocumentInfo
}

// Action is one user action on the editing session.
type Action interface {
	apply(c *Controller) (Result, error)
}

// LoadAction loads a file the user picked or dropped.
type LoadAction struct {
	Name    string
	Content []byte
}

// EditAction sets the target text of the unit at Index.
type EditAction struct {
	Index int
	Text  string
}

// ExportAction exports the current document.
type ExportAction struct {
	Strip bool
}

// InfoAction reports the current document's name and unit count.
type InfoAction struct{}

// ListAction lists the current document's units.
type ListAction struct{}

// OpenAction loads a document from the store.
type OpenAction struct {
	Name string
}

// StoredAction lists the documents in the store.
type StoredAction struct{}

type request struct {
	action Action
	reply  chan response
}

type response struct {
	result Result
	err    error
}

// Controller owns the editing session. Actions from any goroutine are queued by Dispatch and
// applied one at a time by Run, so the session itself is only ever used from one goroutine.
type Controller struct {
	session  *session.Session
	store    Store
	requests chan request
	done     chan struct{}
	log      *logrus.Entry
}

// NewController creates a controller for s. store may be nil, in which case documents are
// neither saved nor opened from storage.
func NewController(s *session.Session, store Store) *Controller {
	return &Controller{
		session:  s,
		store:    store,
		requests: make(chan request),
		done:     make(chan struct{}),
		log:      logrus.WithField("component", "controller"),
	}
}

// Run applies queued actions until ctx is cancelled.
func (c *Controller) Run(ctx context.Context) {
	defer close(c.done)
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-c.requests:
			res, err := req.action.apply(c)
			req.reply <- response{result: res, err: err}
		}
	}
}

// Dispatch queues a and waits for its result.
func (c *Controller) Dispatch(ctx context.Context, a Action) (Result, error) {
	req := request{action: a, reply: make(chan response, 1)}
	select {
	case c.requests <- req:
	case <-c.done:
		return Result{}, ErrStopped
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}

	resp := <-req.reply
	return resp.result, resp.err
}

func (c *Controller) info() Result {
	return Result{Name: c.session.FileName(), Loaded: c.session.Loaded(), Units: c.session.Units()}
}

// autosave stores the current document. Failures are logged; the edit itself has succeeded.
func (c *Controller) autosave() {
	if c.store == nil || !c.session.Loaded() {
		return
	}
	name := tmx.ExportFilename(c.session.FileName())
	if err := c.store.SaveDocument(name, c.session.Document()); err != nil {
		c.log.WithError(err).WithField("document", name).Error("autosave failed")
	}
}

func (a LoadAction) apply(c *Controller) (Result, error) {
	if err := c.session.Load(a.Name, a.Content); err != nil {
		c.log.WithError(err).WithField("file", a.Name).Warn("load failed")
		return Result{}, err
	}
	c.log.WithField("file", a.Name).WithField("units", len(c.session.Units())).Info("document loaded")
	c.autosave()
	return c.info(), nil
}

func (a EditAction) apply(c *Controller) (Result, error) {
	if err := c.session.SetTargetText(a.Index, a.Text); err != nil {
		return Result{}, err
	}
	c.autosave()
	return Result{}, nil
}

func (a ExportAction) apply(c *Controller) (Result, error) {
	d, err := c.session.Export(a.Strip)
	if err != nil {
		return Result{}, err
	}
	c.log.WithField("file", d.Filename).WithField("strip", a.Strip).Info("document exported")
	return Result{Download: d}, nil
}

func (a InfoAction) apply(c *Controller) (Result, error) {
	return c.info(), nil
}

func (a ListAction) apply(c *Controller) (Result, error) {
	if !c.session.Loaded() {
		return Result{}, session.ErrNoDocument
	}
	return Result{Units: c.session.Units()}, nil
}

func (a OpenAction) apply(c *Controller) (Result, error) {
	if c.store == nil {
		return Result{}, datastore.ErrNotFound
	}
	doc, err := c.store.GetDocument(a.Name)
	if err != nil {
		return Result{}, err
	}
	c.session.Replace(a.Name, doc)
	c.log.WithField("document", a.Name).Info("document opened from store")
	return c.info(), nil
}

func (a StoredAction) apply(c *Controller) (Result, error) {
	if c.store == nil {
		return Result{Documents: []datastore.DocumentInfo{}}, nil
	}
	docs, err := c.store.GetDocumentList()
	if err != nil {
		return Result{}, err
	}
	return Result{Documents: docs}, nil
}
