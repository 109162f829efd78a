package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/e-imamura/TMX-Editor/config"
	"github.com/e-imamura/TMX-Editor/datastore"
	"github.com/e-imamura/TMX-Editor/session"
	"github.com/e-imamura/TMX-Editor/tmx"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"
)

const maxUploadSize = 32 << 20

func checkFatal(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func checkHttpWithStatus(e error, w http.ResponseWriter, status int) (hadError bool) {
	if e != nil {
		w.WriteHeader(status)

		jsonErr := struct {
			Error string `json:"error"`
		}{
			Error: e.Error(),
		}
		enc := json.NewEncoder(w)
		enc.Encode(jsonErr)

		return true
	}
	return false
}

// Picks the response status for e from the errors the editing packages return.
func checkHttp(e error, w http.ResponseWriter) (hadError bool) {
	if e == nil {
		return false
	}

	status := http.StatusInternalServerError
	var perr *tmx.ParseError
	switch {
	case errors.As(e, &perr):
		status = http.StatusBadRequest
	case errors.Is(e, tmx.ErrNoSuchUnit), errors.Is(e, datastore.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(e, session.ErrNoDocument):
		status = http.StatusConflict
	case errors.Is(e, context.Canceled), errors.Is(e, ErrStopped):
		status = http.StatusServiceUnavailable
	}
	return checkHttpWithStatus(e, w, status)
}

func setJsonHeaders(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		h.ServeHTTP(w, r)
	})
}

func writeJson(w http.ResponseWriter, v interface{}) {
	enc := json.NewEncoder(w)
	checkHttp(enc.Encode(v), w)
}

type api struct {
	ctrl         *Controller
	defaultStrip bool
}

type documentInfo struct {
	Name   string `json:"name"`
	Loaded bool   `json:"loaded"`
	Units  int    `json:"units"`
}

type unitView struct {
	Index  int    `json:"index"`
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// Reads the uploaded file either from a multipart 'file' field or from the raw request body.
func readUpload(r *http.Request) (name string, content []byte, err error) {
	name = r.URL.Query().Get("name")

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		f, hdr, err := r.FormFile("file")
		if err != nil {
			return "", nil, err
		}
		defer f.Close()
		if name == "" {
			name = hdr.Filename
		}
		content, err = io.ReadAll(f)
		return name, content, err
	}

	content, err = io.ReadAll(r.Body)
	return name, content, err
}

// Loads a TMX file into the session.
func (a *api) loadDocumentHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	name, content, err := readUpload(r)
	if err != nil {
		checkHttpWithStatus(fmt.Errorf("could not read upload (%v)", err), w, http.StatusBadRequest)
		return
	}

	res, err := a.ctrl.Dispatch(r.Context(), LoadAction{Name: name, Content: content})
	if checkHttp(err, w) {
		return
	}

	writeJson(w, documentInfo{Name: res.Name, Loaded: res.Loaded, Units: len(res.Units)})
}

func (a *api) getDocumentHandler(w http.ResponseWriter, r *http.Request) {
	res, err := a.ctrl.Dispatch(r.Context(), InfoAction{})
	if checkHttp(err, w) {
		return
	}

	writeJson(w, documentInfo{Name: res.Name, Loaded: res.Loaded, Units: len(res.Units)})
}

func (a *api) getUnitsHandler(w http.ResponseWriter, r *http.Request) {
	res, err := a.ctrl.Dispatch(r.Context(), ListAction{})
	if checkHttp(err, w) {
		return
	}

	out := make([]unitView, len(res.Units))
	for i, u := range res.Units {
		out[i] = unitView{Index: u.Index, ID: u.ID, Source: u.Source, Target: u.Target}
	}
	writeJson(w, out)
}

// Sets the target text of one unit.
func (a *api) updateTargetHandler(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		checkHttpWithStatus(fmt.Errorf("invalid unit index (%v)", err), w, http.StatusBadRequest)
		return
	}

	var content struct {
		Content *string `json:"content"`
	}
	decoder := json.NewDecoder(r.Body)
	err = decoder.Decode(&content)
	if err == nil && content.Content == nil {
		err = errors.New("missing 'content'")
	}
	if err != nil {
		checkHttpWithStatus(fmt.Errorf("could not decode request (%v)", err), w, http.StatusBadRequest)
		return
	}

	_, err = a.ctrl.Dispatch(r.Context(), EditAction{Index: index, Text: *content.Content})
	if checkHttp(err, w) {
		return
	}

	w.Write([]byte("{\"result\":\"ok\"}\n"))
}

// Offers the current document as a file download.
func (a *api) exportHandler(w http.ResponseWriter, r *http.Request) {
	strip := a.defaultStrip
	if v := r.URL.Query().Get("strip"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			checkHttpWithStatus(fmt.Errorf("invalid 'strip' value %q", v), w, http.StatusBadRequest)
			return
		}
		strip = b
	}

	res, err := a.ctrl.Dispatch(r.Context(), ExportAction{Strip: strip})
	if checkHttp(err, w) {
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Download.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Download.Content)))
	w.Write(res.Download.Content)
}

func (a *api) getStoredDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	res, err := a.ctrl.Dispatch(r.Context(), StoredAction{})
	if checkHttp(err, w) {
		return
	}

	var output struct {
		Documents []datastore.DocumentInfo `json:"documents"`
	}
	output.Documents = res.Documents
	writeJson(w, output)
}

func (a *api) openStoredDocumentHandler(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	res, err := a.ctrl.Dispatch(r.Context(), OpenAction{Name: name})
	if checkHttp(err, w) {
		return
	}

	writeJson(w, documentInfo{Name: res.Name, Loaded: res.Loaded, Units: len(res.Units)})
}

// NewRouter builds the HTTP API around a running controller and hub.
func NewRouter(ctrl *Controller, hub *Hub, defaultStrip bool) http.Handler {
	a := &api{ctrl: ctrl, defaultStrip: defaultStrip}

	r := mux.NewRouter().StrictSlash(true)
	r.HandleFunc("/document", a.loadDocumentHandler).Methods("POST")
	r.HandleFunc("/document", a.getDocumentHandler).Methods("GET")
	r.HandleFunc("/units", a.getUnitsHandler).Methods("GET")
	r.HandleFunc("/units/{index:[0-9]+}/target", a.updateTargetHandler).Methods("PUT")
	r.HandleFunc("/export", a.exportHandler).Methods("GET")
	r.HandleFunc("/documents", a.getStoredDocumentsHandler).Methods("GET")
	r.HandleFunc("/documents/{name}/open", a.openStoredDocumentHandler).Methods("POST")
	r.HandleFunc("/ws", hub.ServeWS).Methods("GET")

	return setJsonHeaders(r)
}

// Restores the most recently saved document, if there is one.
func restoreLatest(ctx context.Context, ctrl *Controller) {
	res, err := ctrl.Dispatch(ctx, StoredAction{})
	if err != nil {
		logrus.WithError(err).Warn("could not list stored documents")
		return
	}
	if len(res.Documents) == 0 {
		return
	}

	name := res.Documents[0].Name
	if _, err = ctrl.Dispatch(ctx, OpenAction{Name: name}); err != nil {
		logrus.WithError(err).WithField("document", name).Warn("could not restore document")
	}
}

func Serve(c config.Config) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ds, err := datastore.Connect(c.DB)
	checkFatal(err)
	defer ds.Close()
	_, err = ds.MigrateUp()
	checkFatal(err)

	hub := NewHub()
	ctrl := NewController(session.New(hub), ds)
	go hub.Run(ctx)
	go ctrl.Run(ctx)
	restoreLatest(ctx, ctrl)

	rWithMiddleWares := handlers.CombinedLoggingHandler(os.Stdout, NewRouter(ctrl, hub, c.TMX.StripAttributes))
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%v", c.Server.Port),
		Handler:           rWithMiddleWares,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logrus.WithField("port", c.Server.Port).Info("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		checkFatal(err)
	}

	fmt.Fprint(os.Stderr, ds.Stats)
}
