/*
Package datastore keeps a library of TMX documents in a SQL database. Documents are stored as
serialized TMX text together with their unit count, keyed by file name.
*/
package datastore

import (
	"database/sql"
	"errors"
	"fmt"
	sq "github.com/Masterminds/squirrel"
	"github.com/e-imamura/TMX-Editor/config"
	"github.com/e-imamura/TMX-Editor/tmx"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// ErrNotFound is returned when no document with the requested name is stored.
var ErrNotFound = errors.New("document not found")

// Adapter provides database-driver-specific queries and migrations.
type Adapter interface {
	PostCreate(*sqlx.DB) error
	Placeholder() sq.PlaceholderFormat
	VersionTableQuery() string
	Up() []string
	Down() []string
}

type DataStore struct {
	adapter Adapter
	db      *sqlx.DB
	sb      sq.StatementBuilderType
	Stats   Stats
}

type Stats map[StatKey]StatItem

type StatKey struct {
	Name   string
	Action string
}

type StatItem struct {
	Duration time.Duration
	Count    int
}

func (s Stats) Log(name, action string, d time.Duration) {
	item := s[StatKey{Name: name, Action: action}]
	item.Count++
	item.Duration += d
	s[StatKey{Name: name, Action: action}] = item
}

func (s Stats) String() (out string) {
	keys := make([]StatKey, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Name != keys[j].Name {
			return keys[i].Name < keys[j].Name
		}
		return keys[i].Action < keys[j].Action
	})

	for _, k := range keys {
		v := s[k]
		out += fmt.Sprintf("%v  %v '%v' actions took %v total, %v avg\n", v.Count, k.Name, k.Action, v.Duration, v.Duration/time.Duration(v.Count))
	}

	return out
}

// DocumentInfo describes a stored document without its content.
type DocumentInfo struct {
	Name      string    `db:"name" json:"name"`
	Units     int       `db:"units" json:"units"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Creates a new datastore using the given database connection. The driver parameter is used to
// select the appropriate database adapter, and should be one of the config.DbDriver* constants.
func New(db *sqlx.DB, driver string) (ds *DataStore, err error) {
	adp, err := newAdapter(driver)
	if err != nil {
		return &DataStore{}, err
	}

	ds = &DataStore{
		adapter: adp,
		db:      db,
		sb:      sq.StatementBuilder.PlaceholderFormat(adp.Placeholder()),
		Stats:   make(map[StatKey]StatItem),
	}

	err = ds.adapter.PostCreate(ds.db)
	if err != nil {
		return ds, err
	}

	return ds, nil
}

// Connect opens the database described by c and returns a datastore for it.
func Connect(c config.DbConfig) (*DataStore, error) {
	db, err := sqlx.Connect(c.Driver, c.ConnectionString())
	if err != nil {
		return nil, err
	}
	ds, err := New(db, c.Driver)
	if err != nil {
		db.Close()
		return nil, err
	}
	return ds, nil
}

func newAdapter(driver string) (adp Adapter, err error) {
	switch driver {
	case config.DbDriverSqlite3:
		adp = Sqlite3Adapter{}
	case config.DbDriverPostgresql:
		adp = PostgresAdapter{}
	}

	if adp == nil {
		return nil, fmt.Errorf("no adapter available for database driver '%v'", driver)
	}

	return adp, nil
}

func (ds *DataStore) Close() error {
	return ds.db.Close()
}

// SaveDocument stores doc under name, replacing any document already stored with that name.
func (ds *DataStore) SaveDocument(name string, doc *tmx.Document) (err error) {
	start := time.Now()
	defer func() { ds.Stats.Log("document", "save", time.Since(start)) }()

	content, err := tmx.Serialize(doc)
	if err != nil {
		return fmt.Errorf("datastore: serialize %v: %w", name, err)
	}

	query, args, err := ds.sb.Insert("document").
		Columns("name", "content", "units", "updated_at").
		Values(name, content, len(doc.Body.Units), time.Now().UTC()).
		Suffix("ON CONFLICT (name) DO UPDATE SET content = excluded.content, units = excluded.units, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return err
	}

	_, err = ds.db.Exec(query, args...)

	return err
}

// GetDocument loads the document stored under name.
// Returns ErrNotFound when the given name cannot be found.
func (ds *DataStore) GetDocument(name string) (doc *tmx.Document, err error) {
	start := time.Now()
	defer func() { ds.Stats.Log("document", "get", time.Since(start)) }()

	query, args, err := ds.sb.Select("content").From("document").Where(sq.Eq{"name": name}).ToSql()
	if err != nil {
		return nil, err
	}

	var content string
	err = ds.db.Get(&content, query, args...)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	doc, err = tmx.Load([]byte(content))
	if err != nil {
		return nil, fmt.Errorf("datastore: stored document %v: %w", name, err)
	}

	return doc, nil
}

// Gets all stored documents, most recently updated first.
func (ds *DataStore) GetDocumentList() (docs []DocumentInfo, err error) {
	start := time.Now()
	defer func() { ds.Stats.Log("document", "list", time.Since(start)) }()

	query, args, err := ds.sb.Select("name", "units", "updated_at").From("document").
		OrderBy("updated_at DESC", "name").ToSql()
	if err != nil {
		return nil, err
	}

	docs = []DocumentInfo{}
	err = ds.db.Select(&docs, query, args...)

	return docs, err
}

// Deletes the document stored under name.
// Returns ErrNotFound when the given name cannot be found.
func (ds *DataStore) DeleteDocument(name string) (err error) {
	start := time.Now()
	defer func() { ds.Stats.Log("document", "delete", time.Since(start)) }()

	query, args, err := ds.sb.Delete("document").Where(sq.Eq{"name": name}).ToSql()
	if err != nil {
		return err
	}

	res, err := ds.db.Exec(query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	return nil
}

// ImportFile loads the TMX file at path and stores it under its base name.
func (ds *DataStore) ImportFile(path string) (name string, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	doc, err := tmx.Load(raw)
	if err != nil {
		return "", fmt.Errorf("%v: %w", path, err)
	}

	name = filepath.Base(path)
	return name, ds.SaveDocument(name, doc)
}

// ImportDir imports every *.tmx file in dir, sending the name of each stored document to
// notify. It stops at the first file that cannot be imported.
func (ds *DataStore) ImportDir(dir string, notify chan<- string) (count int, err error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.tmx"))
	if err != nil {
		return 0, err
	}

	for i, file := range files {
		name, err := ds.ImportFile(file)
		if err != nil {
			return i, err
		}

		notify <- name
	}

	return len(files), nil
}

// ExportDocument writes the document stored under name into dir and returns the path written.
func (ds *DataStore) ExportDocument(name, dir string, strip bool) (path string, err error) {
	doc, err := ds.GetDocument(name)
	if err != nil {
		return "", err
	}

	text, err := tmx.Export(doc, tmx.ExportOptions{StripAttributes: strip})
	if err != nil {
		return "", err
	}

	path = filepath.Join(dir, tmx.ExportFilename(name))
	if err = os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", err
	}

	return path, nil
}

// ExportAll writes every stored document into dir, sending each path written to notify.
func (ds *DataStore) ExportAll(dir string, strip bool, notify chan<- string) (count int, err error) {
	docs, err := ds.GetDocumentList()
	if err != nil {
		return 0, err
	}
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}

	for i, d := range docs {
		path, err := ds.ExportDocument(d.Name, dir, strip)
		if err != nil {
			return i, err
		}

		notify <- path
	}

	return len(docs), nil
}
