package session

import (
	"errors"
	"strings"
	"testing"

	"github.com/e-imamura/TMX-Editor/tmx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	statuses  []string
	rerenders int
}

func (r *recorder) Status(msg string) { r.statuses = append(r.statuses, msg) }
func (r *recorder) Rerender()         { r.rerenders++ }

func (r *recorder) last() string {
	if len(r.statuses) == 0 {
		return ""
	}
	return r.statuses[len(r.statuses)-1]
}

const twoUnits = "\uFEFF\n<tmx><body><tu id=\"7\"><tuv><seg>Hello</seg></tuv><tuv><seg>Bonjour</seg></tuv></tu><tu><tuv><seg>Bye</seg></tuv></tu></body></tmx>"

func TestSession_Load(t *testing.T) {
	rec := &recorder{}
	s := New(rec)
	assert.False(t, s.Loaded())
	assert.Nil(t, s.Units())

	require.NoError(t, s.Load("memory.tmx", []byte(twoUnits)))
	assert.True(t, s.Loaded())
	assert.Equal(t, "memory.tmx", s.FileName())
	assert.Equal(t, "TMX loaded successfully.", rec.last())

	units := s.Units()
	require.Len(t, units, 2)
	assert.Equal(t, "7", units[0].ID)
	assert.Equal(t, "8", units[1].ID)
}

// Scenario: a failed load reports a status and keeps the previous document.
func TestSession_LoadFailureKeepsPrevious(t *testing.T) {
	rec := &recorder{}
	s := New(rec)
	require.NoError(t, s.Load("memory.tmx", []byte(twoUnits)))
	before := s.Document()

	err := s.Load("broken.tmx", []byte("<body/>"))
	var perr *tmx.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "Error loading TMX: invalid TMX file: <tmx> not found", rec.last())
	assert.Same(t, before, s.Document())
	assert.Equal(t, "memory.tmx", s.FileName())
}

func TestSession_LoadFailureWithoutPrevious(t *testing.T) {
	rec := &recorder{}
	s := New(rec)

	err := s.Load("broken.tmx", []byte("<tmx><body>"))
	require.Error(t, err)
	assert.False(t, s.Loaded())
	assert.True(t, strings.HasPrefix(rec.last(), "Error loading TMX: invalid XML"))
}

func TestSession_SetTargetText(t *testing.T) {
	rec := &recorder{}
	s := New(rec)
	require.NoError(t, s.Load("memory.tmx", []byte(twoUnits)))
	rerenders := rec.rerenders

	require.NoError(t, s.SetTargetText(0, "Salut"))
	assert.Equal(t, rerenders, rec.rerenders)
	assert.Equal(t, "Salut", s.Units()[0].Target)

	require.NoError(t, s.SetTargetText(1, "Au revoir"))
	assert.Equal(t, rerenders+1, rec.rerenders)
	assert.Equal(t, "Au revoir", s.Units()[1].Target)

	assert.ErrorIs(t, s.SetTargetText(5, "x"), tmx.ErrNoSuchUnit)
}

func TestSession_RequiresDocument(t *testing.T) {
	s := New(nil)

	assert.ErrorIs(t, s.SetTargetText(0, "x"), ErrNoDocument)
	_, err := s.Export(false)
	assert.ErrorIs(t, err, ErrNoDocument)
}

// Scenario: exports with and without attributes leave the live ids alone.
func TestSession_Export(t *testing.T) {
	rec := &recorder{}
	s := New(rec)
	require.NoError(t, s.Load("memory", []byte(twoUnits)))

	d, err := s.Export(false)
	require.NoError(t, err)
	assert.Equal(t, "memory.tmx", d.Filename)
	assert.Contains(t, string(d.Content), `id="7"`)
	assert.Equal(t, "TMX exported.", rec.last())

	d, err = s.Export(true)
	require.NoError(t, err)
	assert.NotContains(t, strings.TrimPrefix(string(d.Content), tmx.Prolog), "id=")
	assert.Equal(t, "TMX exported without attributes.", rec.last())

	assert.Equal(t, "7", s.Units()[0].ID)
	assert.Equal(t, "8", s.Units()[1].ID)
}

func TestSession_ExportDefaultName(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.Load("", []byte(twoUnits)))

	d, err := s.Export(false)
	require.NoError(t, err)
	assert.Equal(t, "export.tmx", d.Filename)
}

func TestSession_Replace(t *testing.T) {
	rec := &recorder{}
	s := New(rec)

	doc, err := tmx.Parse("<tmx><body><tu><tuv><seg>Hi</seg></tuv></tu></body></tmx>")
	require.NoError(t, err)
	s.Replace("stored.tmx", doc)

	assert.True(t, s.Loaded())
	assert.Equal(t, "stored.tmx", s.FileName())
	assert.Equal(t, "1", s.Units()[0].ID)
	assert.Equal(t, "TMX loaded successfully.", rec.last())
	assert.Equal(t, 1, rec.rerenders)
}
