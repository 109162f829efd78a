package tmx

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadSample(t *testing.T) *Document {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("testdata", "sample.tmx"))
	require.NoError(t, err)
	doc, err := Load(raw)
	require.NoError(t, err)
	return doc
}

func requireParseError(t *testing.T, err error) *ParseError {
	t.Helper()
	var perr *ParseError
	require.Error(t, err)
	require.True(t, errors.As(err, &perr), "expected *ParseError, got %T: %v", err, err)
	return perr
}

func TestParse_Structure(t *testing.T) {
	doc := loadSample(t)

	assert.Equal(t, `DOCTYPE tmx SYSTEM "tmx14.dtd"`, doc.Doctype)
	v, ok := doc.Attr.Get("version")
	assert.True(t, ok)
	assert.Equal(t, "1.4", v)

	require.NotNil(t, doc.Header)
	assert.Equal(t, "header", doc.Header.Name.Local)
	require.Len(t, doc.Header.Elements, 1)
	assert.Equal(t, "Demo", doc.Header.Elements[0].Text)
	assert.Empty(t, doc.Header.Text)

	require.Len(t, doc.Body.Units, 3)
	first := doc.Body.Units[0]
	require.Len(t, first.Extra, 1)
	assert.Equal(t, "prop", first.Extra[0].Name.Local)
	require.Len(t, first.Variants, 2)
	lang, ok := first.Variants[1].Attr.Get("xml:lang")
	assert.True(t, ok)
	assert.Equal(t, "pt-BR", lang)
	assert.Equal(t, "Hello & welcome", first.Variants[0].Text())

	last := doc.Body.Units[2]
	require.Len(t, last.Variants, 2)
	assert.Nil(t, last.Variants[1].Seg)
}

func TestParse_DoesNotAssignIDs(t *testing.T) {
	doc, err := Parse(`<tmx><body><tu><tuv><seg>a</seg></tuv></tu></body></tmx>`)
	require.NoError(t, err)
	_, ok := doc.Body.Units[0].ID()
	assert.False(t, ok)
}

func TestParse_SegmentTextIncludesNestedText(t *testing.T) {
	doc, err := Parse(`<tmx><body><tu><tuv><seg>Press <bpt i="1">&lt;b&gt;</bpt>OK<ept i="1">&lt;/b&gt;</ept> now</seg></tuv></tu></body></tmx>`)
	require.NoError(t, err)
	assert.Equal(t, "Press <b>OK</b> now", doc.Body.Units[0].Variants[0].Text())
}

func TestParse_DeclaredEncodingIsAccepted(t *testing.T) {
	doc, err := Parse(`<?xml version="1.0" encoding="ISO-8859-1"?><tmx><body/></tmx>`)
	require.NoError(t, err)
	assert.Empty(t, doc.Body.Units)
}

func TestParse_IgnoresNonUnitBodyChildren(t *testing.T) {
	doc, err := Parse(`<tmx><body><note>x</note><tu id="1"/></body></tmx>`)
	require.NoError(t, err)
	require.Len(t, doc.Body.Units, 1)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		msg  string
	}{
		{"empty", "", "invalid TMX file: <tmx> not found"},
		{"wrong root", `<xliff><body/></xliff>`, "invalid TMX file: <tmx> not found"},
		{"prefixed root", `<x:tmx xmlns:x="urn:x"><body/></x:tmx>`, "invalid TMX file: <tmx> not found"},
		{"missing body", `<tmx><header/></tmx>`, "invalid TMX file: <body> not found"},
		{"unclosed", `<tmx><body>`, "invalid XML"},
		{"mismatched", `<tmx><body></tmx></body>`, "invalid XML"},
		{"bad entity", `<tmx><body><tu><tuv><seg>&nbsp;</seg></tuv></tu></body></tmx>`, "invalid XML"},
		{"second root", `<tmx><body/></tmx><tmx/>`, "invalid XML"},
		{"trailing text", `<tmx><body/></tmx>junk`, "invalid XML"},
		{"not xml", `hello`, "invalid XML"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse(tt.in)
			assert.Nil(t, doc)
			perr := requireParseError(t, err)
			assert.Equal(t, tt.msg, perr.Msg)
		})
	}
}

func TestParse_MalformedWrapsDecoderError(t *testing.T) {
	_, err := Parse(`<tmx><body>`)
	perr := requireParseError(t, err)
	require.NotNil(t, perr.Err)
	assert.Contains(t, err.Error(), "invalid XML: ")
}

// Scenario: a file without a <tmx> root cannot be loaded.
func TestLoad_MissingRoot(t *testing.T) {
	doc, err := Load([]byte(`<body><tu><tuv><seg>Hello</seg></tuv></tu></body>`))
	assert.Nil(t, doc)
	perr := requireParseError(t, err)
	assert.Equal(t, "invalid TMX file: <tmx> not found", perr.Error())
}
