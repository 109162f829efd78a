package tmx

import (
	"strings"
)

// DefaultExportName is the download name used when the source file name is unknown.
const DefaultExportName = "export.tmx"

type ExportOptions struct {
	// StripAttributes removes every attribute from every element, unit ids included.
	StripAttributes bool
}

// Export serializes doc. With StripAttributes set, a deep copy of doc is stripped and
// serialized instead, so doc itself is never changed. Failures are returned as *ExportError.
func Export(doc *Document, opts ExportOptions) (string, error) {
	if doc == nil {
		return "", &ExportError{Err: errNilDocument}
	}

	out := doc
	if opts.StripAttributes {
		out = doc.Clone()
		StripAttributes(out)
	}

	text, err := Serialize(out)
	if err != nil {
		return "", &ExportError{Err: err}
	}
	return text, nil
}

// ExportFilename returns the name an exported copy of the named file is offered under.
func ExportFilename(name string) string {
	switch {
	case name == "":
		return DefaultExportName
	case strings.HasSuffix(name, ".tmx"):
		return name
	default:
		return name + ".tmx"
	}
}
