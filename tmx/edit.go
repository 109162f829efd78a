package tmx

// Unit is the editing view of one translation unit.
type Unit struct {
	// Index is the unit's position in the body and identifies it for edits.
	Index  int
	ID     string
	Source string
	Target string
}

// Units lists the body's translation units in document order. The first variant's segment
// is the source text and the second variant's segment the target text; a missing variant or
// segment reads as "".
func (d *Document) Units() []Unit {
	if d.Body == nil {
		return nil
	}
	units := make([]Unit, len(d.Body.Units))
	for i, tu := range d.Body.Units {
		id, _ := tu.ID()
		units[i] = Unit{Index: i, ID: id, Source: variantText(tu, 0), Target: variantText(tu, 1)}
	}
	return units
}

func variantText(tu *TU, i int) string {
	if i >= len(tu.Variants) {
		return ""
	}
	return tu.Variants[i].Text()
}

// SetTargetText sets the target text of the unit at index. When the unit has a second variant
// its segment is set, and created if missing. Otherwise a new variant holding the text is
// appended to the unit, and created reports that the unit's structure changed.
func (d *Document) SetTargetText(index int, text string) (created bool, err error) {
	if d.Body == nil || index < 0 || index >= len(d.Body.Units) {
		return false, ErrNoSuchUnit
	}

	tu := d.Body.Units[index]
	if len(tu.Variants) > 1 {
		tu.Variants[1].SetText(text)
		return false, nil
	}

	tu.Variants = append(tu.Variants, &TUV{Seg: &Segment{Text: text}})
	return true, nil
}
