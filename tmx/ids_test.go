package tmx

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitIDs(doc *Document) []string {
	var ids []string
	for _, u := range doc.Units() {
		ids = append(ids, u.ID)
	}
	return ids
}

func TestLeadingInt(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"5", "5", true},
		{"  12", "12", true},
		{"12abc", "12", true},
		{"-3", "-3", true},
		{"+4", "4", true},
		{"abc", "", false},
		{"", "", false},
		{"-", "", false},
		{"99999999999999999999", "99999999999999999999", true},
	}
	for _, tt := range tests {
		n, ok := leadingInt(tt.in)
		require.Equal(t, tt.ok, ok, tt.in)
		if ok {
			assert.Equal(t, tt.want, n.String(), tt.in)
		}
	}
}

// Scenario: the second unit continues after the first unit's id.
func TestAssignMissingIDs_ContinuesAfterExisting(t *testing.T) {
	doc, err := Load([]byte(`<tmx><body><tu id="5"><tuv><seg>a</seg></tuv></tu><tu><tuv><seg>b</seg></tuv></tu></body></tmx>`))
	require.NoError(t, err)
	assert.Equal(t, []string{"5", "6"}, unitIDs(doc))
}

func TestAssignMissingIDs_StartsAtOne(t *testing.T) {
	doc, err := Parse(`<tmx><body><tu/><tu/><tu/></body></tmx>`)
	require.NoError(t, err)
	assert.Equal(t, 3, AssignMissingIDs(doc))
	assert.Equal(t, []string{"1", "2", "3"}, unitIDs(doc))
}

func TestAssignMissingIDs_Monotonic(t *testing.T) {
	doc, err := Parse(`<tmx><body>
		<tu/>
		<tu id="10"/>
		<tu id="abc"/>
		<tu/>
		<tu id="3"/>
		<tu id=""/>
		<tu/>
	</body></tmx>`)
	require.NoError(t, err)

	assert.Equal(t, "10", MaxNumericID(doc).String())
	assert.Equal(t, 3, AssignMissingIDs(doc))

	want := []string{"11", "10", "abc", "12", "3", "", "13"}
	if diff := cmp.Diff(want, unitIDs(doc)); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestAssignMissingIDs_IgnoresNegativeAndNonNumeric(t *testing.T) {
	doc, err := Parse(`<tmx><body><tu id="-7"/><tu id="x1"/><tu/></body></tmx>`)
	require.NoError(t, err)
	AssignMissingIDs(doc)
	assert.Equal(t, []string{"-7", "x1", "1"}, unitIDs(doc))
}

func TestAssignMissingIDs_Idempotent(t *testing.T) {
	doc := loadSample(t)
	before := unitIDs(doc)
	assert.Equal(t, []string{"7", "8", "9"}, before)

	assert.Equal(t, 0, AssignMissingIDs(doc))
	assert.Equal(t, before, unitIDs(doc))
}

func TestAssignMissingIDs_KeepsAttributeOrder(t *testing.T) {
	doc, err := Parse(`<tmx><body><tu tuid="a" srclang="en"/></body></tmx>`)
	require.NoError(t, err)
	AssignMissingIDs(doc)

	var names []string
	for _, a := range doc.Body.Units[0].Attr {
		names = append(names, a.Name.Local)
	}
	assert.Equal(t, []string{"tuid", "srclang", "id"}, names)
}

func TestAssignMissingIDs_PastInt64(t *testing.T) {
	doc, err := Parse(`<tmx><body><tu id="9223372036854775807"/><tu/><tu/></body></tmx>`)
	require.NoError(t, err)
	assert.Equal(t, 2, AssignMissingIDs(doc))
	assert.Equal(t, []string{"9223372036854775807", "9223372036854775808", "9223372036854775809"}, unitIDs(doc))

	doc, err = Parse(`<tmx><body><tu/><tu id="123456789012345678901234567890"/></body></tmx>`)
	require.NoError(t, err)
	AssignMissingIDs(doc)
	assert.Equal(t, []string{"123456789012345678901234567891", "123456789012345678901234567890"}, unitIDs(doc))
}
