package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringSetSliceIsSorted(t *testing.T) {
	s := NewStringSet([]string{"zebra", "apple", "mango", "apple"})
	assert.Equal(t, []string{"apple", "mango", "zebra"}, s.Slice())
}

func TestNewStringSetDiscardsEmpty(t *testing.T) {
	s := NewStringSet([]string{"", "a", ""})
	assert.Equal(t, []string{"a"}, s.Slice())
}

func TestStringSetUnion(t *testing.T) {
	a := NewStringSet([]string{"a", "b"})
	b := NewStringSet([]string{"b", "c"})
	assert.Equal(t, []string{"a", "b", "c"}, a.Union(b).Slice())
}

func TestStringSetIntersects(t *testing.T) {
	a := NewStringSet([]string{"a", "b"})
	b := NewStringSet([]string{"c", "b"})
	c := NewStringSet([]string{"z"})
	assert.True(t, a.Intersects(b))
	assert.False(t, a.Intersects(c))
}

func TestLanguageIsCode(t *testing.T) {
	assert.False(t, LangJSON.IsCode())
	assert.False(t, LangTXT.IsCode())
	assert.True(t, LangPY.IsCode())
	assert.True(t, LangGO.IsCode())
}

func TestLanguageIsKnown(t *testing.T) {
	assert.True(t, LangRS.IsKnown())
	assert.False(t, Language("cobol").IsKnown())
}

func TestScratchpadCellTagsUnionsAllCells(t *testing.T) {
	pad := &Scratchpad{
		Cells: []Cell{
			{CellID: "c1", Tags: NewStringSet([]string{"x", "y"})},
			{CellID: "c2", Tags: NewStringSet([]string{"y", "z"})},
		},
	}
	assert.Equal(t, []string{"x", "y", "z"}, pad.CellTags().Slice())
}

func TestScratchpadTitleAndDescriptionFromMetadata(t *testing.T) {
	pad := &Scratchpad{Metadata: map[string]any{"title": "My Pad", "description": "notes"}}
	assert.Equal(t, "My Pad", pad.Title())
	assert.Equal(t, "notes", pad.Description())
}

func TestScratchpadTitleEmptyWithoutMetadata(t *testing.T) {
	pad := &Scratchpad{}
	assert.Equal(t, "", pad.Title())
}

func TestScratchpadToLightProjectsCellsWithoutContent(t *testing.T) {
	pad := &Scratchpad{
		ScratchID: "s1",
		Namespace: "notes",
		Cells: []Cell{
			{CellID: "c1", Index: 0, Language: LangTXT, Content: "secret", Tags: NewStringSet([]string{"a"})},
		},
	}
	light := pad.ToLight()
	assert.Equal(t, "s1", light.ScratchID)
	assert.Len(t, light.Cells, 1)
	assert.Equal(t, "c1", light.Cells[0].CellID)
	assert.Equal(t, []string{"a"}, light.Cells[0].Tags)
}

func TestScratchpadToSummary(t *testing.T) {
	pad := &Scratchpad{
		ScratchID: "s1",
		Namespace: "notes",
		Metadata:  map[string]any{"title": "T"},
		Cells:     []Cell{{CellID: "c1"}, {CellID: "c2"}},
	}
	summary := pad.ToSummary()
	assert.Equal(t, "s1", summary.ScratchID)
	assert.Equal(t, "T", summary.Title)
	assert.Equal(t, 2, summary.CellCount)
}

func TestCellTagSlice(t *testing.T) {
	c := &Cell{Tags: NewStringSet([]string{"b", "a"})}
	assert.Equal(t, []string{"a", "b"}, c.TagSlice())
}
