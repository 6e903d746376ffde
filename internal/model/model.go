// Package model defines the core data types of the scratchpad catalog:
// tenants, namespaces, scratchpads, cells, schema registry entries,
// validation results, and search hits.
package model

import "time"

// Language enumerates the recognized cell content dialects.
type Language string

const (
	LangJSON Language = "json"
	LangYAML Language = "yaml"
	LangYML  Language = "yml"
	LangMD   Language = "md"
	LangTXT  Language = "txt"
	LangPY   Language = "py"
	LangJS   Language = "js"
	LangTS   Language = "ts"
	LangTSX  Language = "tsx"
	LangJSX  Language = "jsx"
	LangRS   Language = "rs"
	LangC    Language = "c"
	LangH    Language = "h"
	LangCPP  Language = "cpp"
	LangHPP  Language = "hpp"
	LangSH   Language = "sh"
	LangCSS  Language = "css"
	LangHTML Language = "html"
	LangHTM  Language = "htm"
	LangJAVA Language = "java"
	LangGO   Language = "go"
	LangRB   Language = "rb"
	LangTOML Language = "toml"
	LangPHP  Language = "php"
	LangCS   Language = "cs"
)

// knownLanguages backs IsKnown without allocating on every call.
var knownLanguages = map[Language]bool{
	LangJSON: true, LangYAML: true, LangYML: true, LangMD: true, LangTXT: true,
	LangPY: true, LangJS: true, LangTS: true, LangTSX: true, LangJSX: true,
	LangRS: true, LangC: true, LangH: true, LangCPP: true, LangHPP: true,
	LangSH: true, LangCSS: true, LangHTML: true, LangHTM: true, LangJAVA: true,
	LangGO: true, LangRB: true, LangTOML: true, LangPHP: true, LangCS: true,
}

// IsKnown reports whether l is one of the enumerated dialects.
func (l Language) IsKnown() bool { return knownLanguages[l] }

// IsCode reports whether l is a programming-language dialect rather than
// json/yaml/md/txt.
func (l Language) IsCode() bool {
	switch l {
	case LangJSON, LangYAML, LangYML, LangMD, LangTXT:
		return false
	default:
		return l.IsKnown()
	}
}

// StringSet is a set of strings. It has no JSON methods of its own:
// persisted rows and wire responses carry it as the sorted slice from
// Slice, so they are stable and comparison-friendly.
type StringSet map[string]struct{}

// NewStringSet builds a StringSet from a slice, discarding duplicates.
func NewStringSet(items []string) StringSet {
	s := make(StringSet, len(items))
	for _, it := range items {
		if it == "" {
			continue
		}
		s[it] = struct{}{}
	}
	return s
}

// Slice returns the set's members in sorted order.
func (s StringSet) Slice() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sortStrings(out)
	return out
}

// Union returns a new set containing the members of s and other.
func (s StringSet) Union(other StringSet) StringSet {
	out := make(StringSet, len(s)+len(other))
	for k := range s {
		out[k] = struct{}{}
	}
	for k := range other {
		out[k] = struct{}{}
	}
	return out
}

// Intersects reports whether s and other share at least one member.
func (s StringSet) Intersects(other StringSet) bool {
	small, big := s, other
	if len(big) < len(small) {
		small, big = big, small
	}
	for k := range small {
		if _, ok := big[k]; ok {
			return true
		}
	}
	return false
}

func sortStrings(ss []string) {
	// Simple insertion sort is fine: tag/namespace sets are small, and this
	// keeps the package free of an extra "sort" import used once.
	for i := 1; i < len(ss); i++ {
		for j := i; j > 0 && ss[j-1] > ss[j]; j-- {
			ss[j-1], ss[j] = ss[j], ss[j-1]
		}
	}
}

// SchemaEntry is a named entry in a pad's schema registry.
type SchemaEntry struct {
	ID          string         `json:"id"`
	Description string         `json:"description,omitempty"`
	Schema      map[string]any `json:"schema"`
}

// Cell is a typed unit of pad content. Index is presentation-only:
// mutations always address a cell by CellID.
type Cell struct {
	CellID     string         `json:"cell_id"`
	Index      int            `json:"index"`
	Language   Language       `json:"language"`
	Content    string         `json:"content"`
	Validate   bool           `json:"validate"`
	JSONSchema any            `json:"json_schema,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Tags       StringSet      `json:"-"`
}

// TagSlice returns Tags sorted, for JSON wire shaping.
func (c *Cell) TagSlice() []string { return c.Tags.Slice() }

// Scratchpad is a UUID-addressed ordered container of cells.
type Scratchpad struct {
	ScratchID    string         `json:"scratch_id"`
	TenantID     string         `json:"tenant_id"`
	Namespace    string         `json:"namespace"`
	Tags         StringSet      `json:"-"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	Cells        []Cell         `json:"cells,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	LastAccessAt time.Time      `json:"last_access_at"`
}

// CellTags is the union of every cell's tag set.
func (s *Scratchpad) CellTags() StringSet {
	out := StringSet{}
	for _, c := range s.Cells {
		out = out.Union(c.Tags)
	}
	return out
}

// Title returns the canonical metadata.title field, if present.
func (s *Scratchpad) Title() string { return stringField(s.Metadata, "title") }

// Description returns the canonical metadata.description field, if present.
func (s *Scratchpad) Description() string { return stringField(s.Metadata, "description") }

func stringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// PadSummary is the lean row list_pads uses: no cell content, ever.
// Mutation responses use LightPad instead.
type PadSummary struct {
	ScratchID   string `json:"scratch_id"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Namespace   string `json:"namespace"`
	CellCount   int    `json:"cell_count"`
}

// CellSummary is the lightweight cell row list_cells returns: no content.
type CellSummary struct {
	CellID   string         `json:"cell_id"`
	Index    int            `json:"index"`
	Language Language       `json:"language"`
	Tags     []string       `json:"tags,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// LightPad is the mutating-operation response shape: ids,
// indices, language, tags, metadata, but never cell content.
type LightPad struct {
	ScratchID    string         `json:"scratch_id"`
	TenantID     string         `json:"tenant_id"`
	Namespace    string         `json:"namespace"`
	Tags         []string       `json:"tags,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	Cells        []CellSummary  `json:"cells"`
	CreatedAt    time.Time      `json:"created_at"`
	LastAccessAt time.Time      `json:"last_access_at"`
}

// ToLight projects a Scratchpad into its lightweight wire shape.
func (s *Scratchpad) ToLight() LightPad {
	cells := make([]CellSummary, len(s.Cells))
	for i, c := range s.Cells {
		cells[i] = CellSummary{
			CellID:   c.CellID,
			Index:    c.Index,
			Language: c.Language,
			Tags:     c.TagSlice(),
			Metadata: c.Metadata,
		}
	}
	return LightPad{
		ScratchID:    s.ScratchID,
		TenantID:     s.TenantID,
		Namespace:    s.Namespace,
		Tags:         s.Tags.Slice(),
		Metadata:     s.Metadata,
		Cells:        cells,
		CreatedAt:    s.CreatedAt,
		LastAccessAt: s.LastAccessAt,
	}
}

// ToSummary projects a Scratchpad into the list_pads lean row.
func (s *Scratchpad) ToSummary() PadSummary {
	return PadSummary{
		ScratchID:   s.ScratchID,
		Title:       s.Title(),
		Description: s.Description(),
		Namespace:   s.Namespace,
		CellCount:   len(s.Cells),
	}
}

// Diagnostic is a single validation message.
type Diagnostic struct {
	Message string         `json:"message"`
	Code    string         `json:"code,omitempty"`
	Ref     string         `json:"ref,omitempty"`
	Line    int            `json:"line,omitempty"`
	Column  int            `json:"column,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// ValidationResult is the advisory outcome of validating a single cell:
// diagnostics never block persistence.
type ValidationResult struct {
	CellID   string            `json:"cell_id"`
	Index    int               `json:"index"`
	Language Language          `json:"language"`
	Valid    bool              `json:"valid"`
	Errors   []Diagnostic      `json:"errors,omitempty"`
	Warnings []Diagnostic      `json:"warnings,omitempty"`
	Details  map[string]any    `json:"details,omitempty"`
}

// SearchHit is a single semantic-search result.
type SearchHit struct {
	ScratchID        string   `json:"scratch_id"`
	CellID           string   `json:"cell_id,omitempty"`
	TenantID         string   `json:"tenant_id"`
	Namespace        string   `json:"namespace"`
	Tags             []string `json:"tags,omitempty"`
	Score            float32  `json:"score"`
	Snippet          string   `json:"snippet,omitempty"`
	EmbeddingVersion string   `json:"embedding_version"`
}

// TagListing is the aggregated tag view list_tags returns.
type TagListing struct {
	ScratchpadTags   []string `json:"scratchpad_tags"`
	CellTags         []string `json:"cell_tags"`
	NamespaceFilter  []string `json:"namespace_filter,omitempty"`
}

// Namespace is a lightweight per-tenant label/registry row.
type Namespace struct {
	TenantID  string    `json:"tenant_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// DefaultNamespace is the implicit namespace new pads land in.
const DefaultNamespace = "default"
