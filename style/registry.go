package style

// ID is a stable, opaque integer index into a Registry. Id 0 always
// resolves to Default.
type ID int

// Registry deduplicates CellStyle values, handing back a stable ID for
// each unique style. It also tracks custom number-format code -> id
// assignment so styles sharing a custom format share one numFmtId.
type Registry struct {
	styles     []CellStyle
	index      map[CellStyle]ID
	customFmts map[string]int // format code -> assigned id
	nextCustom int
}

// NewRegistry builds an empty registry seeded with the default style at
// id 0.
func NewRegistry() *Registry {
	r := &Registry{
		index:      map[CellStyle]ID{},
		customFmts: map[string]int{},
		nextCustom: customIDBase,
	}
	r.styles = append(r.styles, Default)
	r.index[Default] = 0
	return r
}

// Add interns s, assigning a custom number-format id if needed, and
// returns its stable ID. Structurally identical styles (after custom-id
// resolution) always return the same ID.
func (r *Registry) Add(s CellStyle) ID {
	s = r.resolveCustomFmt(s)
	if id, ok := r.index[s]; ok {
		return id
	}
	id := ID(len(r.styles))
	r.styles = append(r.styles, s)
	r.index[s] = id
	return id
}

// resolveCustomFmt assigns (or reuses) a custom numFmtId for s's number
// format when it is a Custom tag with an unset/mismatched id, so the
// dedup map key is stable regardless of call-site id guesses.
func (r *Registry) resolveCustomFmt(s CellStyle) CellStyle {
	if s.NumFmt.Tag != Custom {
		return s
	}
	if id, ok := r.customFmts[s.NumFmt.Code]; ok {
		s.NumFmt.ID = id
		return s
	}
	id := r.nextCustom
	r.nextCustom++
	r.customFmts[s.NumFmt.Code] = id
	s.NumFmt.ID = id
	return s
}

// Get returns the style for id, or Default and false if id is unknown.
func (r *Registry) Get(id ID) (CellStyle, bool) {
	if int(id) < 0 || int(id) >= len(r.styles) {
		return Default, false
	}
	return r.styles[id], true
}

// Len returns the number of distinct interned styles, including the
// implicit default at id 0.
func (r *Registry) Len() int {
	return len(r.styles)
}

// Has reports whether id refers to an interned style.
func (r *Registry) Has(id ID) bool {
	return int(id) >= 0 && int(id) < len(r.styles)
}

// All returns every interned style in id order. The returned slice must
// not be mutated; it aliases the registry's internal storage.
func (r *Registry) All() []CellStyle {
	return r.styles
}

// Clone returns a deep-enough copy of the registry suitable for a Sheet
// value-copy: independent slices/maps, same contents.
func (r *Registry) Clone() *Registry {
	out := &Registry{
		styles:     make([]CellStyle, len(r.styles)),
		index:      make(map[CellStyle]ID, len(r.index)),
		customFmts: make(map[string]int, len(r.customFmts)),
		nextCustom: r.nextCustom,
	}
	copy(out.styles, r.styles)
	for k, v := range r.index {
		out.index[k] = v
	}
	for k, v := range r.customFmts {
		out.customFmts[k] = v
	}
	return out
}

// Merge interns every style of other into r, returning a map from other's
// old IDs to r's IDs. Used when combining two sheets/workbooks so that
// formerly-distinct registries share one id space.
func (r *Registry) Merge(other *Registry) map[ID]ID {
	remap := make(map[ID]ID, other.Len())
	for i, s := range other.styles {
		remap[ID(i)] = r.Add(s)
	}
	return remap
}
