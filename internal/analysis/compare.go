package analysis

// Comparison is the result of reducing a combined table to the
// parameters that can be compared across every document in the session.
type Comparison struct {
	Entries          []Entry
	CommonParameters []string
}

// Compare determines which parameters are common to every document in
// the combined table.
//
// With a single distinct document the table passes through unchanged and
// every parameter (first-seen order) counts as common. With multiple
// documents, the first value per (Parameter, Document) pair wins — later
// duplicates are dropped without conflict detection — and a parameter is
// common only when every document supplies a value for it. Entries whose
// parameter is not common are filtered out, so mixed document types with
// disjoint label sets reduce to the directly comparable fields only.
func Compare(entries []Entry) Comparison {
	docs := Documents(entries)
	if len(docs) <= 1 {
		return Comparison{
			Entries:          entries,
			CommonParameters: Parameters(entries),
		}
	}

	// Pivot into a Parameter x Document grid, first value winning.
	type cell struct {
		param string
		doc   string
	}
	grid := make(map[cell]Value)
	for _, e := range entries {
		key := cell{e.Parameter, e.Document}
		if _, ok := grid[key]; !ok {
			grid[key] = e.Value
		}
	}

	var common []string
	commonSet := make(map[string]bool)
	for _, p := range Parameters(entries) {
		complete := true
		for _, d := range docs {
			if _, ok := grid[cell{p, d}]; !ok {
				complete = false
				break
			}
		}
		if complete {
			common = append(common, p)
			commonSet[p] = true
		}
	}

	var filtered []Entry
	for _, e := range entries {
		if commonSet[e.Parameter] {
			filtered = append(filtered, e)
		}
	}

	return Comparison{Entries: filtered, CommonParameters: common}
}

// PivotFirst returns the first-seen value per (Parameter, Document) pair
// for the given parameter, keyed by document. Used by the renderers so
// duplicate labels within one document do not double-count.
func PivotFirst(entries []Entry, parameter string) map[string]Value {
	values := make(map[string]Value)
	for _, e := range entries {
		if e.Parameter != parameter {
			continue
		}
		if _, ok := values[e.Document]; !ok {
			values[e.Document] = e.Value
		}
	}
	return values
}
