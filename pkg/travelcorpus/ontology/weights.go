package ontology

// Tier is one priority band of tag weights.
type Tier struct {
	Name    string
	Weights []TagWeight
}

// TagWeight assigns a weight to every keyword of a tag.
type TagWeight struct {
	Tag    string
	Weight float64
}

// DefaultTiers returns the priority tiers used by the relatedness filter.
// Tiers are applied in order, so a keyword shared between tags ends up with
// the tag and weight of the last tier that lists it.
func DefaultTiers() []Tier {
	return []Tier{
		{Name: "high", Weights: []TagWeight{
			{Tag: "itinerary_building", Weight: 1.0},
			{Tag: "transportation", Weight: 0.9},
			{Tag: "accommodation", Weight: 0.9},
		}},
		{Name: "medium", Weights: []TagWeight{
			{Tag: "logistics_safety", Weight: 0.7},
			{Tag: "financial_budget", Weight: 0.7},
			{Tag: "activities", Weight: 0.7},
		}},
		{Name: "low", Weights: []TagWeight{
			{Tag: "discovery_phrases", Weight: 0.5},
			{Tag: "planning_phrases", Weight: 0.6},
			{Tag: "special_keywords", Weight: 0.6},
		}},
	}
}

// WeightedKeyword is one row of the keyword weight table.
type WeightedKeyword struct {
	Keyword string
	Tag     string
	Weight  float64
}

// WeightTable maps lower-cased keywords to their tag and weight.
type WeightTable struct {
	rows  []WeightedKeyword
	index map[string]int
}

// BuildWeightTable derives the keyword weight table from an ontology.
// Tags missing from the ontology contribute nothing. On a keyword collision
// the later assignment overwrites tag and weight in place (last write wins)
// while the row keeps its original position.
func BuildWeightTable(o *Ontology, tiers []Tier) *WeightTable {
	t := &WeightTable{index: make(map[string]int)}
	for _, tier := range tiers {
		for _, tw := range tier.Weights {
			terms, ok := o.Terms(tw.Tag)
			if !ok {
				continue
			}
			for _, kw := range terms {
				if idx, exists := t.index[kw]; exists {
					t.rows[idx].Tag = tw.Tag
					t.rows[idx].Weight = tw.Weight
					continue
				}
				t.index[kw] = len(t.rows)
				t.rows = append(t.rows, WeightedKeyword{Keyword: kw, Tag: tw.Tag, Weight: tw.Weight})
			}
		}
	}
	return t
}

// Rows returns the table rows in insertion order.
func (t *WeightTable) Rows() []WeightedKeyword {
	return append([]WeightedKeyword(nil), t.rows...)
}

// Lookup returns the row for a keyword.
func (t *WeightTable) Lookup(keyword string) (WeightedKeyword, bool) {
	idx, ok := t.index[keyword]
	if !ok {
		return WeightedKeyword{}, false
	}
	return t.rows[idx], true
}

// Len returns the number of distinct keywords.
func (t *WeightTable) Len() int { return len(t.rows) }
