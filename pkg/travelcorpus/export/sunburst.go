package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cognicore/travelcorpus/pkg/travelcorpus/internalerr"
	"github.com/cognicore/travelcorpus/pkg/travelcorpus/record"
)

// Sunburst defaults.
const (
	SunburstRoot        = "Travel Preferences"
	DefaultActivity     = "General"
	DefaultSunburstFile = "seasonal_sunburst.json"
)

// Rule selects Label when any of its keywords occurs in the text.
type Rule struct {
	Label    string
	Keywords []string
}

// RuleSet is checked in order; the first rule with a hit wins.
type RuleSet []Rule

// Infer returns the label of the first matching rule, or fallback.
// Keywords are lower-case substrings.
func (rs RuleSet) Infer(text, fallback string) string {
	lower := strings.ToLower(text)
	for _, r := range rs {
		for _, kw := range r.Keywords {
			if strings.Contains(lower, kw) {
				return r.Label
			}
		}
	}
	return fallback
}

func SeasonRules() RuleSet {
	return RuleSet{
		{"Spring", []string{"spring", "march", "april"}},
		{"Summer", []string{"summer", "beach", "vacation", "june", "july"}},
		{"Autumn", []string{"autumn", "fall", "september", "october"}},
		{"Winter", []string{"winter", "snow", "december", "cold"}},
	}
}

func PlaceRules() RuleSet {
	return RuleSet{
		{"Beach", []string{"beach", "island", "seaside"}},
		{"Mountain", []string{"mountain", "hill", "trek"}},
		{"City", []string{"city", "urban", "downtown"}},
		{"Cultural", []string{"heritage", "temple", "museum"}},
		{"Other", []string{"safari", "countryside"}},
	}
}

func ActivityRules() RuleSet {
	return RuleSet{
		{"Adventure", []string{"adventure", "trek", "hike"}},
		{"Leisure", []string{"relax", "leisure", "calm"}},
		{"Cultural", []string{"culture", "heritage"}},
		{DefaultActivity, []string{"plan", "itinerary", "trip"}},
	}
}

// SunburstNode is one ring segment. Leaves carry a Value and no Children;
// inner nodes carry Children, possibly empty.
type SunburstNode struct {
	Name     string
	Value    int
	Children []*SunburstNode
}

func (n *SunburstNode) MarshalJSON() ([]byte, error) {
	if n.Children == nil {
		return json.Marshal(struct {
			Name  string `json:"name"`
			Value int    `json:"value"`
		}{n.Name, n.Value})
	}
	return json.Marshal(struct {
		Name     string          `json:"name"`
		Children []*SunburstNode `json:"children"`
	}{n.Name, n.Children})
}

// child returns the named child of n, appending it on first use so the
// tree keeps first-seen order.
func (n *SunburstNode) child(name string, inner bool) *SunburstNode {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	c := &SunburstNode{Name: name}
	if inner {
		c.Children = []*SunburstNode{}
	}
	n.Children = append(n.Children, c)
	return c
}

// Hierarchy counts travel texts by season, place type and activity.
type Hierarchy struct {
	Seasons    RuleSet
	Places     RuleSet
	Activities RuleSet

	root    *SunburstNode
	counted int
}

// NewHierarchy uses the built-in rule tables.
func NewHierarchy() *Hierarchy {
	return &Hierarchy{
		Seasons:    SeasonRules(),
		Places:     PlaceRules(),
		Activities: ActivityRules(),
		root:       &SunburstNode{Name: SunburstRoot, Children: []*SunburstNode{}},
	}
}

// Add counts text when both a season and a place can be inferred. The
// activity falls back to DefaultActivity.
func (h *Hierarchy) Add(text string) bool {
	season := h.Seasons.Infer(text, "")
	place := h.Places.Infer(text, "")
	if season == "" || place == "" {
		return false
	}
	activity := h.Activities.Infer(text, DefaultActivity)
	h.root.child(season, true).child(place, true).child(activity, false).Value++
	h.counted++
	return true
}

// AddRecords counts the text of each record.
func (h *Hierarchy) AddRecords(records []record.Record) {
	for _, rec := range records {
		h.Add(rec.Text)
	}
}

// AddCSV counts the text column of an exported table and returns the
// number of rows read.
func (h *Hierarchy) AddCSV(r io.Reader) (int, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return 0, fmt.Errorf("read csv header: %w", err)
	}
	textIdx := -1
	for i, col := range header {
		if strings.TrimSpace(col) == "text" {
			textIdx = i
			break
		}
	}
	if textIdx < 0 {
		return 0, fmt.Errorf("%w: csv lacks a text column", internalerr.ErrInvalidInput)
	}
	rows := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return rows, fmt.Errorf("read csv row %d: %w", rows+1, err)
		}
		rows++
		h.Add(rec[textIdx])
	}
}

// Counted is the number of texts placed in the tree.
func (h *Hierarchy) Counted() int { return h.counted }

// Tree returns the root node. It is live; later Adds show up in it.
func (h *Hierarchy) Tree() *SunburstNode { return h.root }

// WriteSunburst encodes the tree as indented JSON.
func WriteSunburst(w io.Writer, root *SunburstNode) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("encode sunburst: %w", err)
	}
	return nil
}
