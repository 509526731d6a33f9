package hoabrief

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// Uncategorized is the category assigned to documents that match no ranked
// category. It always carries the fallback (lowest-priority) rank.
const Uncategorized = "Uncategorized"

// RankUnranked marks an answer with no citations to derive a rank from.
const RankUnranked = 0

// classifyWindow bounds how much document content Classify inspects.
// Category markers appear in headings near the top of HOA documents.
const classifyWindow = 2048

// Category is one entry in an authority ranking: a named document class
// and the keywords that identify members of it.
type Category struct {
	Name     string   `json:"name" yaml:"name"`
	Keywords []string `json:"keywords" yaml:"keywords,flow"`
}

// Ranking is a totally ordered list of document categories. Position
// assigns the authority rank: the first category has rank 1, the most
// authoritative. When sources conflict, the numerically smallest rank
// wins. Rank uniqueness is structural; a category cannot hold two
// positions in the list.
type Ranking struct {
	Categories []Category `json:"categories" yaml:"categories"`
}

// Validate returns an error if the ranking is empty or contains duplicate
// category names.
func (r *Ranking) Validate() error {
	if len(r.Categories) == 0 {
		return Errorf(EINVALID, "ranking requires at least one category")
	}
	seen := make(map[string]bool, len(r.Categories))
	for _, c := range r.Categories {
		if c.Name == "" {
			return Errorf(EINVALID, "ranking category name required")
		}
		if seen[c.Name] {
			return Errorf(EINVALID, "duplicate ranking category %q", c.Name)
		}
		seen[c.Name] = true
	}
	return nil
}

// RankOf returns the 1-based rank of the named category. Unknown
// categories get the fallback rank rather than an error.
func (r *Ranking) RankOf(name string) int {
	for i, c := range r.Categories {
		if c.Name == name {
			return i + 1
		}
	}
	return r.FallbackRank()
}

// FallbackRank returns the rank assigned to documents that match no
// configured category: one past the lowest configured rank.
func (r *Ranking) FallbackRank() int {
	return len(r.Categories) + 1
}

// Classify assigns a document to a category by keyword match against the
// filename and the leading content. Categories are tried in rank order, so
// when keywords overlap the most authoritative match wins. Documents that
// match nothing are classified Uncategorized at the fallback rank rather
// than rejected; a mis-tagged document must not block a run.
func (r *Ranking) Classify(filename, content string) (string, int) {
	if len(content) > classifyWindow {
		content = content[:classifyWindow]
	}
	haystack := strings.ToLower(filename) + "\n" + strings.ToLower(content)
	for i, c := range r.Categories {
		for _, kw := range c.Keywords {
			if kw == "" {
				continue
			}
			if strings.Contains(haystack, strings.ToLower(kw)) {
				return c.Name, i + 1
			}
		}
	}
	return Uncategorized, r.FallbackRank()
}

// ParseRanking parses a YAML ranking definition and validates it.
func ParseRanking(data []byte) (*Ranking, error) {
	var r Ranking
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, Errorf(EINVALID, "parse ranking: %v", err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// DefaultRanking returns the standard authority ranking for HOA document
// sets, from recorded governing documents down to insurance evidence.
func DefaultRanking() *Ranking {
	return &Ranking{Categories: []Category{
		{Name: "CC&R Amendments", Keywords: []string{"cc&r amendment", "ccr amendment", "amendment to the declaration", "amended and restated"}},
		{Name: "CC&Rs", Keywords: []string{"cc&r", "ccrs", "declaration of covenants", "covenants, conditions"}},
		{Name: "Bylaws", Keywords: []string{"bylaw", "by-law"}},
		{Name: "Articles of Incorporation", Keywords: []string{"articles of incorporation"}},
		{Name: "Operating Rules", Keywords: []string{"operating rule", "rules and regulations", "house rule"}},
		{Name: "Election Rules", Keywords: []string{"election rule", "election"}},
		{Name: "Annual Budget Report", Keywords: []string{"annual budget", "budget report", "budget"}},
		{Name: "Financial Statements", Keywords: []string{"financial statement", "balance sheet", "income statement", "financials"}},
		{Name: "Reserve Study", Keywords: []string{"reserve study"}},
		{Name: "Reserve Fund", Keywords: []string{"reserve fund", "reserve"}},
		{Name: "Fine Schedule", Keywords: []string{"fine schedule", "schedule of fines", "fine policy"}},
		{Name: "Assessment Enforcement", Keywords: []string{"assessment enforcement", "collection policy", "delinquen"}},
		{Name: "Meeting Minutes", Keywords: []string{"meeting minutes", "minutes"}},
		{Name: "Additional Operational Policies & Guidelines", Keywords: []string{"operational polic", "guideline"}},
		{Name: "Insurance & Evidence of Insurance (COI)", Keywords: []string{"certificate of insurance", "evidence of insurance", "coi"}},
		{Name: "Flood & General Liability Insurance", Keywords: []string{"flood", "general liability", "liability insurance", "insurance"}},
	}}
}
