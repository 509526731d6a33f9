package hoabrief

import "sort"

// AnswerStatus tracks a question through a battery run.
type AnswerStatus string

// Answer lifecycle states. Within one run each question moves
// pending → in_flight → succeeded or failed, and never re-enters a state
// after reaching a terminal one.
const (
	AnswerPending   AnswerStatus = "pending"
	AnswerInFlight  AnswerStatus = "in_flight"
	AnswerSucceeded AnswerStatus = "succeeded"
	AnswerFailed    AnswerStatus = "failed"
)

// Terminal reports whether the status is an end state.
func (s AnswerStatus) Terminal() bool {
	return s == AnswerSucceeded || s == AnswerFailed
}

// Citation is a weak reference from an answer to an ingested document.
// It does not own the document.
type Citation struct {
	DocumentID string `json:"documentId"`
	Filename   string `json:"filename"`
	Category   string `json:"category"`
	Rank       int    `json:"rank"`
}

// Answer holds the outcome for a single battery question. Rank is the
// resolved authority rank: the minimum rank among the citations, or
// RankUnranked when there are none. An answer that succeeded without any
// citations is flagged NeedsReview; nothing grounds it.
type Answer struct {
	QuestionID  int          `json:"questionId"`
	Question    string       `json:"question"`
	Response    string       `json:"response"`
	Citations   []Citation   `json:"citations"`
	Rank        int          `json:"rank"`
	Status      AnswerStatus `json:"status"`
	Attempts    int          `json:"attempts"`
	NeedsReview bool         `json:"needsReview"`
	Err         string       `json:"err,omitempty"`
}

// SortCitations orders citations by ascending authority rank, breaking
// ties by filename so output is deterministic.
func SortCitations(citations []Citation) {
	sort.SliceStable(citations, func(i, j int) bool {
		if citations[i].Rank != citations[j].Rank {
			return citations[i].Rank < citations[j].Rank
		}
		return citations[i].Filename < citations[j].Filename
	})
}

// ResolveRank returns the minimum rank among the citations, i.e. the rank
// of the most authoritative source backing the answer. Returns
// RankUnranked when there are no citations.
func ResolveRank(citations []Citation) int {
	rank := RankUnranked
	for _, c := range citations {
		if rank == RankUnranked || c.Rank < rank {
			rank = c.Rank
		}
	}
	return rank
}
