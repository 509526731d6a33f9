// Package gemini implements the retrieval backend on the Gemini API. The
// corpus lives in the local registry: each question is answered by stuffing
// the registry documents into the prompt, and citations are harvested from
// a trailing Sources line verified against the corpus filenames.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/hoabrief/hoabrief"
	"google.golang.org/genai"
)

// DefaultModel is the model used for answering questions.
const DefaultModel = "gemini-2.5-flash"

// sourcesPrefix marks the citation trailer the prompt asks for.
const sourcesPrefix = "Sources:"

// Ensure Index implements hoabrief.CorpusIndex at compile time.
var _ hoabrief.CorpusIndex = (*Index)(nil)

// Index implements hoabrief.CorpusIndex using Gemini. Unlike the OpenAI
// backend there is no remote document store; documents are read from the
// registry at question time.
type Index struct {
	client  *genai.Client
	corpora hoabrief.CorpusService
	docs    hoabrief.DocumentService
	model   string

	mu           sync.Mutex
	instructions string
	temperature  float32
}

// Option configures an Index.
type Option func(*Index)

// WithModel sets the model used for answering.
// Defaults to DefaultModel if not specified.
func WithModel(model string) Option {
	return func(i *Index) {
		i.model = model
	}
}

// NewIndex creates a new Index backed by the given client and registry
// services.
func NewIndex(client *genai.Client, corpora hoabrief.CorpusService, docs hoabrief.DocumentService, opts ...Option) *Index {
	idx := &Index{
		client:  client,
		corpora: corpora,
		docs:    docs,
		model:   DefaultModel,
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// EnsureCorpus returns the registry ID of the named corpus, creating the
// record if absent. The registry is the backing store for this backend.
func (i *Index) EnsureCorpus(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", hoabrief.Errorf(hoabrief.EINVALID, "corpus name required")
	}

	corpora, err := i.corpora.FindCorpora(ctx, hoabrief.CorpusFilter{Name: &name})
	if err != nil {
		return "", err
	}
	if len(corpora) > 0 {
		return corpora[0].ID, nil
	}

	corpus := &hoabrief.Corpus{Name: name}
	if err := i.corpora.CreateCorpus(ctx, corpus); err != nil {
		return "", err
	}

	return corpus.ID, nil
}

// IngestDocument stores nothing remotely: answering reads document content
// straight from the registry. The returned ID is derived from the filename
// so re-ingests stay idempotent.
func (i *Index) IngestDocument(ctx context.Context, corpusID string, doc *hoabrief.Document) (string, error) {
	if corpusID == "" {
		return "", hoabrief.Errorf(hoabrief.EINVALID, "corpus ID required")
	}
	if err := doc.Validate(); err != nil {
		return "", err
	}

	return "local:" + doc.Filename, nil
}

// WaitReady confirms the corpus record exists. There is no remote indexing
// step to wait for.
func (i *Index) WaitReady(ctx context.Context, corpusID string) error {
	_, err := i.corpora.FindCorpusByID(ctx, corpusID)
	return err
}

// EnsureAgent records the run's instructions and temperature and returns an
// agent ID that encodes the corpus binding.
func (i *Index) EnsureAgent(ctx context.Context, name, corpusID, instructions string, temperature float32) (string, error) {
	if name == "" {
		return "", hoabrief.Errorf(hoabrief.EINVALID, "agent name required")
	}
	if _, err := i.corpora.FindCorpusByID(ctx, corpusID); err != nil {
		return "", err
	}

	i.mu.Lock()
	i.instructions = instructions
	i.temperature = temperature
	i.mu.Unlock()

	return name + "@" + corpusID, nil
}

// VerifyAgent checks the corpus binding encoded in the agent ID.
func (i *Index) VerifyAgent(ctx context.Context, agentID, corpusID string) error {
	_, bound, ok := strings.Cut(agentID, "@")
	if !ok {
		return hoabrief.Errorf(hoabrief.EMISCONFIGURED, "malformed agent ID %q", agentID)
	}
	if bound != corpusID {
		return hoabrief.Errorf(hoabrief.EMISCONFIGURED, "agent %s is not bound to corpus %s", agentID, corpusID)
	}
	return nil
}

// Ask answers a single question by stuffing the corpus documents into the
// prompt. Cited filenames are taken from the answer's Sources trailer and
// checked against the corpus; names outside it are dropped.
func (i *Index) Ask(ctx context.Context, agentID, question string) (*hoabrief.AskResult, error) {
	if question == "" {
		return nil, hoabrief.Errorf(hoabrief.EINVALID, "question required")
	}
	_, corpusID, ok := strings.Cut(agentID, "@")
	if !ok {
		return nil, hoabrief.Errorf(hoabrief.EMISCONFIGURED, "malformed agent ID %q", agentID)
	}

	docs, err := i.docs.FindDocuments(ctx, hoabrief.DocumentFilter{
		CorpusID: &corpusID,
		SortBy:   hoabrief.SortByRank,
	})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, hoabrief.Errorf(hoabrief.ENOTFOUND, "no documents in corpus %q", corpusID)
	}

	prompt := BuildUserPrompt(docs, question)
	config := i.buildConfig()

	result, err := i.client.Models.GenerateContent(ctx, i.model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: prompt}},
		}},
		config,
	)
	if err != nil {
		return nil, classifyErr(err)
	}
	if result == nil {
		return nil, hoabrief.Errorf(hoabrief.EINTERNAL, "gemini returned nil result")
	}

	body, names := SplitSources(result.Text())

	return &hoabrief.AskResult{
		Text:       body,
		CitedFiles: CitedFiles(docs, names),
	}, nil
}

// CitedFiles maps source names from an answer onto corpus documents,
// preserving order, deduplicating, and dropping names outside the corpus.
func CitedFiles(docs []*hoabrief.Document, names []string) []hoabrief.CitedFile {
	byFilename := make(map[string]*hoabrief.Document, len(docs))
	for _, doc := range docs {
		byFilename[doc.Filename] = doc
	}

	var cited []hoabrief.CitedFile
	seen := make(map[string]bool)
	for _, name := range names {
		doc, ok := byFilename[name]
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		cited = append(cited, hoabrief.CitedFile{
			FileID:   "local:" + doc.Filename,
			Filename: doc.Filename,
		})
	}

	return cited
}

func (i *Index) buildConfig() *genai.GenerateContentConfig {
	i.mu.Lock()
	instructions := i.instructions
	temp := i.temperature
	i.mu.Unlock()

	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: instructions}},
		},
		Temperature: &temp,
	}
}

// BuildUserPrompt builds the user prompt containing the corpus documents
// and the question. Documents carry their authority rank so the model can
// apply the conflict rule from the system instructions.
func BuildUserPrompt(docs []*hoabrief.Document, question string) string {
	var sb strings.Builder
	sb.WriteString("<documents>\n")
	for _, doc := range docs {
		sb.WriteString("<document>\n")
		fmt.Fprintf(&sb, "<filename>%s</filename>\n", doc.Filename)
		fmt.Fprintf(&sb, "<category>%s</category>\n", doc.Category)
		fmt.Fprintf(&sb, "<rank>%d</rank>\n", doc.Rank)
		fmt.Fprintf(&sb, "<content>%s</content>\n", doc.Content)
		sb.WriteString("</document>\n")
	}
	sb.WriteString("</documents>\n\n")
	fmt.Fprintf(&sb, "Question: %s\n\n", question)
	sb.WriteString(`End your answer with a single line "Sources: <filename>, <filename>" listing only the filenames of documents you actually used. If you used none, end with "Sources: none".`)
	return sb.String()
}

// SplitSources separates the answer body from its Sources trailer. The
// trailer must be the final line; otherwise the text is returned unchanged
// with no sources.
func SplitSources(text string) (string, []string) {
	trimmed := strings.TrimRight(text, " \t\n")
	idx := strings.LastIndex(trimmed, sourcesPrefix)
	if idx == -1 {
		return text, nil
	}
	if strings.Contains(trimmed[idx:], "\n") {
		return text, nil
	}

	body := strings.TrimRight(trimmed[:idx], " \t\n")
	list := strings.TrimSpace(trimmed[idx+len(sourcesPrefix):])
	if list == "" || strings.EqualFold(list, "none") {
		return body, nil
	}

	var names []string
	for _, part := range strings.Split(list, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}

	return body, names
}

// classifyErr maps Gemini API errors onto domain error codes. Rate limits
// and server errors are transient (EUNAVAILABLE); everything else passes
// through.
func classifyErr(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == 429 || apiErr.Code >= 500 {
			return hoabrief.Errorf(hoabrief.EUNAVAILABLE, "gemini: %s", apiErr.Message)
		}
	}
	return err
}
