package battery_test

import (
	"context"
	"testing"
	"time"

	"github.com/hoabrief/hoabrief"
	"github.com/hoabrief/hoabrief/battery"
	"github.com/hoabrief/hoabrief/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

// duesCorpus is the registry state for most runner tests: a high-authority
// CC&Rs document and low-authority meeting minutes.
func duesCorpus() []*hoabrief.Document {
	return []*hoabrief.Document{
		{
			ID:            "doc-ccrs",
			CorpusID:      "corpus-1",
			Filename:      "ccrs.pdf",
			Category:      "CC&Rs",
			Rank:          2,
			BackendFileID: "file-ccrs",
		},
		{
			ID:            "doc-minutes",
			CorpusID:      "corpus-1",
			Filename:      "minutes.pdf",
			Category:      "Meeting Minutes",
			Rank:          13,
			BackendFileID: "file-minutes",
		},
	}
}

func registryOf(docs []*hoabrief.Document) *mock.DocumentService {
	return &mock.DocumentService{
		FindDocumentsFn: func(context.Context, hoabrief.DocumentFilter) ([]*hoabrief.Document, error) {
			return docs, nil
		},
	}
}

func TestRunner_Run(t *testing.T) {
	t.Parallel()

	t.Run("answers every question in order", func(t *testing.T) {
		t.Parallel()

		var asked []string
		index := &mock.CorpusIndex{
			AskFn: func(_ context.Context, agentID, question string) (*hoabrief.AskResult, error) {
				asked = append(asked, question)
				return &hoabrief.AskResult{Text: "answer to " + question}, nil
			},
		}

		runner := &battery.Runner{
			Index:       index,
			Documents:   registryOf(duesCorpus()),
			RetryDelays: noDelays,
		}

		questions := []hoabrief.Question{
			{ID: 1, Text: "first"},
			{ID: 2, Text: "second"},
			{ID: 3, Text: "third"},
		}

		answers, err := runner.Run(context.Background(), "corpus-1", "agent-1", questions, nil)

		require.NoError(t, err)
		require.Len(t, answers, len(questions))
		assert.Equal(t, []string{"first", "second", "third"}, asked)
		for i, a := range answers {
			assert.Equal(t, questions[i].ID, a.QuestionID)
			assert.Equal(t, hoabrief.AnswerSucceeded, a.Status)
			assert.Equal(t, 1, a.Attempts)
		}
	})

	t.Run("resolves rank from the most authoritative citation", func(t *testing.T) {
		t.Parallel()

		index := &mock.CorpusIndex{
			AskFn: func(context.Context, string, string) (*hoabrief.AskResult, error) {
				return &hoabrief.AskResult{
					Text: "Dues are $250 per CC&Rs; the minutes discussed an increase.",
					CitedFiles: []hoabrief.CitedFile{
						{FileID: "file-minutes", Filename: "minutes.pdf"},
						{FileID: "file-ccrs", Filename: "ccrs.pdf"},
					},
				}, nil
			},
		}

		runner := &battery.Runner{
			Index:       index,
			Documents:   registryOf(duesCorpus()),
			RetryDelays: noDelays,
		}

		answers, err := runner.Run(context.Background(), "corpus-1", "agent-1",
			[]hoabrief.Question{{ID: 1, Text: "what are the dues?"}}, nil)

		require.NoError(t, err)
		require.Len(t, answers, 1)

		a := answers[0]
		require.Len(t, a.Citations, 2)
		assert.Equal(t, "ccrs.pdf", a.Citations[0].Filename, "highest authority listed first")
		assert.Equal(t, 2, a.Citations[0].Rank)
		assert.Equal(t, "minutes.pdf", a.Citations[1].Filename)
		assert.Equal(t, 13, a.Citations[1].Rank)
		assert.Equal(t, 2, a.Rank, "resolved rank is the minimum citation rank")
		assert.False(t, a.NeedsReview)
	})

	t.Run("continues after retry exhaustion", func(t *testing.T) {
		t.Parallel()

		index := &mock.CorpusIndex{
			AskFn: func(_ context.Context, _, question string) (*hoabrief.AskResult, error) {
				if question == "doomed" {
					return nil, hoabrief.Errorf(hoabrief.EUNAVAILABLE, "backend down")
				}
				return &hoabrief.AskResult{Text: "fine"}, nil
			},
		}

		runner := &battery.Runner{
			Index:       index,
			Documents:   registryOf(duesCorpus()),
			RetryDelays: noDelays,
		}

		questions := []hoabrief.Question{
			{ID: 1, Text: "doomed"},
			{ID: 2, Text: "healthy"},
		}

		answers, err := runner.Run(context.Background(), "corpus-1", "agent-1", questions, nil)

		require.NoError(t, err)
		require.Len(t, answers, 2, "every question gets an answer record")

		assert.Equal(t, hoabrief.AnswerFailed, answers[0].Status)
		assert.Empty(t, answers[0].Response)
		assert.Empty(t, answers[0].Citations)
		assert.Contains(t, answers[0].Err, "backend down")
		assert.Equal(t, 3, answers[0].Attempts)

		assert.Equal(t, hoabrief.AnswerSucceeded, answers[1].Status)
	})

	t.Run("succeeds on the third attempt", func(t *testing.T) {
		t.Parallel()

		var attempts int
		index := &mock.CorpusIndex{
			AskFn: func(context.Context, string, string) (*hoabrief.AskResult, error) {
				attempts++
				if attempts < 3 {
					return nil, hoabrief.Errorf(hoabrief.EUNAVAILABLE, "backend busy")
				}
				return &hoabrief.AskResult{Text: "third time lucky"}, nil
			},
		}

		runner := &battery.Runner{
			Index:       index,
			Documents:   registryOf(duesCorpus()),
			RetryDelays: noDelays,
		}

		answers, err := runner.Run(context.Background(), "corpus-1", "agent-1",
			[]hoabrief.Question{{ID: 1, Text: "question"}}, nil)

		require.NoError(t, err)
		require.Len(t, answers, 1)
		assert.Equal(t, hoabrief.AnswerSucceeded, answers[0].Status)
		assert.Equal(t, 3, answers[0].Attempts)
		assert.Equal(t, "third time lucky", answers[0].Response)
	})

	t.Run("drops citations matching no document", func(t *testing.T) {
		t.Parallel()

		index := &mock.CorpusIndex{
			AskFn: func(context.Context, string, string) (*hoabrief.AskResult, error) {
				return &hoabrief.AskResult{
					Text: "answer",
					CitedFiles: []hoabrief.CitedFile{
						{FileID: "file-unknown", Filename: "invented.pdf"},
						{FileID: "file-ccrs", Filename: "ccrs.pdf"},
					},
				}, nil
			},
		}

		var logs []string
		runner := &battery.Runner{
			Index:       index,
			Documents:   registryOf(duesCorpus()),
			RetryDelays: noDelays,
			Log: func(format string, args ...any) {
				logs = append(logs, format)
			},
		}

		answers, err := runner.Run(context.Background(), "corpus-1", "agent-1",
			[]hoabrief.Question{{ID: 1, Text: "question"}}, nil)

		require.NoError(t, err)
		require.Len(t, answers[0].Citations, 1)
		assert.Equal(t, "ccrs.pdf", answers[0].Citations[0].Filename)
		assert.NotEmpty(t, logs, "dropped citation is logged")
	})

	t.Run("flags zero-citation success for review", func(t *testing.T) {
		t.Parallel()

		index := &mock.CorpusIndex{
			AskFn: func(context.Context, string, string) (*hoabrief.AskResult, error) {
				return &hoabrief.AskResult{Text: hoabrief.NoDataResponse}, nil
			},
		}

		runner := &battery.Runner{
			Index:       index,
			Documents:   registryOf(duesCorpus()),
			RetryDelays: noDelays,
		}

		answers, err := runner.Run(context.Background(), "corpus-1", "agent-1",
			[]hoabrief.Question{{ID: 1, Text: "question"}}, nil)

		require.NoError(t, err)
		assert.Equal(t, hoabrief.AnswerSucceeded, answers[0].Status)
		assert.True(t, answers[0].NeedsReview)
		assert.Equal(t, hoabrief.RankUnranked, answers[0].Rank)
	})

	t.Run("dedupes citations of the same document", func(t *testing.T) {
		t.Parallel()

		index := &mock.CorpusIndex{
			AskFn: func(context.Context, string, string) (*hoabrief.AskResult, error) {
				return &hoabrief.AskResult{
					Text: "answer",
					CitedFiles: []hoabrief.CitedFile{
						{FileID: "file-ccrs", Filename: "ccrs.pdf"},
						{FileID: "file-ccrs", Filename: "ccrs.pdf"},
					},
				}, nil
			},
		}

		runner := &battery.Runner{
			Index:       index,
			Documents:   registryOf(duesCorpus()),
			RetryDelays: noDelays,
		}

		answers, err := runner.Run(context.Background(), "corpus-1", "agent-1",
			[]hoabrief.Question{{ID: 1, Text: "question"}}, nil)

		require.NoError(t, err)
		assert.Len(t, answers[0].Citations, 1)
	})

	t.Run("matches citations by filename when file ID is unknown", func(t *testing.T) {
		t.Parallel()

		index := &mock.CorpusIndex{
			AskFn: func(context.Context, string, string) (*hoabrief.AskResult, error) {
				return &hoabrief.AskResult{
					Text: "answer",
					CitedFiles: []hoabrief.CitedFile{
						{FileID: "local:minutes.pdf", Filename: "minutes.pdf"},
					},
				}, nil
			},
		}

		runner := &battery.Runner{
			Index:       index,
			Documents:   registryOf(duesCorpus()),
			RetryDelays: noDelays,
		}

		answers, err := runner.Run(context.Background(), "corpus-1", "agent-1",
			[]hoabrief.Question{{ID: 1, Text: "question"}}, nil)

		require.NoError(t, err)
		require.Len(t, answers[0].Citations, 1)
		assert.Equal(t, "doc-minutes", answers[0].Citations[0].DocumentID)
	})

	t.Run("aborts on context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())

		index := &mock.CorpusIndex{
			AskFn: func(context.Context, string, string) (*hoabrief.AskResult, error) {
				cancel()
				return nil, hoabrief.Errorf(hoabrief.EUNAVAILABLE, "interrupted")
			},
		}

		runner := &battery.Runner{
			Index:       index,
			Documents:   registryOf(duesCorpus()),
			RetryDelays: noDelays,
		}

		questions := []hoabrief.Question{
			{ID: 1, Text: "first"},
			{ID: 2, Text: "second"},
		}

		answers, err := runner.Run(ctx, "corpus-1", "agent-1", questions, nil)

		require.Error(t, err)
		assert.Less(t, len(answers), len(questions), "run stops early")
	})

	t.Run("stops at the rate limiter when canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())

		index := &mock.CorpusIndex{
			AskFn: func(context.Context, string, string) (*hoabrief.AskResult, error) {
				cancel() // cancel between questions
				return &hoabrief.AskResult{Text: "ok"}, nil
			},
		}

		runner := &battery.Runner{
			Index:       index,
			Documents:   registryOf(duesCorpus()),
			Limiter:     rate.NewLimiter(rate.Every(time.Hour), 1),
			RetryDelays: noDelays,
		}

		questions := []hoabrief.Question{
			{ID: 1, Text: "first"},
			{ID: 2, Text: "second"},
		}

		answers, err := runner.Run(ctx, "corpus-1", "agent-1", questions, nil)

		require.Error(t, err)
		assert.Len(t, answers, 1, "first question completed before cancellation")
	})

	t.Run("propagates registry errors", func(t *testing.T) {
		t.Parallel()

		docs := &mock.DocumentService{
			FindDocumentsFn: func(context.Context, hoabrief.DocumentFilter) ([]*hoabrief.Document, error) {
				return nil, hoabrief.Errorf(hoabrief.EINTERNAL, "database error")
			},
		}

		runner := &battery.Runner{
			Index:       &mock.CorpusIndex{},
			Documents:   docs,
			RetryDelays: noDelays,
		}

		_, err := runner.Run(context.Background(), "corpus-1", "agent-1",
			[]hoabrief.Question{{ID: 1, Text: "question"}}, nil)

		require.Error(t, err)
		assert.Equal(t, hoabrief.EINTERNAL, hoabrief.ErrorCode(err))
	})

	t.Run("reports progress events", func(t *testing.T) {
		t.Parallel()

		index := &mock.CorpusIndex{
			AskFn: func(_ context.Context, _, question string) (*hoabrief.AskResult, error) {
				if question == "doomed" {
					return nil, hoabrief.Errorf(hoabrief.EUNAVAILABLE, "backend down")
				}
				return &hoabrief.AskResult{Text: "fine"}, nil
			},
		}

		runner := &battery.Runner{
			Index:       index,
			Documents:   registryOf(duesCorpus()),
			RetryDelays: noDelays,
		}

		var events []battery.ProgressEvent
		progress := func(event battery.ProgressEvent) {
			events = append(events, event)
		}

		questions := []hoabrief.Question{
			{ID: 1, Text: "healthy"},
			{ID: 2, Text: "doomed"},
		}

		_, err := runner.Run(context.Background(), "corpus-1", "agent-1", questions, progress)
		require.NoError(t, err)

		require.Len(t, events, 4)
		assert.Equal(t, battery.ProgressStarted, events[0].Type)
		assert.Equal(t, 2, events[0].Total)
		assert.Equal(t, battery.ProgressCompleted, events[1].Type)
		assert.Equal(t, battery.ProgressFailed, events[2].Type)
		assert.Error(t, events[2].Error)
		assert.Equal(t, battery.ProgressFinished, events[3].Type)
	})
}
