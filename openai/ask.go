package openai

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hoabrief/hoabrief"
	"github.com/patrickmn/go-cache"
	"github.com/sashabaranov/go-openai"
)

// Ask runs a single question through the assistant on a fresh thread and
// returns the answer text with the files its annotations cite.
func (i *Index) Ask(ctx context.Context, agentID, question string) (*hoabrief.AskResult, error) {
	if agentID == "" {
		return nil, hoabrief.Errorf(hoabrief.EINVALID, "agent ID required")
	}
	if question == "" {
		return nil, hoabrief.Errorf(hoabrief.EINVALID, "question required")
	}

	run, err := i.client.CreateThreadAndRun(ctx, openai.CreateThreadAndRunRequest{
		RunRequest: openai.RunRequest{AssistantID: agentID},
		Thread: openai.ThreadRequest{
			Messages: []openai.ThreadMessage{
				{Role: openai.ThreadMessageRoleUser, Content: question},
			},
		},
	})
	if err != nil {
		return nil, classifyErr(err, "start run")
	}

	if err := i.awaitRun(ctx, run.ThreadID, run.ID); err != nil {
		return nil, err
	}

	return i.collectAnswer(ctx, run.ThreadID, run.ID)
}

// awaitRun polls until the run reaches a terminal status.
func (i *Index) awaitRun(ctx context.Context, threadID, runID string) error {
	ticker := time.NewTicker(i.poll)
	defer ticker.Stop()

	for {
		run, err := i.client.RetrieveRun(ctx, threadID, runID)
		if err != nil {
			return classifyErr(err, "retrieve run")
		}

		switch run.Status {
		case openai.RunStatusCompleted:
			return nil
		case openai.RunStatusFailed, openai.RunStatusCancelled, openai.RunStatusExpired, openai.RunStatusIncomplete:
			msg := string(run.Status)
			if run.LastError != nil {
				msg = run.LastError.Message
			}
			return hoabrief.Errorf(hoabrief.EUNAVAILABLE, "run %s: %s", run.ID, msg)
		case openai.RunStatusRequiresAction:
			// No function tools are registered, so a run should never park here.
			return hoabrief.Errorf(hoabrief.EINTERNAL, "run %s requires action", run.ID)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// collectAnswer reads the assistant messages the run produced and decodes
// their file-citation annotations.
func (i *Index) collectAnswer(ctx context.Context, threadID, runID string) (*hoabrief.AskResult, error) {
	msgs, err := i.client.ListMessage(ctx, threadID, nil, nil, nil, nil, &runID)
	if err != nil {
		return nil, classifyErr(err, "list messages")
	}

	result := &hoabrief.AskResult{}
	seen := make(map[string]bool)

	for _, msg := range msgs.Messages {
		if msg.Role != string(openai.ThreadMessageRoleAssistant) {
			continue
		}
		for _, part := range msg.Content {
			if part.Text == nil {
				continue
			}
			if result.Text != "" {
				result.Text += "\n"
			}
			result.Text += part.Text.Value

			for _, raw := range part.Text.Annotations {
				fileID := citedFileID(raw)
				if fileID == "" || seen[fileID] {
					continue
				}
				seen[fileID] = true

				filename, err := i.filename(ctx, fileID)
				if err != nil {
					return nil, err
				}
				result.CitedFiles = append(result.CitedFiles, hoabrief.CitedFile{
					FileID:   fileID,
					Filename: filename,
				})
			}
		}
	}

	if result.Text == "" {
		return nil, hoabrief.Errorf(hoabrief.EINTERNAL, "run %s produced no assistant message", runID)
	}

	return result, nil
}

// annotation is the file_citation subset of the message annotation object.
// The client surfaces annotations as untyped JSON, so each one is
// re-marshaled into this shape.
type annotation struct {
	Type         string `json:"type"`
	FileCitation struct {
		FileID string `json:"file_id"`
	} `json:"file_citation"`
}

func citedFileID(raw any) string {
	b, err := json.Marshal(raw)
	if err != nil {
		return ""
	}
	var a annotation
	if err := json.Unmarshal(b, &a); err != nil {
		return ""
	}
	if a.Type != "file_citation" {
		return ""
	}
	return a.FileCitation.FileID
}

// filename resolves a backend file ID to its original filename, caching
// lookups for the lifetime of the run.
func (i *Index) filename(ctx context.Context, fileID string) (string, error) {
	if name, ok := i.filenames.Get(fileID); ok {
		return name.(string), nil
	}

	file, err := i.client.GetFile(ctx, fileID)
	if err != nil {
		return "", classifyErr(err, "retrieve file")
	}

	i.filenames.Set(fileID, file.FileName, cache.DefaultExpiration)

	return file.FileName, nil
}
