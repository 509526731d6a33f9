package openai

import (
	"context"

	"github.com/hoabrief/hoabrief"
	"github.com/sashabaranov/go-openai"
)

// EnsureAgent returns the ID of the assistant with the given name, bound
// to the vector store. An existing assistant is rebound in place so its
// instructions and temperature always reflect the current run.
func (i *Index) EnsureAgent(ctx context.Context, name, corpusID, instructions string, temperature float32) (string, error) {
	if name == "" {
		return "", hoabrief.Errorf(hoabrief.EINVALID, "agent name required")
	}
	if corpusID == "" {
		return "", hoabrief.Errorf(hoabrief.EINVALID, "corpus ID required")
	}

	req := openai.AssistantRequest{
		Model:        i.model,
		Name:         &name,
		Instructions: &instructions,
		Temperature:  &temperature,
		Tools: []openai.AssistantTool{
			{Type: openai.AssistantToolTypeFileSearch},
		},
		ToolResources: &openai.AssistantToolResource{
			FileSearch: &openai.AssistantToolFileSearch{
				VectorStoreIDs: []string{corpusID},
			},
		},
	}

	existing, err := i.findAssistantByName(ctx, name)
	if err != nil {
		return "", err
	}
	if existing != "" {
		a, err := i.client.ModifyAssistant(ctx, existing, req)
		if err != nil {
			return "", classifyErr(err, "modify assistant")
		}
		return a.ID, nil
	}

	a, err := i.client.CreateAssistant(ctx, req)
	if err != nil {
		return "", classifyErr(err, "create assistant")
	}

	return a.ID, nil
}

func (i *Index) findAssistantByName(ctx context.Context, name string) (string, error) {
	var after *string
	for {
		list, err := i.client.ListAssistants(ctx, nil, nil, after, nil)
		if err != nil {
			return "", classifyErr(err, "list assistants")
		}
		for _, a := range list.Assistants {
			if a.Name != nil && *a.Name == name {
				return a.ID, nil
			}
		}
		if !list.HasMore || list.LastID == nil {
			return "", nil
		}
		after = list.LastID
	}
}

// VerifyAgent confirms the assistant carries the file_search tool and is
// bound to the expected vector store. Answering through a misbound agent
// would produce answers unconnected to the corpus, so any mismatch is
// EMISCONFIGURED.
func (i *Index) VerifyAgent(ctx context.Context, agentID, corpusID string) error {
	a, err := i.client.RetrieveAssistant(ctx, agentID)
	if err != nil {
		if isNotFound(err) {
			return hoabrief.Errorf(hoabrief.EMISCONFIGURED, "assistant %s not found", agentID)
		}
		return classifyErr(err, "retrieve assistant")
	}

	var hasFileSearch bool
	for _, tool := range a.Tools {
		if tool.Type == openai.AssistantToolTypeFileSearch {
			hasFileSearch = true
			break
		}
	}
	if !hasFileSearch {
		return hoabrief.Errorf(hoabrief.EMISCONFIGURED, "assistant %s is missing the file_search tool", agentID)
	}

	if a.ToolResources == nil || a.ToolResources.FileSearch == nil {
		return hoabrief.Errorf(hoabrief.EMISCONFIGURED, "assistant %s has no vector store binding", agentID)
	}
	for _, id := range a.ToolResources.FileSearch.VectorStoreIDs {
		if id == corpusID {
			return nil
		}
	}

	return hoabrief.Errorf(hoabrief.EMISCONFIGURED, "assistant %s is not bound to vector store %s", agentID, corpusID)
}
