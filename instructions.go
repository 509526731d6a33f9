package hoabrief

import (
	"fmt"
	"strings"
)

// NoDataResponse is the exact phrase the agent is instructed to return when
// the corpus contains nothing relevant to a question.
const NoDataResponse = "No relevant data found in the uploaded documents."

// BuildInstructions renders the system instructions for the answering
// agent: the grounding rules, the authority ranking serialized as a ranked
// list, and the conflict-resolution rule. The payload is built once per run
// and shared by every question in the battery.
func BuildInstructions(ranking *Ranking) string {
	var sb strings.Builder
	sb.WriteString("You are an expert in homeowners-association documents. Accuracy is extremely important.\n")
	sb.WriteString("When answering, always extract information directly from the provided documents.\n")
	sb.WriteString("Return the most relevant sections word-for-word and cite the source document by filename.\n")
	fmt.Fprintf(&sb, "If no relevant information is found, explicitly state: %q\n", NoDataResponse)
	sb.WriteString("Do not answer from general knowledge; use only the retrieved documents.\n")
	sb.WriteString("\nAuthority ranking of document categories (1 is highest priority):\n")
	for i, c := range ranking.Categories {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, c.Name)
	}
	sb.WriteString("\nWhen multiple documents contain relevant information, always prioritize the highest-ranked source.\n")
	sb.WriteString("When sources conflict, prefer the source with the numerically smallest rank.\n")
	sb.WriteString("If a concept has no supporting document, say so explicitly rather than inferring.\n")
	sb.WriteString("Include the source document filenames in your response.\n")
	return sb.String()
}
