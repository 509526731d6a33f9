package hoabrief

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// Question is one entry in the battery: the fixed, ordered list of
// questions answered on every run.
type Question struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// ParseBattery parses a YAML question list. IDs are assigned from
// position, starting at 1.
func ParseBattery(data []byte) ([]Question, error) {
	var doc struct {
		Questions []string `yaml:"questions"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, Errorf(EINVALID, "parse questions: %v", err)
	}
	if len(doc.Questions) == 0 {
		return nil, Errorf(EINVALID, "questions file contains no questions")
	}
	battery := make([]Question, 0, len(doc.Questions))
	for i, text := range doc.Questions {
		if strings.TrimSpace(text) == "" {
			return nil, Errorf(EINVALID, "question %d is empty", i+1)
		}
		battery = append(battery, Question{ID: i + 1, Text: text})
	}
	return battery, nil
}

// DefaultBattery returns the standard HOA due-diligence battery. Each
// question restates the source-priority rule so the agent applies the
// authority ranking even when answering a single question in isolation.
func DefaultBattery() []Question {
	texts := []string{
		"What is the official name of the homeowners association as indicated in the documents? (If multiple sources mention the name, use the information from the highest-ranked document.)",
		"What details are provided about the monthly dues (amounts, payment schedule, and any related conditions)? (Prioritize details from the highest-ranking file available, and note if the dues are aggregate or per property.)",
		"What information is available regarding fee increases and special assessments, including any criteria, frequency, or conditions under which they occur? (Reference the highest-priority document if multiple files address these topics.)",
		"How is the overall financial health of the HOA described, including any metrics, ratings, or commentary on fiscal stability? (Use details from the document highest in the ranking order when available.)",
		"What details are offered about the reserve fund (such as its balance, purpose, and allocation policies)? (If several documents provide this information, select details from the top-ranked source.)",
		"How is the HOA budget allocated among various expense categories, and what insights or breakdowns are provided? (Use the highest-authority source available.)",
		"What does the documentation reveal about the reputation of the management team (including performance, responsiveness, or community feedback)? (Reference the highest-priority document when multiple documents mention management reputation.)",
		"What issues or complaints have been documented, and what information is provided on how they were handled or resolved? (If details come from various sources, follow the ranking order to determine the authoritative source.)",
		"What specific rules and restrictions govern the community, and how are these policies structured or enforced? (Use the highest-ranked document addressing rules and restrictions.)",
		"What policies are in place regarding pets (e.g., permitted types, restrictions, approval processes, or limits)? (If multiple documents include pet policies, prioritize according to the given ranking order.)",
		"What information is provided about short-term rental policies, including any limitations or guidelines? (Refer to the highest-authority document if several files discuss this topic.)",
		"What details are included regarding capital improvements (such as planned projects, recent upgrades, or funding for improvements)? (Prioritize information from the document highest in the provided list.)",
		"How are the community amenities and overall property condition described in the documents? (Use the details from the top-ranked document available on amenities and conditions.)",
		"What information is available on the HOA's governance practices and transparency, including decision-making processes and access to records? (If multiple documents offer insights, choose the details from the highest-authority file.)",
		"What enforcement measures and fine structures are documented for policy violations, and what are the associated procedures? (When conflicting information exists, refer to the highest-priority source such as Fine Schedule or Assessment Enforcement.)",
		"How does the HOA address routine maintenance and emergency situations, including any protocols or response plans? (Use the highest-ranked document that discusses maintenance and emergencies.)",
		"What processes are outlined for resolving disputes among residents or between residents and management? (If details are provided in several documents, prioritize using the ranking order.)",
		"What details are provided on insurance policies and service coverage, including scope, limitations, and any notable exclusions? (Use the highest-authority document among those addressing insurance, e.g., Insurance & Evidence of Insurance (COI) or Flood & General Liability Insurance.)",
		"What legal or regulatory issues have been identified, and how does the HOA address or mitigate these challenges? (Prioritize details from the highest-ranked document that discusses legal or regulatory matters.)",
		"What evidence or information is provided about resident engagement, involvement, or feedback within the community? (If multiple sources offer information on resident engagement, use the details from the highest-ranked document.)",
	}
	battery := make([]Question, 0, len(texts))
	for i, text := range texts {
		battery = append(battery, Question{ID: i + 1, Text: text})
	}
	return battery
}
