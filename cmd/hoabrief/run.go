package main

import (
	"fmt"
	"os"
	"time"

	"github.com/hoabrief/hoabrief"
	"github.com/hoabrief/hoabrief/battery"
)

// progressWidth truncates question text in progress lines.
const progressWidth = 64

// geminiTokenBudget approximates the prompt budget of the gemini backend,
// which sends the whole corpus with every question.
const geminiTokenBudget = 1_000_000

// Run executes the run command.
func (c *RunCmd) Run(deps *Dependencies) error {
	ranking, err := loadRanking(c.Ranking)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", hoabrief.ErrorMessage(err))
		return err
	}

	questions, err := loadBattery(c.Questions)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", hoabrief.ErrorMessage(err))
		return err
	}

	backendID, err := deps.Index.EnsureCorpus(deps.Ctx, c.Corpus)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", hoabrief.ErrorMessage(err))
		return err
	}

	corpus, err := ensureRegistryCorpus(deps, c.Corpus, backendID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", hoabrief.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Ingesting %s into corpus %q (%s)\n", c.Dir, c.Corpus, c.Backend)

	ingestor := &battery.Ingestor{
		Loader:       deps.Loader,
		Ranking:      ranking,
		Index:        deps.Index,
		Documents:    deps.Documents,
		TokenCounter: deps.TokenCounter,
		Concurrency:  c.Concurrency,
		Log:          stderrLog(deps),
	}

	ingestProgress := func(event battery.ProgressEvent) {
		switch event.Type {
		case battery.ProgressStarted:
			fmt.Fprintf(deps.Stdout, "  Uploading %d file(s)\n", event.Total)
		case battery.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "  skip %s: %v\n", event.Name, event.Error)
		}
	}

	res, err := ingestor.IngestDirectory(deps.Ctx, corpus.ID, backendID, c.Dir, ingestProgress)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", hoabrief.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "  Ingested %d, unchanged %d, failed %d (%s, %s)\n",
		res.Ingested, res.Unchanged, res.Failed,
		battery.FormatBytes(res.Bytes), battery.FormatTokens(res.Tokens))

	if c.Backend == backendGemini && res.Tokens > geminiTokenBudget {
		fmt.Fprintf(deps.Stderr, "warning: corpus is %s, above the %s prompt budget\n",
			battery.FormatTokens(res.Tokens), battery.FormatTokens(geminiTokenBudget))
	}

	if err := deps.Index.WaitReady(deps.Ctx, backendID); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", hoabrief.ErrorMessage(err))
		return err
	}

	agentID, err := ensureAgent(deps, c.BackendFlags, ranking, corpus, backendID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", hoabrief.ErrorMessage(err))
		return err
	}

	runner := &battery.Runner{
		Index:       deps.Index,
		Documents:   deps.Documents,
		Limiter:     deps.Limiter,
		RetryDelays: battery.RetryDelays(c.Retries, c.RetryDelay),
		Log:         stderrLog(deps),
	}

	batteryProgress := func(event battery.ProgressEvent) {
		switch event.Type {
		case battery.ProgressStarted:
			fmt.Fprintf(deps.Stdout, "Answering %d question(s)\n", event.Total)
		case battery.ProgressCompleted:
			fmt.Fprintf(deps.Stdout, "  [%d/%d] %s\n",
				event.Completed, event.Total, battery.TruncateText(event.Name, progressWidth))
		case battery.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "  [%d/%d] failed: %s: %v\n",
				event.Completed, event.Total, battery.TruncateText(event.Name, progressWidth), event.Error)
		}
	}

	answers, err := runner.Run(deps.Ctx, corpus.ID, agentID, questions, batteryProgress)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", hoabrief.ErrorMessage(err))
		return err
	}

	report := &hoabrief.Report{
		Corpus:      c.Corpus,
		Backend:     c.Backend,
		GeneratedAt: time.Now(),
		Documents:   res.Documents,
		Answers:     answers,
	}

	path, err := deps.Reports.WriteReport(deps.Ctx, report)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", hoabrief.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "  Saved %s (%d answered, %d failed)\n", path, report.Answered(), report.Failed())
	return nil
}

// loadRanking reads the ranking override, or returns the default ranking
// when no file is configured.
func loadRanking(path string) (*hoabrief.Ranking, error) {
	if path == "" {
		return hoabrief.DefaultRanking(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, hoabrief.Errorf(hoabrief.EINVALID, "read ranking file: %v", err)
	}
	return hoabrief.ParseRanking(data)
}

// loadBattery reads the questions override, or returns the default battery
// when no file is configured.
func loadBattery(path string) ([]hoabrief.Question, error) {
	if path == "" {
		return hoabrief.DefaultBattery(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, hoabrief.Errorf(hoabrief.EINVALID, "read questions file: %v", err)
	}
	return hoabrief.ParseBattery(data)
}

// ensureRegistryCorpus finds or creates the registry row tracking the named
// corpus and records the backend ID it currently maps to.
func ensureRegistryCorpus(deps *Dependencies, name, backendID string) (*hoabrief.Corpus, error) {
	found, err := deps.Corpora.FindCorpora(deps.Ctx, hoabrief.CorpusFilter{Name: &name})
	if err != nil {
		return nil, err
	}
	if len(found) > 0 {
		corpus := found[0]
		if corpus.BackendID != backendID {
			return deps.Corpora.UpdateCorpus(deps.Ctx, corpus.ID, hoabrief.CorpusUpdate{BackendID: &backendID})
		}
		return corpus, nil
	}

	corpus := &hoabrief.Corpus{Name: name, BackendID: backendID}
	if err := deps.Corpora.CreateCorpus(deps.Ctx, corpus); err != nil {
		return nil, err
	}
	return corpus, nil
}

// ensureAgent creates or reuses the answering agent, verifies its corpus
// binding, and records its ID on the registry row.
func ensureAgent(deps *Dependencies, flags BackendFlags, ranking *hoabrief.Ranking, corpus *hoabrief.Corpus, backendID string) (string, error) {
	instructions := hoabrief.BuildInstructions(ranking)

	agentID, err := deps.Index.EnsureAgent(deps.Ctx, flags.Agent, backendID, instructions, flags.Temperature)
	if err != nil {
		return "", err
	}
	if err := deps.Index.VerifyAgent(deps.Ctx, agentID, backendID); err != nil {
		return "", err
	}

	if corpus.AgentID != agentID {
		if _, err := deps.Corpora.UpdateCorpus(deps.Ctx, corpus.ID, hoabrief.CorpusUpdate{AgentID: &agentID}); err != nil {
			return "", err
		}
	}
	return agentID, nil
}
