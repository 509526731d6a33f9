package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/hoabrief/hoabrief"
	"github.com/hoabrief/hoabrief/battery"
	"github.com/hoabrief/hoabrief/sqlite"
	"golang.org/x/time/rate"
)

// Backend names accepted by the --backend flag.
const (
	backendOpenAI = "openai"
	backendGemini = "gemini"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx          context.Context
	Stdout       io.Writer
	Stderr       io.Writer
	DB           *sqlite.DB
	Corpora      hoabrief.CorpusService
	Documents    hoabrief.DocumentService
	Loader       hoabrief.Loader
	Index        hoabrief.CorpusIndex
	TokenCounter hoabrief.TokenCounter
	Reports      hoabrief.ReportWriter
	Limiter      *rate.Limiter
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Run       RunCmd       `cmd:"" help:"Ingest a document directory and answer the full question battery"`
	Ask       AskCmd       `cmd:"" help:"Ask a single question against an ingested corpus"`
	Docs      DocsCmd      `cmd:"" help:"List ingested documents with category and rank"`
	Ranking   RankingCmd   `cmd:"" help:"Print the effective authority ranking"`
	Questions QuestionsCmd `cmd:"" help:"Print the effective question battery"`
}

// BackendFlags configures the retrieval backend, shared by run and ask.
type BackendFlags struct {
	Backend     string        `help:"Retrieval backend" enum:"openai,gemini" default:"openai" env:"HOABRIEF_BACKEND"`
	Model       string        `help:"Answering model (defaults per backend)" env:"HOABRIEF_MODEL"`
	Corpus      string        `help:"Backend corpus name" default:"HOA DOCUMENT" env:"HOABRIEF_CORPUS"`
	Agent       string        `help:"Answering agent name" default:"HOA Document Analyzer" env:"HOABRIEF_AGENT"`
	Temperature float32       `help:"Agent sampling temperature" default:"0.1" env:"HOABRIEF_TEMPERATURE"`
	Retries     int           `help:"Total attempts per question" default:"3" env:"HOABRIEF_RETRIES"`
	RetryDelay  time.Duration `help:"Delay between retry attempts" default:"5s" env:"HOABRIEF_RETRY_DELAY"`
	Ranking     string        `help:"YAML authority ranking file" env:"HOABRIEF_RANKING"`
	Verbose     bool          `short:"v" help:"Log backend operations to stderr"`
}

// RunCmd is the "run" subcommand.
type RunCmd struct {
	BackendFlags
	Dir         string `arg:"" optional:"" default:"./input/hoa-documents" help:"Directory of HOA documents"`
	Output      string `help:"Report output directory" default:"./output" env:"HOABRIEF_OUTPUT"`
	Questions   string `help:"YAML question battery file" env:"HOABRIEF_QUESTIONS"`
	Concurrency int    `short:"c" default:"4" help:"Concurrent upload limit"`
}

// AskCmd is the "ask" subcommand.
type AskCmd struct {
	BackendFlags
	Question string `arg:"" help:"Question to ask about the corpus"`
}

// DocsCmd is the "docs" subcommand.
type DocsCmd struct {
	Corpus string `help:"Backend corpus name" default:"HOA DOCUMENT" env:"HOABRIEF_CORPUS"`
	Full   bool   `help:"Show extracted document text"`
}

// RankingCmd is the "ranking" subcommand.
type RankingCmd struct {
	File string `help:"YAML authority ranking file" env:"HOABRIEF_RANKING"`
}

// QuestionsCmd is the "questions" subcommand.
type QuestionsCmd struct {
	File string `help:"YAML question battery file" env:"HOABRIEF_QUESTIONS"`
}

// stderrLog adapts the dependencies' stderr writer to the battery log
// signature used for retry and dropped-citation warnings.
func stderrLog(deps *Dependencies) battery.LogFunc {
	return func(format string, args ...any) {
		fmt.Fprintf(deps.Stderr, format+"\n", args...)
	}
}
