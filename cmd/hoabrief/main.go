package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	"github.com/hoabrief/hoabrief"
	"github.com/hoabrief/hoabrief/extract"
	"github.com/hoabrief/hoabrief/fs"
	"github.com/hoabrief/hoabrief/gemini"
	hbopenai "github.com/hoabrief/hoabrief/openai"
	hbslog "github.com/hoabrief/hoabrief/slog"
	"github.com/hoabrief/hoabrief/sqlite"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Registry database path. Set before calling Run().
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing.
	CorpusService   hoabrief.CorpusService
	DocumentService hoabrief.DocumentService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Initialize dependencies struct for Kong binding
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	// Create Kong parser with dependency binding
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("hoabrief"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle help flags using Kong
	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'hoabrief --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	// Parse arguments first to know which command and its flags
	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Open the registry database
	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set HOABRIEF_DB to use a different registry path\n")
		return fmt.Errorf("failed to open registry at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	// Wire core services into dependencies
	m.CorpusService = sqlite.NewCorpusService(m.DB)
	m.DocumentService = sqlite.NewDocumentService(m.DB)
	deps.DB = m.DB
	deps.Corpora = m.CorpusService
	deps.Documents = m.DocumentService

	// Wire command-specific dependencies based on command
	if cmd == "run" {
		deps.Loader = extract.NewDirLoader(func(format string, logArgs ...any) {
			fmt.Fprintf(stderr, format+"\n", logArgs...)
		})

		tokenCounter, err := gemini.NewTokenCounter(tokenizerModel)
		if err != nil {
			return fmt.Errorf("failed to create token counter: %w", err)
		}
		deps.TokenCounter = tokenCounter

		deps.Reports = fs.NewWriter(cli.Run.Output)
		deps.Limiter = rate.NewLimiter(rate.Every(questionInterval), 1)

		index, err := m.newIndex(ctx, cli.Run.BackendFlags, stderr)
		if err != nil {
			return err
		}
		deps.Index = index
	}

	if cmd == "ask" {
		index, err := m.newIndex(ctx, cli.Ask.BackendFlags, stderr)
		if err != nil {
			return err
		}
		deps.Index = index
	}

	return kongCtx.Run(deps)
}

// tokenizerModel is used for corpus token counting.
const tokenizerModel = "gemini-2.5-flash"

// questionInterval paces questions against the backend.
const questionInterval = time.Second

// newIndex builds the corpus index for the selected backend, wrapped in a
// logging decorator when verbose output is requested.
func (m *Main) newIndex(ctx context.Context, flags BackendFlags, stderr io.Writer) (hoabrief.CorpusIndex, error) {
	var index hoabrief.CorpusIndex

	switch flags.Backend {
	case backendGemini:
		apiKey := os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			fmt.Fprintln(stderr, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
			return nil, fmt.Errorf("GEMINI_API_KEY not set. Get a key at https://aistudio.google.com/apikey")
		}
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
			return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
		}
		var opts []gemini.Option
		if flags.Model != "" {
			opts = append(opts, gemini.WithModel(flags.Model))
		}
		index = gemini.NewIndex(client, m.CorpusService, m.DocumentService, opts...)

	case backendOpenAI:
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			fmt.Fprintln(stderr, "OPENAI_API_KEY environment variable not set. Get an API key at https://platform.openai.com/api-keys")
			return nil, fmt.Errorf("OPENAI_API_KEY not set. Get a key at https://platform.openai.com/api-keys")
		}
		var opts []hbopenai.Option
		if flags.Model != "" {
			opts = append(opts, hbopenai.WithModel(flags.Model))
		}
		index = hbopenai.NewIndex(openai.NewClient(apiKey), opts...)

	default:
		// Kong's enum constraint keeps us on the two known backends.
		return nil, hoabrief.Errorf(hoabrief.EINVALID, "unknown backend %q", flags.Backend)
	}

	if flags.Verbose {
		logger := slog.New(slog.NewTextHandler(stderr, nil))
		index = hbslog.NewLoggingCorpusIndex(index, logger)
	}

	return index, nil
}

func defaultDBPath() string {
	if path := os.Getenv("HOABRIEF_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "hoabrief.db"
	}
	dir := filepath.Join(home, ".hoabrief")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "hoabrief.db")
}
