// Package fs writes battery reports as markdown files.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hoabrief/hoabrief"
)

// Ensure Writer implements hoabrief.ReportWriter at compile time.
var _ hoabrief.ReportWriter = (*Writer)(nil)

// Writer writes reports as markdown files to a directory. Every run
// produces one new timestamped artifact; prior artifacts are never touched.
type Writer struct {
	baseDir string
}

// NewWriter creates a new Writer that writes to the given base directory.
func NewWriter(baseDir string) *Writer {
	return &Writer{baseDir: baseDir}
}

// WriteReport renders the report and writes it to disk. The artifact is
// assembled in a temp file and renamed into place, so an interrupted run
// never leaves a partial report behind. Returns the path of the artifact.
func (w *Writer) WriteReport(ctx context.Context, report *hoabrief.Report) (string, error) {
	if err := os.MkdirAll(w.baseDir, 0755); err != nil {
		return "", err
	}

	finalPath := filepath.Join(w.baseDir, ReportFilename(report.GeneratedAt))
	tempPath := finalPath + ".tmp"

	content := FormatReport(report)
	if err := os.WriteFile(tempPath, []byte(content), 0644); err != nil {
		return "", err
	}
	if err := os.Rename(tempPath, finalPath); err != nil {
		_ = os.Remove(tempPath)
		return "", err
	}

	return finalPath, nil
}

// ReportFilename derives the artifact name from the generation time.
// Example: hoa-brief-20250114-153045.md
func ReportFilename(generatedAt time.Time) string {
	return "hoa-brief-" + generatedAt.Format("20060102-150405") + ".md"
}

// FormatReport renders a report as markdown with YAML frontmatter, the
// document inventory in authority order, and one section per question in
// battery order. Failed questions appear with an explicit marker rather
// than being dropped.
func FormatReport(report *hoabrief.Report) string {
	var b strings.Builder

	b.WriteString("---\n")
	b.WriteString("corpus: ")
	b.WriteString(report.Corpus)
	b.WriteString("\nbackend: ")
	b.WriteString(report.Backend)
	b.WriteString("\ngenerated: ")
	b.WriteString(report.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "\ndocuments: %d", len(report.Documents))
	fmt.Fprintf(&b, "\nanswered: %d", report.Answered())
	fmt.Fprintf(&b, "\nfailed: %d", report.Failed())
	b.WriteString("\n---\n\n")

	fmt.Fprintf(&b, "# HOA Brief: %s\n\n", report.Corpus)

	b.WriteString("## Document Inventory\n\n")
	if len(report.Documents) == 0 {
		b.WriteString("No documents.\n\n")
	} else {
		b.WriteString("| Rank | Category | Filename |\n")
		b.WriteString("| ---- | -------- | -------- |\n")
		for _, doc := range report.Documents {
			fmt.Fprintf(&b, "| %d | %s | %s |\n", doc.Rank, doc.Category, doc.Filename)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Answers\n\n")
	for _, a := range report.Answers {
		fmt.Fprintf(&b, "### %d. %s\n\n", a.QuestionID, a.Question)

		if a.Status == hoabrief.AnswerFailed {
			fmt.Fprintf(&b, "_No answer after %d attempts: %s_\n\n", a.Attempts, a.Err)
			continue
		}

		b.WriteString(a.Response)
		b.WriteString("\n\n")

		if len(a.Citations) == 0 {
			b.WriteString("_No citations; needs review._\n\n")
			continue
		}

		b.WriteString("Sources:\n\n")
		for _, c := range a.Citations {
			fmt.Fprintf(&b, "- %s (%s, rank %d)\n", c.Filename, c.Category, c.Rank)
		}
		b.WriteString("\n")
	}

	return b.String()
}
