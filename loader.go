package hoabrief

import "context"

// SourceFile is one input file with its extracted text, ready for
// classification and ingestion.
type SourceFile struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// Loader reads source documents from a local directory.
type Loader interface {
	// Load extracts text from every supported file in dir. Files that
	// cannot be parsed yield a warning and are skipped; one bad file never
	// fails the batch. Returns ENOTFOUND if no file produces any content.
	Load(ctx context.Context, dir string) ([]*SourceFile, error)
}
