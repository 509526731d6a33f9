package extract

import (
	"archive/zip"
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// extractWordText pulls the paragraph text out of a Word document. A .docx
// file is a zip archive whose main part, word/document.xml, holds one w:p
// element per paragraph with the visible text in nested w:t elements.
// Paragraphs are joined with newlines. Legacy binary .doc files are not zip
// archives and fail here, which the loader treats as a parse failure.
func extractWordText(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open word archive: %w", err)
	}
	defer zr.Close()

	var part *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			part = f
			break
		}
	}
	if part == nil {
		return "", fmt.Errorf("missing word/document.xml part")
	}

	rc, err := part.Open()
	if err != nil {
		return "", fmt.Errorf("open word/document.xml: %w", err)
	}
	defer rc.Close()

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(rc); err != nil {
		return "", fmt.Errorf("parse word/document.xml: %w", err)
	}

	// Tag names are matched without the namespace prefix so documents
	// produced with a non-standard prefix still parse.
	var lines []string
	for _, p := range doc.FindElements("//body//p") {
		var line strings.Builder
		for _, t := range p.FindElements(".//t") {
			line.WriteString(t.Text())
		}
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n"), nil
}
