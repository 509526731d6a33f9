package extract_test

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hoabrief/hoabrief"
	"github.com/hoabrief/hoabrief/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

// writeDocx writes a minimal Word archive with one w:t run per paragraph.
func writeDocx(t *testing.T, dir, name string, paragraphs ...string) {
	t.Helper()

	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	sb.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		sb.WriteString(`<w:p><w:r><w:t>`)
		sb.WriteString(p)
		sb.WriteString(`</w:t></w:r></w:p>`)
	}
	sb.WriteString(`</w:body></w:document>`)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(sb.String()))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	require.NoError(t, os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0644))
}

func TestDirLoader_Load(t *testing.T) {
	t.Parallel()

	t.Run("loads plain text and markdown", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFile(t, dir, "bylaws.txt", "BYLAWS OF SUNSET RIDGE HOA")
		writeFile(t, dir, "minutes.md", "# Meeting Minutes\n\nDues discussed.")

		loader := extract.NewDirLoader(nil)
		files, err := loader.Load(context.Background(), dir)

		require.NoError(t, err)
		require.Len(t, files, 2)

		byName := make(map[string]string, len(files))
		for _, f := range files {
			byName[f.Filename] = f.Content
		}
		assert.Equal(t, "BYLAWS OF SUNSET RIDGE HOA", byName["bylaws.txt"])
		assert.Contains(t, byName["minutes.md"], "Dues discussed.")
	})

	t.Run("extracts word paragraphs", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeDocx(t, dir, "ccrs.docx", "DECLARATION OF COVENANTS", "Monthly dues are $250.")

		loader := extract.NewDirLoader(nil)
		files, err := loader.Load(context.Background(), dir)

		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.Equal(t, "ccrs.docx", files[0].Filename)
		assert.Equal(t, "DECLARATION OF COVENANTS\nMonthly dues are $250.", files[0].Content)
	})

	t.Run("ignores temp marker files and unsupported extensions", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFile(t, dir, "bylaws.txt", "bylaws")
		writeFile(t, dir, "~$bylaws.txt", "editor lock file")
		writeFile(t, dir, "photo.jpg", "not a document")
		require.NoError(t, os.Mkdir(filepath.Join(dir, "archive"), 0755))

		loader := extract.NewDirLoader(nil)
		files, err := loader.Load(context.Background(), dir)

		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.Equal(t, "bylaws.txt", files[0].Filename)
	})

	t.Run("skips unparseable file and keeps the rest", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFile(t, dir, "bylaws.txt", "bylaws")
		// Not a zip archive, so the word extractor fails on it.
		writeFile(t, dir, "legacy.doc", "binary word format")

		var warnings []string
		loader := extract.NewDirLoader(func(format string, args ...any) {
			warnings = append(warnings, fmt.Sprintf(format, args...))
		})
		files, err := loader.Load(context.Background(), dir)

		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.Equal(t, "bylaws.txt", files[0].Filename)
		require.Len(t, warnings, 1)
		assert.Contains(t, warnings[0], "legacy.doc")
	})

	t.Run("skips file with no extractable text", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFile(t, dir, "bylaws.txt", "bylaws")
		writeFile(t, dir, "blank.txt", "   \n\t\n")

		var warnings []string
		loader := extract.NewDirLoader(func(format string, args ...any) {
			warnings = append(warnings, fmt.Sprintf(format, args...))
		})
		files, err := loader.Load(context.Background(), dir)

		require.NoError(t, err)
		require.Len(t, files, 1)
		require.Len(t, warnings, 1)
		assert.Contains(t, warnings[0], "no extractable text")
	})

	t.Run("returns ENOTFOUND when nothing parses", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFile(t, dir, "broken.pdf", "not really a pdf")

		loader := extract.NewDirLoader(nil)
		_, err := loader.Load(context.Background(), dir)

		require.Error(t, err)
		assert.Equal(t, hoabrief.ENOTFOUND, hoabrief.ErrorCode(err))
	})

	t.Run("returns ENOTFOUND for empty directory", func(t *testing.T) {
		t.Parallel()

		loader := extract.NewDirLoader(nil)
		_, err := loader.Load(context.Background(), t.TempDir())

		require.Error(t, err)
		assert.Equal(t, hoabrief.ENOTFOUND, hoabrief.ErrorCode(err))
	})

	t.Run("returns EINVALID for missing directory", func(t *testing.T) {
		t.Parallel()

		loader := extract.NewDirLoader(nil)
		_, err := loader.Load(context.Background(), filepath.Join(t.TempDir(), "nope"))

		require.Error(t, err)
		assert.Equal(t, hoabrief.EINVALID, hoabrief.ErrorCode(err))
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFile(t, dir, "bylaws.txt", "bylaws")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		loader := extract.NewDirLoader(nil)
		_, err := loader.Load(ctx, dir)

		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestDirLoader_Load_WordWithoutDocumentPart(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	// A valid zip archive that is missing word/document.xml.
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("docProps/core.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte("<core/>"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "odd.docx"), buf.Bytes(), 0644))

	var warnings []string
	loader := extract.NewDirLoader(func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	})
	_, err = loader.Load(context.Background(), dir)

	require.Error(t, err)
	assert.Equal(t, hoabrief.ENOTFOUND, hoabrief.ErrorCode(err))
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "word/document.xml")
}
