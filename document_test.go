package hoabrief_test

import (
	"testing"

	"github.com/hoabrief/hoabrief"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_Validate(t *testing.T) {
	t.Parallel()

	t.Run("accepts valid document", func(t *testing.T) {
		t.Parallel()

		doc := &hoabrief.Document{
			CorpusID: "corpus-1",
			Filename: "ccrs.pdf",
			Category: "CC&Rs",
			Rank:     2,
		}

		require.NoError(t, doc.Validate())
	})

	t.Run("requires corpus ID", func(t *testing.T) {
		t.Parallel()

		doc := &hoabrief.Document{Filename: "ccrs.pdf"}

		err := doc.Validate()
		require.Error(t, err)
		assert.Equal(t, hoabrief.EINVALID, hoabrief.ErrorCode(err))
	})

	t.Run("requires filename", func(t *testing.T) {
		t.Parallel()

		doc := &hoabrief.Document{CorpusID: "corpus-1"}

		err := doc.Validate()
		require.Error(t, err)
		assert.Equal(t, hoabrief.EINVALID, hoabrief.ErrorCode(err))
	})

	t.Run("rejects negative rank", func(t *testing.T) {
		t.Parallel()

		doc := &hoabrief.Document{CorpusID: "corpus-1", Filename: "ccrs.pdf", Rank: -1}

		err := doc.Validate()
		require.Error(t, err)
		assert.Equal(t, hoabrief.EINVALID, hoabrief.ErrorCode(err))
	})
}

func TestHashContent(t *testing.T) {
	t.Parallel()

	t.Run("is deterministic", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, hoabrief.HashContent("dues are $250"), hoabrief.HashContent("dues are $250"))
	})

	t.Run("differs for different content", func(t *testing.T) {
		t.Parallel()

		assert.NotEqual(t, hoabrief.HashContent("v1"), hoabrief.HashContent("v2"))
	})

	t.Run("is fixed width", func(t *testing.T) {
		t.Parallel()

		assert.Len(t, hoabrief.HashContent(""), 16)
		assert.Len(t, hoabrief.HashContent("long content with many words"), 16)
	})
}

func TestCorpus_Validate(t *testing.T) {
	t.Parallel()

	t.Run("accepts valid corpus", func(t *testing.T) {
		t.Parallel()

		corpus := &hoabrief.Corpus{Name: "HOA Documents"}

		require.NoError(t, corpus.Validate())
	})

	t.Run("requires name", func(t *testing.T) {
		t.Parallel()

		corpus := &hoabrief.Corpus{}

		err := corpus.Validate()
		require.Error(t, err)
		assert.Equal(t, hoabrief.EINVALID, hoabrief.ErrorCode(err))
	})
}
