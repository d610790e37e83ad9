package parsers

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verity-labs/askdoc/internal/core/domain"
)

// fakeParser is a scripted parsing strategy.
type fakeParser struct {
	name     string
	segments []domain.Segment
	err      error
	calls    int
}

func (f *fakeParser) Name() string { return f.name }

func (f *fakeParser) Parse(_ context.Context, _ string) ([]domain.Segment, error) {
	f.calls++
	return f.segments, f.err
}

func TestChain(t *testing.T) {
	ctx := context.Background()

	t.Run("first success wins", func(t *testing.T) {
		first := &fakeParser{name: "a", segments: []domain.Segment{{Page: 1, Text: "hello"}}}
		second := &fakeParser{name: "b"}

		segments, err := Chain(first, second).Parse(ctx, "doc.pdf")
		require.NoError(t, err)
		assert.Len(t, segments, 1)
		assert.Zero(t, second.calls)
	})

	t.Run("failure falls through silently", func(t *testing.T) {
		first := &fakeParser{name: "a", err: errors.New("boom")}
		second := &fakeParser{name: "b", segments: []domain.Segment{{Page: 1, Text: "rescued"}}}

		segments, err := Chain(first, second).Parse(ctx, "doc.pdf")
		require.NoError(t, err)
		assert.Equal(t, "rescued", segments[0].Text)
	})

	t.Run("zero segments fall through", func(t *testing.T) {
		first := &fakeParser{name: "a"}
		second := &fakeParser{name: "b", segments: []domain.Segment{{Page: 1, Text: "rescued"}}}

		segments, err := Chain(first, second).Parse(ctx, "doc.pdf")
		require.NoError(t, err)
		assert.Equal(t, "rescued", segments[0].Text)
		assert.Equal(t, 1, first.calls)
	})

	t.Run("all failures surface the last error", func(t *testing.T) {
		first := &fakeParser{name: "a", err: errors.New("first")}
		second := &fakeParser{name: "b", err: errors.New("second")}

		_, err := Chain(first, second).Parse(ctx, "doc.pdf")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "second")
	})

	t.Run("readable but empty document is not an error", func(t *testing.T) {
		only := &fakeParser{name: "a"}

		segments, err := Chain(only).Parse(ctx, "doc.pdf")
		assert.NoError(t, err)
		assert.Empty(t, segments)
	})

	t.Run("name joins strategies", func(t *testing.T) {
		c := Chain(&fakeParser{name: "a"}, &fakeParser{name: "b"})
		assert.Equal(t, "a>b", c.Name())
	})
}

func TestRegistry(t *testing.T) {
	ctx := context.Background()

	t.Run("text files parse as a single unpaginated segment", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "notes.txt")
		require.NoError(t, os.WriteFile(path, []byte("Some notes. More notes."), 0600))

		segments, err := New().Parse(ctx, path)
		require.NoError(t, err)
		require.Len(t, segments, 1)
		assert.Equal(t, 0, segments[0].Page)
		assert.Equal(t, "Some notes. More notes.", segments[0].Text)
	})

	t.Run("missing file fails as unreadable", func(t *testing.T) {
		_, err := New().Parse(ctx, filepath.Join(t.TempDir(), "missing.txt"))
		assert.ErrorIs(t, err, domain.ErrUnreadableDocument)
	})

	t.Run("garbage pdf fails as unreadable", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.pdf")
		require.NoError(t, os.WriteFile(path, []byte("not a pdf at all"), 0600))

		_, err := New().Parse(ctx, path)
		assert.ErrorIs(t, err, domain.ErrUnreadableDocument)
	})

	t.Run("empty text file yields nothing", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.txt")
		require.NoError(t, os.WriteFile(path, nil, 0600))

		segments, err := New().Parse(ctx, path)
		assert.NoError(t, err)
		assert.Empty(t, segments)
	})

	t.Run("pdf chain prefers structured then baseline", func(t *testing.T) {
		parsers := New().chainFor("doc.PDF")
		require.Len(t, parsers, 2)
		assert.Equal(t, "pdf-paragraphs", parsers[0].Name())
		assert.Equal(t, "pdf-pages", parsers[1].Name())
	})

	t.Run("structured path can be disabled", func(t *testing.T) {
		parsers := New(WithStructured(false)).chainFor("doc.pdf")
		require.Len(t, parsers, 1)
		assert.Equal(t, "pdf-pages", parsers[0].Name())
	})
}
