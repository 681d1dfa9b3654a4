package topic

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/KevinKickass/OpenDACCore/internal/host"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_WriteRead(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore([]string{t.TempDir()})
	require.NoError(t, err)

	require.NoError(t, store.WriteTopic(ctx, "ch1.json", `{"max_voltage": 5}`))
	content, err := store.ReadTopic(ctx, "ch1.json")
	require.NoError(t, err)
	assert.Equal(t, `{"max_voltage": 5}`, content)

	require.NoError(t, store.WriteTopic(ctx, "ch1.json", `{}`))
	content, err = store.ReadTopic(ctx, "ch1.json")
	require.NoError(t, err)
	assert.Equal(t, `{}`, content)
}

func TestFileStore_Append(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore([]string{t.TempDir()})
	require.NoError(t, err)

	require.NoError(t, store.WriteAppendTopic(ctx, "slow_dac.journal", "a\n"))
	require.NoError(t, store.WriteAppendTopic(ctx, "slow_dac.journal", "b\n"))

	content, err := store.ReadTopic(ctx, "slow_dac.journal")
	require.NoError(t, err)
	assert.Equal(t, "a\nb\n", content)
}

func TestFileStore_SearchPaths(t *testing.T) {
	ctx := context.Background()
	primary, fallback := t.TempDir(), t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(fallback, "ch2.json"), []byte("fallback"), 0o644))

	store, err := NewFileStore([]string{primary, fallback})
	require.NoError(t, err)

	content, err := store.ReadTopic(ctx, "ch2.json")
	require.NoError(t, err)
	assert.Equal(t, "fallback", content)

	require.NoError(t, store.WriteTopic(ctx, "ch2.json", "primary"))
	content, err = store.ReadTopic(ctx, "ch2.json")
	require.NoError(t, err)
	assert.Equal(t, "primary", content)
}

func TestFileStore_Missing(t *testing.T) {
	store, err := NewFileStore([]string{t.TempDir()})
	require.NoError(t, err)

	_, err = store.ReadTopic(context.Background(), "nope.json")
	assert.True(t, errors.Is(err, host.ErrTopicNotFound))
}

func TestFileStore_RejectsEscapingNames(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore([]string{t.TempDir()})
	require.NoError(t, err)

	for _, name := range []string{"", "..", "../etc/passwd", "a/b.json", `a\b.json`} {
		_, err := store.ReadTopic(ctx, name)
		assert.Error(t, err, name)
		assert.Error(t, store.WriteTopic(ctx, name, "x"), name)
	}
}

type failingFile struct {
	writeErr, closeErr error
	closed             bool
}

func (f *failingFile) Write(p []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	return len(p), nil
}

func (f *failingFile) Close() error {
	f.closed = true
	return f.closeErr
}

func TestAppendAndClose(t *testing.T) {
	diskFull := errors.New("no space left on device")

	f := &failingFile{closeErr: diskFull}
	assert.ErrorIs(t, appendAndClose(f, "line\n"), diskFull)
	assert.True(t, f.closed)

	f = &failingFile{writeErr: diskFull, closeErr: errors.New("close")}
	assert.ErrorIs(t, appendAndClose(f, "line\n"), diskFull)
	assert.True(t, f.closed)

	f = &failingFile{}
	assert.NoError(t, appendAndClose(f, "line\n"))
	assert.True(t, f.closed)
}
