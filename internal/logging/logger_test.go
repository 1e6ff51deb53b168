package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestGet_DisabledIsNoop(t *testing.T) {
	require.NoError(t, Initialize(Options{DebugMode: false}))
	t.Cleanup(CloseAll)

	l := Get(CategoryTags)
	assert.NotPanics(t, func() {
		l.Info("ignored %d", 1)
		l.With("k", "v").Error("ignored")
	})
}

func TestGet_DebugModeWritesCategoryFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Initialize(Options{DebugMode: true, Dir: dir, Level: "debug"}))
	t.Cleanup(CloseAll)

	Get(CategoryTags).Info("fetched %d tags", 3)
	Get(CategoryAck).Debug("submitting")
	CloseAll()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	joined := strings.Join(names, ",")
	assert.Contains(t, joined, "_tags.log")
	assert.Contains(t, joined, "_ack.log")
	assert.Contains(t, joined, "_boot.log")

	for _, n := range names {
		if strings.HasSuffix(n, "_tags.log") {
			data, err := os.ReadFile(filepath.Join(dir, n))
			require.NoError(t, err)
			assert.Contains(t, string(data), "fetched 3 tags")
		}
	}
}

func TestIsCategoryEnabled_Filter(t *testing.T) {
	require.NoError(t, Initialize(Options{
		DebugMode:  true,
		Dir:        t.TempDir(),
		Categories: map[string]bool{"ui": false},
	}))
	t.Cleanup(CloseAll)

	assert.False(t, IsCategoryEnabled(CategoryUI))
	assert.True(t, IsCategoryEnabled(CategoryAPI))
}

func TestNew_WrapsZapLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := New(CategoryAPI, zap.New(core))

	l.Warn("status %d", 500)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "status 500", entry.Message)
	assert.Equal(t, "api", entry.ContextMap()["category"])
}
