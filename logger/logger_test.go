package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSet(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	Set(zap.New(core))
	t.Cleanup(func() { Set(zap.NewNop()) })

	Log().Info("decoded", zap.Int("emitted", 3))
	S().Infow("suppressed", "kept", 2)
	Log().Debug("hidden")

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, "decoded", entries[0].Message)
		assert.Equal(t, int64(3), entries[0].ContextMap()["emitted"])
		assert.Equal(t, "suppressed", entries[1].Message)
	}
	assert.Same(t, zap.L(), Log())
}

func TestInitDevelopment(t *testing.T) {
	assert.NoError(t, InitDevelopment())
	t.Cleanup(func() { Set(zap.NewNop()) })
	assert.NotNil(t, Log())
	Sync()
}
