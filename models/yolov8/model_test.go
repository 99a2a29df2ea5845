package yolov8

import (
	"testing"

	"github.com/nvr-ai/go-detect/models"
	"github.com/nvr-ai/go-detect/models/model"
	"github.com/nvr-ai/go-detect/models/postprocess"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func testConfig(numClasses, candidates int) model.Config {
	cfg := model.DefaultConfig()
	cfg.NumClasses = numClasses
	cfg.Candidates = candidates
	return cfg
}

func TestPostProcess_EndToEnd(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	m, err := NewModel(NewModelArgs{
		Config:  testConfig(3, 4),
		Classes: threeClasses,
		Logger:  zap.New(core),
	})
	require.NoError(t, err)

	out := buildOutput(t, 640, 3, 4, false,
		candidate{cx: 36, cy: 36, w: 48, h: 48, class: 0, score: 0.7},
		candidate{cx: 215, cy: 215, w: 30, h: 30, class: 2, score: 0.6},
		candidate{cx: 35, cy: 35, w: 50, h: 50, class: 0, score: 0.9},
	)

	dets, err := m.PostProcess(out, 640, 640)
	require.NoError(t, err)
	assert.Equal(t, []postprocess.Detection{
		{Box: postprocess.BoundingBox{X: 10, Y: 10, Width: 50, Height: 50}, Confidence: 0.9, ClassID: 0},
		{Box: postprocess.BoundingBox{X: 200, Y: 200, Width: 30, Height: 30}, Confidence: 0.6, ClassID: 2},
	}, dets)

	assert.Equal(t, "person", m.Label(dets[0]))
	assert.Equal(t, "car", m.Label(dets[1]))

	entries := logs.FilterMessage("postprocessed output").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, int64(3), fields["beforeNMS"])
	assert.Equal(t, int64(2), fields["afterNMS"])
	assert.Equal(t, "yolov8", fields["model"])
}

func TestPostProcess_ClassAware(t *testing.T) {
	cfg := testConfig(3, 2)
	cfg.ClassAware = true
	m, err := NewModel(NewModelArgs{Config: cfg, Classes: threeClasses})
	require.NoError(t, err)

	out := buildOutput(t, 640, 3, 2, false,
		candidate{cx: 100, cy: 100, w: 50, h: 50, class: 0, score: 0.9},
		candidate{cx: 101, cy: 101, w: 50, h: 50, class: 1, score: 0.8},
	)

	dets, err := m.PostProcess(out, 640, 640)
	require.NoError(t, err)
	assert.Len(t, dets, 2)
}

func TestPostProcess_ShapeError(t *testing.T) {
	m, err := NewModel(NewModelArgs{Config: model.DefaultConfig()})
	require.NoError(t, err)
	assert.Equal(t, models.YOLOClasses, m.Classes())

	dets, err := m.PostProcess(rawTensor{dims: []int{1, 90, 8400}, values: make([]float32, 90*8400)}, 640, 640)
	assert.Nil(t, dets)

	var shapeErr *ShapeError
	require.True(t, errors.As(err, &shapeErr))
	assert.Equal(t, []int{1, 90, 8400}, shapeErr.Dims)
}

func TestPostProcess_WarnsOnClassTableMismatch(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	m, err := NewModel(NewModelArgs{
		Config:  testConfig(3, 1),
		Classes: models.ClassTable{"person"},
		Logger:  zap.New(core),
	})
	require.NoError(t, err)

	out := buildOutput(t, 640, 3, 1, false, candidate{cx: 100, cy: 100, w: 20, h: 20, class: 2, score: 0.9})
	dets, err := m.PostProcess(out, 640, 640)
	require.NoError(t, err)
	assert.Empty(t, dets)
	assert.Equal(t, 1, logs.Len())
	assert.Equal(t, "unknown", m.Label(postprocess.Detection{ClassID: 2}))
}

func TestNewModel_InvalidConfig(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.InputSize = 0

	_, err := NewModel(NewModelArgs{Config: cfg})
	assert.Error(t, err)
}
