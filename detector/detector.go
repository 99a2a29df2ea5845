// Package detector - Runs an inference engine and postprocesses its output per image.
package detector

import (
	"context"
	"image"
	"time"

	"github.com/nvr-ai/go-detect/models/postprocess"
	"github.com/nvr-ai/go-detect/models/yolov8"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Engine produces the raw output tensor for an image. inference.Engine satisfies it.
type Engine interface {
	Infer(ctx context.Context, img image.Image) (yolov8.Tensor, error)
}

// Object is a detection with its resolved class name.
type Object struct {
	postprocess.Detection
	Label string `json:"label"`
}

// Result is the outcome of one Detect call.
type Result struct {
	// Width of the source image.
	Width int `json:"width"`
	// Height of the source image.
	Height int `json:"height"`
	// BeforeNMS is the number of detections that passed the confidence filter.
	BeforeNMS int `json:"beforeNMS"`
	// Objects ordered by descending confidence.
	Objects []Object `json:"objects"`
	// InferenceTime is the time spent in the engine.
	InferenceTime time.Duration `json:"inferenceTime"`
	// PostprocessTime is the time spent decoding and suppressing.
	PostprocessTime time.Duration `json:"postprocessTime"`
}

// Detector couples an engine with the YOLOv8 postprocessor.
type Detector struct {
	engine Engine
	model  *yolov8.YOLOv8
	log    *zap.Logger
}

// New creates a detector.
//
// Arguments:
//   - engine: The inference engine.
//   - model: The postprocessor matching the engine's model.
//   - log: Logger for per-image timings. May be nil.
//
// Returns:
//   - *Detector: The detector.
func New(engine Engine, model *yolov8.YOLOv8, log *zap.Logger) *Detector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Detector{engine: engine, model: model, log: log}
}

// Detect runs inference on img and returns its labelled detections.
func (d *Detector) Detect(ctx context.Context, img image.Image) (*Result, error) {
	if img == nil {
		return nil, errors.New("image is nil")
	}
	bounds := img.Bounds()

	start := time.Now()
	output, err := d.engine.Infer(ctx, img)
	if err != nil {
		return nil, errors.Wrap(err, "inference failed")
	}
	inferenceTime := time.Since(start)

	start = time.Now()
	dets, stats, err := d.model.Process(output, bounds.Dx(), bounds.Dy())
	if err != nil {
		return nil, err
	}
	postprocessTime := time.Since(start)

	objects := make([]Object, len(dets))
	for i, det := range dets {
		objects[i] = Object{Detection: det, Label: d.model.Label(det)}
	}

	d.log.Info("detected objects",
		zap.Int("width", bounds.Dx()),
		zap.Int("height", bounds.Dy()),
		zap.Int("beforeNMS", stats.Emitted),
		zap.Int("afterNMS", len(objects)),
		zap.Duration("inference", inferenceTime),
		zap.Duration("postprocess", postprocessTime),
	)

	return &Result{
		Width:           bounds.Dx(),
		Height:          bounds.Dy(),
		BeforeNMS:       stats.Emitted,
		Objects:         objects,
		InferenceTime:   inferenceTime,
		PostprocessTime: postprocessTime,
	}, nil
}
