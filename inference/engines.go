// Package inference - Inference engines producing raw detection outputs.
package inference

import (
	"context"
	"image"
	"strings"

	"github.com/nvr-ai/go-detect/inference/providers"
	"github.com/nvr-ai/go-detect/models/yolov8"
	"github.com/pkg/errors"
)

// EngineType is the type of the engine
type EngineType string

const (
	// EngineONNX is the ONNX engine that uses the onnxruntime library
	EngineONNX EngineType = "onnx"
	// EngineOpenCV is the engine that uses the OpenCV DNN module
	EngineOpenCV EngineType = "opencv"
)

// Engines is a list of all supported engines
var Engines = []EngineType{EngineONNX, EngineOpenCV}

// ParseEngineType resolves a case-insensitive engine name.
func ParseEngineType(s string) (EngineType, error) {
	want := EngineType(strings.ToLower(strings.TrimSpace(s)))
	for _, e := range Engines {
		if e == want {
			return e, nil
		}
	}
	return "", errors.Errorf("unsupported engine %q", s)
}

// Engine runs a detection model on a single image.
//
// The returned tensor is owned by the engine and stays valid until the next Infer or
// Close call.
type Engine interface {
	Infer(ctx context.Context, img image.Image) (yolov8.Tensor, error)
	Close() error
}

// EngineArgs configures an engine.
type EngineArgs struct {
	// ModelPath is the path to the ONNX model.
	ModelPath string
	// InputSize is the square model input resolution.
	InputSize int
	// InputName is the model input tensor name.
	InputName string
	// OutputName is the model output tensor name.
	OutputName string
	// OutputShape is used when the model reports dynamic output dimensions.
	OutputShape []int64
	// LibraryPath overrides the onnxruntime shared library location.
	LibraryPath string
	// Provider selects the onnxruntime execution provider. Ignored by the OpenCV engine.
	Provider providers.Options
}

func (a EngineArgs) validate() error {
	if a.ModelPath == "" {
		return errors.New("model path is required")
	}
	if a.InputSize <= 0 {
		return errors.Errorf("input size must be positive, got %d", a.InputSize)
	}
	return a.Provider.Validate()
}

// NewEngine builds the engine of the given type.
func NewEngine(kind EngineType, args EngineArgs) (Engine, error) {
	if err := args.validate(); err != nil {
		return nil, err
	}
	switch kind {
	case EngineONNX:
		return NewONNXEngine(args)
	case EngineOpenCV:
		return NewOpenCVEngine(args)
	default:
		return nil, errors.Errorf("unsupported engine %q", kind)
	}
}
