package inference

import (
	"context"
	"image"
	"sync"

	"github.com/nvr-ai/go-detect/images"
	"github.com/nvr-ai/go-detect/inference/providers"
	"github.com/nvr-ai/go-detect/models/yolov8"
	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

var envMu sync.Mutex

// initEnvironment loads onnxruntime once per process.
func initEnvironment(libPath string) error {
	envMu.Lock()
	defer envMu.Unlock()

	if ort.IsInitialized() {
		return nil
	}
	if libPath == "" {
		p, err := GetSharedLibPath()
		if err != nil {
			return err
		}
		libPath = p
	}

	ort.SetSharedLibraryPath(libPath)
	if err := ort.InitializeEnvironment(); err != nil {
		return errors.Wrapf(err, "error initializing ORT environment from %s", libPath)
	}
	return nil
}

// ONNXEngine runs a model through onnxruntime with preallocated input and output tensors.
type ONNXEngine struct {
	mu        sync.Mutex
	session   *ort.AdvancedSession
	input     *ort.Tensor[float32]
	output    *ort.Tensor[float32]
	inputSize int
}

// NewONNXEngine creates an onnxruntime session for args.ModelPath.
//
// The output tensor is sized from the model metadata. Dynamic dimensions fall back to
// args.OutputShape.
//
// Arguments:
//   - args: The engine configuration.
//
// Returns:
//   - *ONNXEngine: The engine, which must be closed.
//   - error: An error if the runtime or the session cannot be created.
func NewONNXEngine(args EngineArgs) (*ONNXEngine, error) {
	if err := args.validate(); err != nil {
		return nil, err
	}
	if err := initEnvironment(args.LibraryPath); err != nil {
		return nil, err
	}

	outputShape, err := resolveOutputShape(args)
	if err != nil {
		return nil, err
	}

	size := int64(args.InputSize)
	input, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 3, size, size))
	if err != nil {
		return nil, errors.Wrap(err, "error creating input tensor")
	}

	output, err := ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		input.Destroy()
		return nil, errors.Wrap(err, "error creating output tensor")
	}

	options, err := providers.SessionOptions(args.Provider)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, err
	}
	defer options.Destroy()

	session, err := ort.NewAdvancedSession(
		args.ModelPath,
		[]string{args.InputName},
		[]string{args.OutputName},
		[]ort.ArbitraryTensor{input},
		[]ort.ArbitraryTensor{output},
		options,
	)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, errors.Wrap(err, "error creating ORT session")
	}

	return &ONNXEngine{
		session:   session,
		input:     input,
		output:    output,
		inputSize: args.InputSize,
	}, nil
}

func resolveOutputShape(args EngineArgs) (ort.Shape, error) {
	_, outputs, err := ort.GetInputOutputInfo(args.ModelPath)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading model metadata from %s", args.ModelPath)
	}

	for _, info := range outputs {
		if info.Name != args.OutputName {
			continue
		}
		dynamic := false
		for _, d := range info.Dimensions {
			if d <= 0 {
				dynamic = true
			}
		}
		if !dynamic {
			return info.Dimensions.Clone(), nil
		}
	}

	if len(args.OutputShape) == 0 {
		return nil, errors.Errorf("output %q has no static shape and no fallback was given", args.OutputName)
	}
	return ort.NewShape(args.OutputShape...), nil
}

// Infer stretches img to the model input, runs the session and returns a view of the
// output tensor.
func (e *ONNXEngine) Infer(ctx context.Context, img image.Image) (yolov8.Tensor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil {
		return nil, errors.New("engine is closed")
	}

	blob, err := images.Blob(img, e.inputSize)
	if err != nil {
		return nil, errors.Wrap(err, "input preparation failed")
	}
	copy(e.input.GetData(), blob)

	if err := e.session.Run(); err != nil {
		return nil, errors.Wrap(err, "error running ORT session")
	}

	return ORTOutput(e.output), nil
}

// Close releases the resources associated with the engine.
func (e *ONNXEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.input != nil {
		e.input.Destroy()
		e.input = nil
	}
	if e.output != nil {
		e.output.Destroy()
		e.output = nil
	}
	if e.session != nil {
		e.session.Destroy()
		e.session = nil
	}
	return nil
}

type ortView struct {
	t *ort.Tensor[float32]
}

// ORTOutput exposes an onnxruntime tensor to the decoder without copying.
func ORTOutput(t *ort.Tensor[float32]) yolov8.Tensor {
	return ortView{t: t}
}

func (v ortView) Dims() []int {
	shape := v.t.GetShape()
	dims := make([]int, len(shape))
	for i, d := range shape {
		dims[i] = int(d)
	}
	return dims
}

func (v ortView) Values() []float32 {
	return v.t.GetData()
}
