package inference

import (
	"context"
	"image"
	"sync"

	"github.com/nvr-ai/go-detect/models/yolov8"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// network is the part of gocv.Net the engine drives.
type network interface {
	SetInput(blob gocv.Mat, name string) error
	Forward(outputName string) gocv.Mat
	Close() error
}

// OpenCVEngine runs a model through the OpenCV DNN module on the CPU.
type OpenCVEngine struct {
	mu         sync.Mutex
	net        network
	last       gocv.Mat
	inputSize  int
	inputName  string
	outputName string
}

// NewOpenCVEngine loads args.ModelPath with gocv.ReadNet.
func NewOpenCVEngine(args EngineArgs) (*OpenCVEngine, error) {
	if err := args.validate(); err != nil {
		return nil, err
	}

	net := gocv.ReadNet(args.ModelPath, "")
	if net.Empty() {
		return nil, errors.Errorf("error reading network model from %s", args.ModelPath)
	}
	if err := net.SetPreferableBackend(gocv.NetBackendDefault); err != nil {
		net.Close()
		return nil, errors.Wrap(err, "error setting DNN backend")
	}
	if err := net.SetPreferableTarget(gocv.NetTargetCPU); err != nil {
		net.Close()
		return nil, errors.Wrap(err, "error setting DNN target")
	}

	return &OpenCVEngine{
		net:        &net,
		last:       gocv.NewMat(),
		inputSize:  args.InputSize,
		inputName:  args.InputName,
		outputName: args.OutputName,
	}, nil
}

// Infer converts img to a blob (stretch resize, 1/255, BGR to RGB), runs a forward pass
// and returns a view of the output Mat.
func (e *OpenCVEngine) Infer(ctx context.Context, img image.Image) (yolov8.Tensor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.net == nil {
		return nil, errors.New("engine is closed")
	}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, errors.Wrap(err, "image conversion failed")
	}
	defer mat.Close()

	blob := gocv.BlobFromImage(mat, 1.0/255.0, image.Pt(e.inputSize, e.inputSize), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	if err := e.net.SetInput(blob, e.inputName); err != nil {
		return nil, errors.Wrap(err, "error setting network input")
	}
	out := e.net.Forward(e.outputName)
	if out.Empty() {
		out.Close()
		return nil, errors.New("network produced no output")
	}

	e.last.Close()
	e.last = out
	return MatOutput(e.last), nil
}

// Close releases the network and the last output.
func (e *OpenCVEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.last.Close()
	if e.net != nil {
		err := e.net.Close()
		e.net = nil
		return err
	}
	return nil
}

type matView struct {
	m gocv.Mat
}

// MatOutput exposes a float32 n-dimensional Mat to the decoder without copying. A Mat
// of another type yields no values, which the decoder reports as a shape error.
func MatOutput(m gocv.Mat) yolov8.Tensor {
	return matView{m: m}
}

func (v matView) Dims() []int {
	return v.m.Size()
}

func (v matView) Values() []float32 {
	data, err := v.m.DataPtrFloat32()
	if err != nil {
		return nil
	}
	return data
}
