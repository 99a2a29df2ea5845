package yolov8

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// Tensor is a read-only view of a raw model output. Values are laid out row-major over
// Dims, so for an output of shape [1, C, N] the N values of channel c are contiguous.
//
// The view is borrowed: the decoder never retains it past a single Decode call.
type Tensor interface {
	Dims() []int
	Values() []float32
}

type denseView struct {
	t *tensor.Dense
}

// FromDense wraps a gorgonia dense tensor. The tensor must hold float32 data.
func FromDense(t *tensor.Dense) (Tensor, error) {
	if t == nil {
		return nil, errors.New("tensor is nil")
	}
	if t.Dtype() != tensor.Float32 {
		return nil, errors.Errorf("unsupported tensor dtype %v, want float32", t.Dtype())
	}
	return denseView{t: t}, nil
}

func (v denseView) Dims() []int {
	return []int(v.t.Shape().Clone())
}

func (v denseView) Values() []float32 {
	return v.t.Float32s()
}

// FromSlice builds a tensor view of the given shape over values without copying.
//
// Arguments:
//   - dims: The tensor shape, e.g. [1, 84, 8400].
//   - values: Row-major backing data; its length must equal the product of dims.
//
// Returns:
//   - The tensor view.
//   - An error if the shape and data length disagree.
func FromSlice(dims []int, values []float32) (Tensor, error) {
	size := 1
	for _, d := range dims {
		if d <= 0 {
			return nil, &ShapeError{Dims: dims, Reason: "non-positive dimension"}
		}
		size *= d
	}
	if len(dims) == 0 || size != len(values) {
		return nil, &ShapeError{Dims: dims, Reason: "shape does not match data length"}
	}

	return FromDense(tensor.New(
		tensor.WithShape(dims...),
		tensor.Of(tensor.Float32),
		tensor.WithBacking(values),
	))
}
