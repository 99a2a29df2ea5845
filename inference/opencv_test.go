package inference

import (
	"context"
	"image"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

type fakeNetwork struct {
	inputErr error
	forwards int
	closed   bool
}

func (f *fakeNetwork) SetInput(blob gocv.Mat, name string) error { return f.inputErr }

func (f *fakeNetwork) Forward(outputName string) gocv.Mat {
	f.forwards++
	return gocv.NewMat()
}

func (f *fakeNetwork) Close() error {
	f.closed = true
	return nil
}

func newFakeEngine(net network) *OpenCVEngine {
	return &OpenCVEngine{
		net:        net,
		last:       gocv.NewMat(),
		inputSize:  32,
		inputName:  "images",
		outputName: "output0",
	}
}

func TestOpenCVEngine_SetInputError(t *testing.T) {
	net := &fakeNetwork{inputErr: errors.New("blob shape mismatch")}
	e := newFakeEngine(net)
	defer e.Close()

	out, err := e.Infer(context.Background(), image.NewRGBA(image.Rect(0, 0, 64, 48)))
	assert.Nil(t, out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error setting network input")
	assert.Contains(t, err.Error(), "blob shape mismatch")
	assert.Equal(t, 0, net.forwards)
}

func TestOpenCVEngine_EmptyOutput(t *testing.T) {
	net := &fakeNetwork{}
	e := newFakeEngine(net)
	defer e.Close()

	_, err := e.Infer(context.Background(), image.NewRGBA(image.Rect(0, 0, 64, 48)))
	require.Error(t, err)
	assert.Equal(t, 1, net.forwards)
}

func TestOpenCVEngine_Closed(t *testing.T) {
	net := &fakeNetwork{}
	e := newFakeEngine(net)
	require.NoError(t, e.Close())
	assert.True(t, net.closed)

	_, err := e.Infer(context.Background(), image.NewRGBA(image.Rect(0, 0, 8, 8)))
	assert.Error(t, err)
}

func TestOpenCVEngine_CancelledContext(t *testing.T) {
	e := newFakeEngine(&fakeNetwork{})
	defer e.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Infer(ctx, image.NewRGBA(image.Rect(0, 0, 8, 8)))
	assert.ErrorIs(t, err, context.Canceled)
}
