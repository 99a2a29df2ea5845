// Package yolov8 - Decoding of YOLOv8 detection outputs.
package yolov8

import (
	"github.com/chewxy/math32"
	"github.com/nvr-ai/go-detect/images"
	"github.com/nvr-ai/go-detect/models"
	"github.com/nvr-ai/go-detect/models/postprocess"
	"github.com/pkg/errors"
)

// boxChannels is the number of leading channels holding cx, cy, w, h.
const boxChannels = 4

// Options configures a Decoder.
type Options struct {
	// InputSize is the square resolution the image was stretched to before inference.
	InputSize int
	// NumClasses is the number of class score channels the model emits.
	NumClasses int
	// Candidates is the fixed candidate count N of the output. Zero accepts any N.
	Candidates int
	// ConfidenceThreshold rejects candidates whose combined score is not strictly above it.
	ConfidenceThreshold float32
	// Classes resolves class IDs. Candidates whose class falls outside it are dropped.
	Classes models.ClassTable
}

// Stats counts what happened to each candidate slot during a Decode call.
type Stats struct {
	Candidates      int `json:"candidates"`
	BelowThreshold  int `json:"belowThreshold"`
	ClassOutOfRange int `json:"classOutOfRange"`
	Degenerate      int `json:"degenerate"`
	Emitted         int `json:"emitted"`
}

// Dropped returns the number of candidates that passed the confidence filter but were
// discarded as anomalous.
func (s Stats) Dropped() int { return s.ClassOutOfRange + s.Degenerate }

// Decoder turns a raw [1, C, N] output into detections in original image coordinates.
// It holds no mutable state and is safe for concurrent use.
type Decoder struct {
	opts Options
}

// NewDecoder creates a decoder.
//
// Arguments:
//   - opts: Decoder options. InputSize and NumClasses must be positive and
//     ConfidenceThreshold must lie in [0, 1).
//
// Returns:
//   - *Decoder: The decoder.
//   - error: An error if the options are unusable.
func NewDecoder(opts Options) (*Decoder, error) {
	if opts.InputSize <= 0 {
		return nil, errors.Errorf("input size must be positive, got %d", opts.InputSize)
	}
	if opts.NumClasses <= 0 {
		return nil, errors.Errorf("class count must be positive, got %d", opts.NumClasses)
	}
	// Keeps every emitted confidence in (0, 1].
	if !(opts.ConfidenceThreshold >= 0 && opts.ConfidenceThreshold < 1) {
		return nil, errors.Errorf("confidence threshold must be in [0, 1), got %v", opts.ConfidenceThreshold)
	}
	return &Decoder{opts: opts}, nil
}

// layout validates the tensor shape and reports the candidate count and whether an
// objectness channel precedes the class scores.
func (d *Decoder) layout(t Tensor) (candidates int, objectness bool, err error) {
	dims := t.Dims()
	if len(dims) != 3 {
		return 0, false, &ShapeError{Dims: dims, Reason: "expected 3 dimensions"}
	}
	if dims[0] != 1 {
		return 0, false, &ShapeError{Dims: dims, Reason: "expected batch size 1"}
	}

	channels := dims[1]
	candidates = dims[2]
	switch channels {
	case boxChannels + 1 + d.opts.NumClasses:
		objectness = true
	case boxChannels + d.opts.NumClasses:
		objectness = false
	default:
		return 0, false, &ShapeError{Dims: dims, Reason: "channel count matches neither box+classes nor box+objectness+classes"}
	}

	if candidates <= 0 || (d.opts.Candidates > 0 && candidates != d.opts.Candidates) {
		return 0, false, &ShapeError{Dims: dims, Reason: "unexpected candidate count"}
	}
	if len(t.Values()) != channels*candidates {
		return 0, false, &ShapeError{Dims: dims, Reason: "data length does not match shape"}
	}

	return candidates, objectness, nil
}

// Decode extracts detections from a single-image output tensor.
//
// Each candidate's cx, cy, w, h are fractions of the square model input. They are scaled
// to input pixels, converted to a top-left box and mapped back to the original image with
// independent horizontal and vertical factors. That mapping assumes the image was
// stretched, not letterboxed; letterboxed inputs will decode with shifted boxes.
//
// Arguments:
//   - t: The raw output, shape [1, C, N].
//   - originalWidth: Width of the image before resizing.
//   - originalHeight: Height of the image before resizing.
//
// Returns:
//   - The emitted detections in tensor scan order. Empty, not nil, when nothing passes.
//   - Per-call counters for diagnostics.
//   - A *ShapeError if the tensor does not match the model contract, or
//     ErrInvalidDimensions if the original size is not positive.
func (d *Decoder) Decode(t Tensor, originalWidth, originalHeight int) ([]postprocess.Detection, Stats, error) {
	if originalWidth <= 0 || originalHeight <= 0 {
		return nil, Stats{}, ErrInvalidDimensions
	}

	n, objectness, err := d.layout(t)
	if err != nil {
		return nil, Stats{}, err
	}

	data := t.Values()
	inputSize := float32(d.opts.InputSize)
	scaleX := float32(originalWidth) / inputSize
	scaleY := float32(originalHeight) / inputSize

	classOffset := boxChannels
	if objectness {
		classOffset++
	}

	stats := Stats{Candidates: n}
	detections := make([]postprocess.Detection, 0)

	for i := 0; i < n; i++ {
		obj := float32(1)
		if objectness {
			obj = data[boxChannels*n+i]
		}

		classID := 0
		best := data[classOffset*n+i]
		for c := 1; c < d.opts.NumClasses; c++ {
			if v := data[(classOffset+c)*n+i]; v > best {
				best = v
				classID = c
			}
		}

		// Strictly above the threshold; NaN scores fail this too.
		conf := obj * best
		if !(conf > d.opts.ConfidenceThreshold) {
			stats.BelowThreshold++
			continue
		}
		if !d.opts.Classes.Contains(classID) {
			stats.ClassOutOfRange++
			continue
		}

		cx := data[i] * inputSize
		cy := data[n+i] * inputSize
		w := data[2*n+i] * inputSize
		h := data[3*n+i] * inputSize

		x1 := cx - w/2
		y1 := cy - h/2

		box := images.RectFromXYWH(
			int(math32.Round(x1*scaleX)),
			int(math32.Round(y1*scaleY)),
			int(math32.Round(w*scaleX)),
			int(math32.Round(h*scaleY)),
		).Clip(originalWidth, originalHeight)
		if box.Empty() {
			stats.Degenerate++
			continue
		}

		detections = append(detections, postprocess.Detection{
			Box: postprocess.BoundingBox{
				X:      box.X1,
				Y:      box.Y1,
				Width:  box.Dx(),
				Height: box.Dy(),
			},
			Confidence: math32.Min(conf, 1),
			ClassID:    classID,
		})
	}

	stats.Emitted = len(detections)
	return detections, stats, nil
}
