package yolov8

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrUnexpectedShape is matched by every *ShapeError via errors.Is.
	ErrUnexpectedShape = errors.New("unexpected tensor shape")
	// ErrInvalidDimensions is returned when the original image size is not positive.
	ErrInvalidDimensions = errors.New("invalid image dimensions")
)

// ShapeError reports an output tensor whose shape does not match the model contract.
// Decoding stops at the first shape error and returns no detections.
type ShapeError struct {
	// Dims is the observed tensor shape.
	Dims []int
	// Reason describes which part of the contract was violated.
	Reason string
}

func (e *ShapeError) Error() string {
	parts := make([]string, len(e.Dims))
	for i, d := range e.Dims {
		parts[i] = strconv.Itoa(d)
	}
	return fmt.Sprintf("%s [%s]: %s", ErrUnexpectedShape, strings.Join(parts, ","), e.Reason)
}

// Is makes errors.Is(err, ErrUnexpectedShape) hold for shape errors.
func (e *ShapeError) Is(target error) bool {
	return target == ErrUnexpectedShape
}
