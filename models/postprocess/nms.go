// Package postprocess - provides Non-Maximum Suppression for detection results.
package postprocess

import (
	"sort"

	"github.com/nvr-ai/go-detect/images"
)

// NMSConfig defines parameters for Non-Maximum Suppression.
type NMSConfig struct {
	IoUThreshold float32 // Overlap threshold for suppression.
	ClassAware   bool    // If true, suppress only within same class.
}

// IoU returns the Intersection over Union of two bounding boxes.
func IoU(a, b BoundingBox) float32 {
	return images.CalculateIoU(a.Rect(), b.Rect())
}

// Suppress removes lower-confidence detections that overlap a higher-confidence one by
// more than iouThreshold, regardless of class.
//
// Overlapping boxes of different classes suppress each other. A single physical object
// yields one label, the most confident one.
//
// Arguments:
//   - detections: Detections in any order. The slice is not modified.
//   - iouThreshold: IoU above which the weaker of two boxes is dropped.
//
// Returns:
//   - The kept detections ordered by descending confidence.
func Suppress(detections []Detection, iouThreshold float32) []Detection {
	return ApplyNMS(detections, &NMSConfig{IoUThreshold: iouThreshold})
}

// ApplyNMS performs greedy Non-Maximum Suppression.
//
// The input is copied and stable-sorted by descending confidence, so equal scores keep
// their input order and the output is reproducible. Every kept box is then compared with
// every later box that is still alive, which is O(n²) IoU evaluations. That is fine for
// the few dozen candidates that survive the decoder's confidence filter; keep the sort
// stable and the union algebraic if this is ever optimised.
//
// Arguments:
//   - detections: Detections in any order. The slice is not modified.
//   - config: NMS configuration. If ClassAware is set, only boxes of the same class
//     suppress each other.
//
// Returns:
//   - Filtered slice of detections, highest confidence first. Never nil.
func ApplyNMS(detections []Detection, config *NMSConfig) []Detection {
	n := len(detections)
	if n == 0 {
		return []Detection{}
	}

	sorted := make([]Detection, n)
	copy(sorted, detections)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	suppressed := make([]bool, n)
	filtered := make([]Detection, 0, n)

	for i := 0; i < n; i++ {
		if suppressed[i] {
			continue
		}

		anchor := sorted[i]
		filtered = append(filtered, anchor)
		anchorRect := anchor.Box.Rect()

		for j := i + 1; j < n; j++ {
			if suppressed[j] {
				continue
			}
			if config.ClassAware && anchor.ClassID != sorted[j].ClassID {
				continue
			}
			if images.CalculateIoU(anchorRect, sorted[j].Box.Rect()) > config.IoUThreshold {
				suppressed[j] = true
			}
		}
	}

	return filtered
}
