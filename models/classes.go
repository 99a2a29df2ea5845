// Package models - Class-name tables for detection model outputs.
package models

import (
	"bufio"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// ClassTable is an ordered list of class names. The index of a name is the class ID a
// model emits for it.
type ClassTable []string

// Len returns the number of classes in the table.
func (t ClassTable) Len() int { return len(t) }

// Contains reports whether id is a valid index into the table.
func (t ClassTable) Contains(id int) bool { return id >= 0 && id < len(t) }

// Name returns the class name for id.
//
// Returns:
//   - The class name.
//   - An error if id is out of range.
func (t ClassTable) Name(id int) (string, error) {
	if !t.Contains(id) {
		return "", errors.Errorf("class index %d out of range [0, %d)", id, len(t))
	}
	return t[id], nil
}

// Index returns the class ID for name, or -1 if the table has no such class.
func (t ClassTable) Index(name string) int {
	for i, n := range t {
		if n == name {
			return i
		}
	}
	return -1
}

// LoadClassNames reads a class table from a text file with one name per line, such as
// coco.names. Blank lines are skipped and Windows line endings are tolerated.
//
// Arguments:
//   - path: Path to the class-name file.
//
// Returns:
//   - The class table in file order.
//   - An error if the file cannot be read or holds no names.
func LoadClassNames(path string) (ClassTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open class names")
	}
	defer f.Close()

	var table ClassTable
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		table = append(table, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to read class names from %s", path)
	}
	if len(table) == 0 {
		return nil, errors.Errorf("no class names in %s", path)
	}

	return table, nil
}

// YOLOClasses is the 80 COCO classes without a background entry. YOLO models index
// directly into this zero-based list.
var YOLOClasses = ClassTable{
	"person", "bicycle", "car", "motorcycle", "airplane", "bus", "train", "truck", "boat",
	"traffic light", "fire hydrant", "stop sign", "parking meter", "bench", "bird", "cat", "dog", "horse",
	"sheep", "cow", "elephant", "bear", "zebra", "giraffe", "backpack", "umbrella", "handbag", "tie",
	"suitcase", "frisbee", "skis", "snowboard", "sports ball", "kite", "baseball bat", "baseball glove",
	"skateboard", "surfboard", "tennis racket", "bottle", "wine glass", "cup", "fork", "knife", "spoon",
	"bowl", "banana", "apple", "sandwich", "orange", "broccoli", "carrot", "hot dog", "pizza", "donut",
	"cake", "chair", "couch", "potted plant", "bed", "dining table", "toilet", "tv", "laptop", "mouse",
	"remote", "keyboard", "cell phone", "microwave", "oven", "toaster", "sink", "refrigerator", "book",
	"clock", "vase", "scissors", "teddy bear", "hair drier", "toothbrush",
}
