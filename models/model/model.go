// Package model - Model identity and postprocessing configuration.
package model

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Family is the family of models.
type Family string

const (
	// ModelFamilyYOLO is the YOLO model family.
	ModelFamilyYOLO Family = "yolo"
)

// Name is the unique identifier of a model.
type Name string

const (
	// ModelNameYOLOv8 is the name of the YOLOv8 model.
	ModelNameYOLOv8 Name = "yolov8"
)

// Defaults for a stock YOLOv8 export at 640x640 trained on COCO.
const (
	DefaultInputSize           = 640
	DefaultNumClasses          = 80
	DefaultCandidates          = 8400
	DefaultConfidenceThreshold = 0.3
	DefaultIoUThreshold        = 0.45
	DefaultInputName           = "images"
	DefaultOutputName          = "output0"
)

// Config holds every tunable of the detection pipeline.
type Config struct {
	// Name of the model.
	Name Name `json:"name" yaml:"name"`
	// Family of the model.
	Family Family `json:"family" yaml:"family"`
	// Path to the model file.
	Path string `json:"path" yaml:"path"`
	// ClassesPath is an optional class-name file. The built-in COCO table is used when empty.
	ClassesPath string `json:"classesPath" yaml:"classesPath"`
	// InputSize is the square model input resolution the image is stretched to.
	InputSize int `json:"inputSize" yaml:"inputSize"`
	// NumClasses is the number of class score channels in the model output.
	NumClasses int `json:"numClasses" yaml:"numClasses"`
	// Candidates is the fixed number of candidate slots in the model output. Zero accepts
	// any count but leaves engines without a fallback output shape.
	Candidates int `json:"candidates" yaml:"candidates"`
	// Objectness declares an objectness channel between the box and class channels.
	Objectness bool `json:"objectness" yaml:"objectness"`
	// ConfidenceThreshold rejects candidates whose combined confidence is not above it.
	ConfidenceThreshold float32 `json:"confidenceThreshold" yaml:"confidenceThreshold"`
	// IoUThreshold suppresses boxes overlapping a stronger box by more than this.
	IoUThreshold float32 `json:"iouThreshold" yaml:"iouThreshold"`
	// ClassAware restricts suppression to boxes of the same class.
	ClassAware bool `json:"classAware" yaml:"classAware"`
	// InputName is the model's input tensor name.
	InputName string `json:"inputName" yaml:"inputName"`
	// OutputName is the model's output tensor name.
	OutputName string `json:"outputName" yaml:"outputName"`
}

// DefaultConfig returns the configuration for a stock YOLOv8 COCO export.
//
// Returns:
//   - Config: A configuration with documented defaults and no model path.
func DefaultConfig() Config {
	return Config{
		Name:                ModelNameYOLOv8,
		Family:              ModelFamilyYOLO,
		InputSize:           DefaultInputSize,
		NumClasses:          DefaultNumClasses,
		Candidates:          DefaultCandidates,
		ConfidenceThreshold: DefaultConfidenceThreshold,
		IoUThreshold:        DefaultIoUThreshold,
		InputName:           DefaultInputName,
		OutputName:          DefaultOutputName,
	}
}

// LoadConfig reads a YAML configuration file. Fields missing from the file keep their
// DefaultConfig values.
//
// Arguments:
//   - path: Path to the YAML file.
//
// Returns:
//   - *Config: The loaded and validated configuration.
//   - error: An error if the file cannot be read, parsed, or fails validation.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config")
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", path)
	}

	return &cfg, nil
}

// OutputShape returns the [1, C, N] output shape the config describes, or nil when the
// candidate count is left open.
func (c Config) OutputShape() []int64 {
	if c.Candidates <= 0 {
		return nil
	}
	channels := 4 + c.NumClasses
	if c.Objectness {
		channels++
	}
	return []int64{1, int64(channels), int64(c.Candidates)}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.InputSize <= 0 {
		return errors.Errorf("inputSize must be positive, got %d", c.InputSize)
	}
	if c.NumClasses <= 0 {
		return errors.Errorf("numClasses must be positive, got %d", c.NumClasses)
	}
	if c.Candidates < 0 {
		return errors.Errorf("candidates must not be negative, got %d", c.Candidates)
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold >= 1 {
		return errors.Errorf("confidenceThreshold must be in [0, 1), got %v", c.ConfidenceThreshold)
	}
	if c.IoUThreshold < 0 || c.IoUThreshold > 1 {
		return errors.Errorf("iouThreshold must be in [0, 1], got %v", c.IoUThreshold)
	}
	return nil
}
