package yolov8

import (
	"github.com/nvr-ai/go-detect/models"
	"github.com/nvr-ai/go-detect/models/model"
	"github.com/nvr-ai/go-detect/models/postprocess"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// YOLOv8 is the instance of the YOLOv8 postprocessor: a Decoder followed by NMS.
type YOLOv8 struct {
	config  model.Config
	classes models.ClassTable
	decoder *Decoder
	nms     postprocess.NMSConfig
	log     *zap.Logger
}

// NewModelArgs is the arguments for creating a new YOLOv8 model.
type NewModelArgs struct {
	// Config holds the thresholds and output contract.
	Config model.Config
	// Classes is the class table. The built-in COCO table is used when nil.
	Classes models.ClassTable
	// Logger receives per-image decode statistics at debug level. Defaults to a no-op.
	Logger *zap.Logger
}

// NewModel creates a new model.
//
// Arguments:
//   - args: The arguments for creating a new model.
//
// Returns:
//   - The model.
//   - An error if the configuration is invalid.
func NewModel(args NewModelArgs) (*YOLOv8, error) {
	if err := args.Config.Validate(); err != nil {
		return nil, errors.Wrap(err, "NewModel requires a valid config")
	}

	classes := args.Classes
	if classes == nil {
		classes = models.YOLOClasses
	}

	log := args.Logger
	if log == nil {
		log = zap.NewNop()
	}

	decoder, err := NewDecoder(Options{
		InputSize:           args.Config.InputSize,
		NumClasses:          args.Config.NumClasses,
		Candidates:          args.Config.Candidates,
		ConfidenceThreshold: args.Config.ConfidenceThreshold,
		Classes:             classes,
	})
	if err != nil {
		return nil, err
	}

	return &YOLOv8{
		config:  args.Config,
		classes: classes,
		decoder: decoder,
		nms: postprocess.NMSConfig{
			IoUThreshold: args.Config.IoUThreshold,
			ClassAware:   args.Config.ClassAware,
		},
		log: log.With(zap.String("model", string(args.Config.Name))),
	}, nil
}

// Config returns the configuration the model was built with.
func (m *YOLOv8) Config() model.Config {
	return m.config
}

// Classes returns the class table used to resolve class IDs.
func (m *YOLOv8) Classes() models.ClassTable {
	return m.classes
}

// Label returns the class name of d, or "unknown" if its class is not in the table.
func (m *YOLOv8) Label(d postprocess.Detection) string {
	name, err := m.classes.Name(d.ClassID)
	if err != nil {
		return "unknown"
	}
	return name
}

// PostProcess decodes the output of the YOLOv8 model and suppresses duplicates.
//
// Arguments:
//   - output: The raw model output, shape [1, C, N].
//   - width: Original image width.
//   - height: Original image height.
//
// Returns:
//   - Detections ordered by descending confidence.
//   - An error if the output shape does not match the model contract.
func (m *YOLOv8) PostProcess(output Tensor, width, height int) ([]postprocess.Detection, error) {
	kept, _, err := m.Process(output, width, height)
	return kept, err
}

// Process is PostProcess that also returns the decode statistics. Stats.Emitted is the
// candidate count before suppression.
func (m *YOLOv8) Process(output Tensor, width, height int) ([]postprocess.Detection, Stats, error) {
	candidates, stats, err := m.decoder.Decode(output, width, height)
	if err != nil {
		return nil, Stats{}, errors.Wrap(err, "decode failed")
	}

	kept := postprocess.ApplyNMS(candidates, &m.nms)

	m.log.Debug("postprocessed output",
		zap.Ints("dims", output.Dims()),
		zap.Int("candidates", stats.Candidates),
		zap.Int("belowThreshold", stats.BelowThreshold),
		zap.Int("classOutOfRange", stats.ClassOutOfRange),
		zap.Int("degenerate", stats.Degenerate),
		zap.Int("beforeNMS", stats.Emitted),
		zap.Int("afterNMS", len(kept)),
	)
	if stats.ClassOutOfRange > 0 {
		m.log.Warn("dropped candidates with class outside the class table",
			zap.Int("count", stats.ClassOutOfRange),
			zap.Int("classes", m.classes.Len()),
			zap.Int("numClasses", m.config.NumClasses),
		)
	}

	return kept, stats, nil
}
