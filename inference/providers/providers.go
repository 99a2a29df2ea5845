// Package providers - ONNX Runtime execution provider selection.
package providers

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

// Backend represents different ONNX Runtime execution providers.
type Backend string

const (
	// CPU uses the default CPU execution provider.
	CPU Backend = "cpu"
	// CUDA uses NVIDIA CUDA for GPU acceleration.
	CUDA Backend = "cuda"
	// CoreML uses Apple CoreML for macOS acceleration.
	CoreML Backend = "coreml"
	// OpenVINO uses Intel OpenVINO.
	OpenVINO Backend = "openvino"
)

// Backends lists every supported backend.
var Backends = []Backend{CPU, CUDA, CoreML, OpenVINO}

// ParseBackend resolves a case-insensitive backend name. An empty name selects CPU.
func ParseBackend(s string) (Backend, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return CPU, nil
	}
	for _, b := range Backends {
		if string(b) == s {
			return b, nil
		}
	}
	return "", errors.Errorf("unsupported execution provider %q", s)
}

// Options configures an onnxruntime session.
type Options struct {
	// Backend selects the execution provider. Empty means CPU.
	Backend Backend `json:"backend" yaml:"backend"`
	// DeviceID selects the accelerator for CUDA.
	DeviceID int `json:"deviceID" yaml:"deviceID"`
	// IntraOpThreads parallelises work inside a single node. Zero lets onnxruntime decide.
	IntraOpThreads int `json:"intraOpThreads" yaml:"intraOpThreads"`
	// InterOpThreads parallelises independent nodes. Zero lets onnxruntime decide.
	InterOpThreads int `json:"interOpThreads" yaml:"interOpThreads"`
	// Settings are passed through to the provider, e.g. OpenVINO's device_type.
	// See: https://onnxruntime.ai/docs/execution-providers/
	Settings map[string]string `json:"settings" yaml:"settings"`
}

// Validate checks the options without touching the runtime.
func (o Options) Validate() error {
	if _, err := ParseBackend(string(o.Backend)); err != nil {
		return err
	}
	if o.DeviceID < 0 {
		return errors.Errorf("device ID must not be negative, got %d", o.DeviceID)
	}
	if o.IntraOpThreads < 0 || o.InterOpThreads < 0 {
		return errors.New("thread counts must not be negative")
	}
	return nil
}

// cudaSettings merges the device ID into the pass-through settings.
func (o Options) cudaSettings() map[string]string {
	settings := map[string]string{"device_id": strconv.Itoa(o.DeviceID)}
	for k, v := range o.Settings {
		settings[k] = v
	}
	return settings
}

// SessionOptions builds onnxruntime session options for o. The caller must destroy them.
//
// Arguments:
//   - o: The provider options.
//
// Returns:
//   - *ort.SessionOptions: The session options.
//   - error: An error if the provider is unavailable in the loaded runtime.
func SessionOptions(o Options) (*ort.SessionOptions, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	backend, _ := ParseBackend(string(o.Backend))

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, errors.Wrap(err, "error creating ORT session options")
	}

	if err := configure(options, backend, o); err != nil {
		options.Destroy()
		return nil, err
	}
	return options, nil
}

func configure(options *ort.SessionOptions, backend Backend, o Options) error {
	if err := options.SetIntraOpNumThreads(o.IntraOpThreads); err != nil {
		return errors.Wrap(err, "error setting intra-op threads")
	}
	if err := options.SetInterOpNumThreads(o.InterOpThreads); err != nil {
		return errors.Wrap(err, "error setting inter-op threads")
	}
	if err := options.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableExtended); err != nil {
		return errors.Wrap(err, "error setting graph optimization level")
	}

	switch backend {
	case CUDA:
		cuda, err := ort.NewCUDAProviderOptions()
		if err != nil {
			return errors.Wrap(err, "error creating CUDA options")
		}
		defer cuda.Destroy()
		if err := cuda.Update(o.cudaSettings()); err != nil {
			return errors.Wrap(err, "error updating CUDA options")
		}
		if err := options.AppendExecutionProviderCUDA(cuda); err != nil {
			return errors.Wrap(err, "error enabling CUDA")
		}
	case CoreML:
		if err := options.AppendExecutionProviderCoreML(0); err != nil {
			return errors.Wrap(err, "error enabling CoreML")
		}
	case OpenVINO:
		settings := o.Settings
		if settings == nil {
			settings = map[string]string{}
		}
		if err := options.AppendExecutionProviderOpenVINO(settings); err != nil {
			return errors.Wrap(err, "error enabling OpenVINO")
		}
	}
	return nil
}
