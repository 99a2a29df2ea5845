package inference

import (
	"testing"

	"github.com/nvr-ai/go-detect/inference/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEngineType(t *testing.T) {
	got, err := ParseEngineType(" ONNX ")
	require.NoError(t, err)
	assert.Equal(t, EngineONNX, got)

	got, err = ParseEngineType("opencv")
	require.NoError(t, err)
	assert.Equal(t, EngineOpenCV, got)

	_, err = ParseEngineType("tensorrt")
	assert.Error(t, err)
}

func TestEngineArgsValidate(t *testing.T) {
	valid := EngineArgs{ModelPath: "yolov8n.onnx", InputSize: 640}
	assert.NoError(t, valid.validate())

	noModel := valid
	noModel.ModelPath = ""
	assert.Error(t, noModel.validate())

	noSize := valid
	noSize.InputSize = 0
	assert.Error(t, noSize.validate())

	badProvider := valid
	badProvider.Provider = providers.Options{Backend: "tpu"}
	assert.Error(t, badProvider.validate())
}

func TestNewEngine_RejectsInvalidArgs(t *testing.T) {
	_, err := NewEngine(EngineONNX, EngineArgs{})
	assert.Error(t, err)

	_, err = NewEngine("tflite", EngineArgs{ModelPath: "m.onnx", InputSize: 640})
	assert.Error(t, err)
}

func TestSharedLibPath(t *testing.T) {
	tests := []struct {
		goos, goarch string
		want         string
		wantErr      bool
	}{
		{goos: "linux", goarch: "amd64", want: "./third_party/onnxruntime.so"},
		{goos: "linux", goarch: "arm64", want: "./third_party/onnxruntime_arm64.so"},
		{goos: "darwin", goarch: "arm64", want: "./third_party/libonnxruntime.dylib"},
		{goos: "windows", goarch: "amd64", want: "./third_party/onnxruntime.dll"},
		{goos: "windows", goarch: "386", wantErr: true},
		{goos: "plan9", goarch: "amd64", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.goos+"/"+tt.goarch, func(t *testing.T) {
			got, err := sharedLibPath(tt.goos, tt.goarch)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetSharedLibPath_Env(t *testing.T) {
	t.Setenv(LibraryPathEnv, "/opt/onnxruntime/lib/libonnxruntime.so")
	got, err := GetSharedLibPath()
	require.NoError(t, err)
	assert.Equal(t, "/opt/onnxruntime/lib/libonnxruntime.so", got)
}
