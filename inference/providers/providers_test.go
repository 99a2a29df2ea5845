package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBackend(t *testing.T) {
	tests := []struct {
		in      string
		want    Backend
		wantErr bool
	}{
		{in: "", want: CPU},
		{in: "cpu", want: CPU},
		{in: " CUDA ", want: CUDA},
		{in: "CoreML", want: CoreML},
		{in: "openvino", want: OpenVINO},
		{in: "tensorrt", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBackend(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOptionsValidate(t *testing.T) {
	assert.NoError(t, Options{}.Validate())
	assert.NoError(t, Options{Backend: CUDA, DeviceID: 1, IntraOpThreads: 4}.Validate())
	assert.Error(t, Options{Backend: "tpu"}.Validate())
	assert.Error(t, Options{DeviceID: -1}.Validate())
	assert.Error(t, Options{InterOpThreads: -2}.Validate())
}

func TestCUDASettings(t *testing.T) {
	o := Options{Backend: CUDA, DeviceID: 2, Settings: map[string]string{"gpu_mem_limit": "1073741824"}}
	assert.Equal(t, map[string]string{
		"device_id":     "2",
		"gpu_mem_limit": "1073741824",
	}, o.cudaSettings())
}
