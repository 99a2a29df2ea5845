package inference

import (
	"os"
	"runtime"

	"github.com/pkg/errors"
)

// LibraryPathEnv names the environment variable that overrides the onnxruntime location.
const LibraryPathEnv = "ONNXRUNTIME_LIB"

// GetSharedLibPath returns the path to the onnxruntime shared library for the current
// platform, preferring $ONNXRUNTIME_LIB when set.
//
// Returns:
//   - string: The path to the shared library.
//   - error: An error if no library is known for this platform.
func GetSharedLibPath() (string, error) {
	if p := os.Getenv(LibraryPathEnv); p != "" {
		return p, nil
	}
	return sharedLibPath(runtime.GOOS, runtime.GOARCH)
}

func sharedLibPath(goos, goarch string) (string, error) {
	switch goos {
	case "windows":
		if goarch == "amd64" {
			return "./third_party/onnxruntime.dll", nil
		}
	case "darwin":
		return "./third_party/libonnxruntime.dylib", nil
	case "linux":
		if goarch == "arm64" {
			return "./third_party/onnxruntime_arm64.so", nil
		}
		return "./third_party/onnxruntime.so", nil
	}
	return "", errors.Errorf("no onnxruntime library for %s/%s", goos, goarch)
}
