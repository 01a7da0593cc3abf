//go:build silero

package silero

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// resolveORTLibPath locates the ONNX Runtime shared library.
//
// Search order:
//  1. VOCALOPS_ORT_LIB_PATH environment variable (explicit override)
//  2. lib/<goos>-<goarch>/ relative to the running executable
//  3. ../lib/<goos>-<goarch>/ relative to the running executable (bin/ layout)
//  4. lib/<goos>-<goarch>/ relative to CWD, only if VOCALOPS_DEV_MODE=1
//
// CWD-based lookup is disabled by default to avoid shared library hijacking
// from an attacker-controlled working directory.
func resolveORTLibPath() (string, error) {
	if envPath := os.Getenv("VOCALOPS_ORT_LIB_PATH"); envPath != "" {
		info, err := os.Stat(envPath)
		if err != nil {
			return "", fmt.Errorf("silero: VOCALOPS_ORT_LIB_PATH=%q does not exist", envPath)
		}
		if info.IsDir() {
			return "", fmt.Errorf("silero: VOCALOPS_ORT_LIB_PATH=%q is a directory, expected a file", envPath)
		}
		return envPath, nil
	}

	filename := ortLibFilename()
	libRel := filepath.Join("lib", runtime.GOOS+"-"+runtime.GOARCH, filename)
	libRelParent := filepath.Join("..", "lib", runtime.GOOS+"-"+runtime.GOARCH, filename)

	if exePath, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exePath)
		for _, rel := range []string{libRel, libRelParent} {
			path := filepath.Join(exeDir, rel)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
	}

	if os.Getenv("VOCALOPS_DEV_MODE") == "1" {
		if dir, err := os.Getwd(); err == nil {
			for _, rel := range []string{libRel, libRelParent} {
				path := filepath.Join(dir, rel)
				if _, err := os.Stat(path); err == nil {
					return path, nil
				}
			}
		}
	}

	return "", fmt.Errorf("silero: ONNX Runtime shared library not found; searched lib/<os>-<arch>/%s relative to the executable (set VOCALOPS_ORT_LIB_PATH to override, or VOCALOPS_DEV_MODE=1 to enable CWD lookup)", filename)
}

func ortLibFilename() string {
	switch runtime.GOOS {
	case "darwin":
		return "libonnxruntime.dylib"
	case "windows":
		return "onnxruntime.dll"
	default:
		return "libonnxruntime.so"
	}
}
