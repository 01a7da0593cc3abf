//go:build !silero

package silero

import (
	"fmt"

	"github.com/nullshift/vocalops/pkg/provider/vad"
)

// Engine is the non-native placeholder compiled in when the "silero" build
// tag is absent. New always fails, so a deployment that forgets the tag
// finds out at startup instead of silently running without VAD gating.
type Engine struct{}

// New reports that the binary was built without ONNX Runtime support.
func New(modelPath string) (*Engine, error) {
	return nil, fmt.Errorf("silero: not compiled in (build with -tags silero and set VOCALOPS_ORT_LIB_PATH)")
}

// NewSession implements vad.Engine; unreachable since New always fails.
func (e *Engine) NewSession(cfg vad.Config) (vad.SessionHandle, error) {
	return nil, fmt.Errorf("silero: not compiled in")
}
