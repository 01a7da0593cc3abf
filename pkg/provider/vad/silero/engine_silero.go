//go:build silero

package silero

import (
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/nullshift/vocalops/pkg/provider/vad"
)

// stateDim is the hidden-state dimension per layer of Silero VAD v5's
// combined state tensor, shaped [2, 1, 128].
const stateDim = 128

var (
	ortInitOnce sync.Once
	ortInitErr  error
)

// Engine loads a Silero VAD v5 ONNX model once and creates one ORT inference
// session per VAD session, since each session's hidden state is bound to its
// own input/output tensors.
type Engine struct {
	modelData []byte
}

// New loads the Silero VAD v5 model from modelPath and initializes the ONNX
// Runtime environment (once per process, regardless of how many Engines are
// created).
func New(modelPath string) (*Engine, error) {
	data, err := os.ReadFile(modelPath)
	if err != nil {
		return nil, fmt.Errorf("silero: read model %q: %w", modelPath, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("silero: model %q is empty", modelPath)
	}

	ortInitOnce.Do(func() {
		libPath, err := resolveORTLibPath()
		if err != nil {
			ortInitErr = err
			return
		}
		ort.SetSharedLibraryPath(libPath)
		ortInitErr = ort.InitializeEnvironment()
	})
	if ortInitErr != nil {
		return nil, fmt.Errorf("silero: initialize ONNX Runtime: %w", ortInitErr)
	}

	return &Engine{modelData: data}, nil
}

// NewSession implements vad.Engine.
func (e *Engine) NewSession(cfg vad.Config) (vad.SessionHandle, error) {
	if cfg.SpeechThreshold < cfg.SilenceThreshold {
		return nil, fmt.Errorf("silero: speech threshold %.2f must be >= silence threshold %.2f", cfg.SpeechThreshold, cfg.SilenceThreshold)
	}
	window := cfg.FrameSizeMs * cfg.SampleRate / 1000
	if window <= 0 {
		return nil, fmt.Errorf("silero: frame size %dms at %dHz yields an empty inference window", cfg.FrameSizeMs, cfg.SampleRate)
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(window)))
	if err != nil {
		return nil, fmt.Errorf("silero: create input tensor: %w", err)
	}
	stateTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(2, 1, stateDim))
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("silero: create state tensor: %w", err)
	}
	srTensor, err := ort.NewTensor(ort.NewShape(1), []int64{int64(cfg.SampleRate)})
	if err != nil {
		inputTensor.Destroy()
		stateTensor.Destroy()
		return nil, fmt.Errorf("silero: create sample-rate tensor: %w", err)
	}
	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 1))
	if err != nil {
		inputTensor.Destroy()
		stateTensor.Destroy()
		srTensor.Destroy()
		return nil, fmt.Errorf("silero: create output tensor: %w", err)
	}
	stateNTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(2, 1, stateDim))
	if err != nil {
		inputTensor.Destroy()
		stateTensor.Destroy()
		srTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("silero: create next-state tensor: %w", err)
	}

	session, err := ort.NewAdvancedSessionWithONNXData(
		e.modelData,
		[]string{"input", "state", "sr"},
		[]string{"output", "stateN"},
		[]ort.Value{inputTensor, stateTensor, srTensor},
		[]ort.Value{outputTensor, stateNTensor},
		nil,
	)
	if err != nil {
		inputTensor.Destroy()
		stateTensor.Destroy()
		srTensor.Destroy()
		outputTensor.Destroy()
		stateNTensor.Destroy()
		return nil, fmt.Errorf("silero: create session: %w", err)
	}

	return &sileroSession{
		cfg:          cfg,
		session:      session,
		inputTensor:  inputTensor,
		stateTensor:  stateTensor,
		srTensor:     srTensor,
		outputTensor: outputTensor,
		stateNTensor: stateNTensor,
		windowSize:   window,
	}, nil
}

// sileroSession implements vad.SessionHandle against one bound ORT session.
type sileroSession struct {
	cfg vad.Config

	session      *ort.AdvancedSession
	inputTensor  *ort.Tensor[float32]
	stateTensor  *ort.Tensor[float32]
	srTensor     *ort.Tensor[int64]
	outputTensor *ort.Tensor[float32]
	stateNTensor *ort.Tensor[float32]
	windowSize   int

	speaking bool
	closed   bool
}

// ProcessFrame implements vad.SessionHandle.
func (s *sileroSession) ProcessFrame(frame []byte) (vad.VADEvent, error) {
	if s.closed {
		return vad.VADEvent{}, fmt.Errorf("silero: session is closed")
	}
	wantBytes := s.windowSize * 2
	if len(frame) != wantBytes {
		return vad.VADEvent{}, fmt.Errorf("silero: frame is %d bytes, want %d (%d samples at 16-bit PCM)", len(frame), wantBytes, s.windowSize)
	}

	dst := s.inputTensor.GetData()
	for i := 0; i < s.windowSize; i++ {
		u := uint16(frame[2*i]) | uint16(frame[2*i+1])<<8
		dst[i] = float32(int16(u)) / 32768.0
	}

	if err := s.session.Run(); err != nil {
		return vad.VADEvent{}, fmt.Errorf("silero: inference: %w", err)
	}
	prob := float64(s.outputTensor.GetData()[0])
	copy(s.stateTensor.GetData(), s.stateNTensor.GetData())

	return vad.VADEvent{Type: s.classify(prob), Probability: prob}, nil
}

func (s *sileroSession) classify(prob float64) vad.VADEventType {
	switch {
	case prob >= s.cfg.SpeechThreshold:
		if !s.speaking {
			s.speaking = true
			return vad.VADSpeechStart
		}
		return vad.VADSpeechContinue
	case prob < s.cfg.SilenceThreshold:
		if s.speaking {
			s.speaking = false
			return vad.VADSpeechEnd
		}
		return vad.VADSilence
	default:
		// Hysteresis band: hold the previous classification.
		if s.speaking {
			return vad.VADSpeechContinue
		}
		return vad.VADSilence
	}
}

// Reset implements vad.SessionHandle.
func (s *sileroSession) Reset() {
	clearFloat32(s.stateTensor.GetData())
	s.speaking = false
}

// Close implements vad.SessionHandle.
func (s *sileroSession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.session.Destroy()
	s.inputTensor.Destroy()
	s.stateTensor.Destroy()
	s.srTensor.Destroy()
	s.outputTensor.Destroy()
	s.stateNTensor.Destroy()
	return nil
}

func clearFloat32(s []float32) {
	for i := range s {
		s[i] = 0
	}
}
