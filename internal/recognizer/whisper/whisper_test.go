package whisper_test

import (
	"os"
	"testing"

	"github.com/nullshift/vocalops/internal/recognizer"
	"github.com/nullshift/vocalops/internal/recognizer/whisper"
)

// testModelPath returns the path to a whisper model for integration tests.
// It reads from WHISPER_MODEL_PATH and skips the test if unset.
func testModelPath(t *testing.T) string {
	t.Helper()
	p := os.Getenv("WHISPER_MODEL_PATH")
	if p == "" {
		t.Skip("WHISPER_MODEL_PATH not set; skipping native whisper test")
	}
	return p
}

func TestLoadModel_EmptyPath_ReturnsError(t *testing.T) {
	_, err := whisper.LoadModel("")
	if err == nil {
		t.Fatal("expected error for empty model path, got nil")
	}
}

func TestLoadModel_InvalidPath_ReturnsError(t *testing.T) {
	_, err := whisper.LoadModel("/nonexistent/path/to/model.bin")
	if err == nil {
		t.Fatal("expected error for invalid model path, got nil")
	}
}

func TestNew_NilModel_ReturnsError(t *testing.T) {
	_, err := whisper.New(nil)
	if err == nil {
		t.Fatal("expected error for nil model, got nil")
	}
}

func TestRecognizer_AcceptPartialFinalize_Roundtrip(t *testing.T) {
	modelPath := testModelPath(t)
	model, err := whisper.LoadModel(modelPath)
	if err != nil {
		t.Fatalf("LoadModel: %v", err)
	}
	defer model.Close()

	r, err := whisper.New(model, whisper.WithLanguage("en"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	samples := make([]float32, recognizer.SampleRate) // 1s of silence
	if err := r.Accept(samples); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if _, err := r.Partial(); err != nil {
		t.Fatalf("Partial: %v", err)
	}
	if _, err := r.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
}

func TestRecognizer_Finalize_NoAudioAccepted_ReturnsEmptyString(t *testing.T) {
	modelPath := testModelPath(t)
	model, err := whisper.LoadModel(modelPath)
	if err != nil {
		t.Fatalf("LoadModel: %v", err)
	}
	defer model.Close()

	r, err := whisper.New(model)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	text, err := r.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if text != "" {
		t.Errorf("expected empty text with no audio accepted, got %q", text)
	}
}

func TestRecognizer_Reset_ClearsBufferWithoutDecoding(t *testing.T) {
	modelPath := testModelPath(t)
	model, err := whisper.LoadModel(modelPath)
	if err != nil {
		t.Fatalf("LoadModel: %v", err)
	}
	defer model.Close()

	r, err := whisper.New(model)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := r.Accept(make([]float32, recognizer.SampleRate)); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	r.Reset()
	text, err := r.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if text != "" {
		t.Errorf("expected empty text after Reset, got %q", text)
	}
}
