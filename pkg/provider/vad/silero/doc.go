// Package silero implements the vad.Engine interface on top of Silero VAD v5,
// run locally through ONNX Runtime.
//
// The real engine is only compiled in with the "silero" build tag, since it
// links against the ONNX Runtime shared library (see ortlib.go for how that
// library is located at runtime). A build without the tag gets New returning
// an error instead of a working engine, so callers that accidentally omit the
// tag fail loudly at startup rather than silently falling back to a no-op.
package silero
