package audio

import "fmt"

// CaptureUnavailableError is returned by [Capture.Start] when a source could
// not be acquired after retrying, and is sent on a Capture's error channel
// when an already-running capture fails terminally.
type CaptureUnavailableError struct {
	Source   Source
	Attempts int
	Err      error
}

func (e *CaptureUnavailableError) Error() string {
	return fmt.Sprintf("audio: capture unavailable for source %s after %d attempts: %v", e.Source, e.Attempts, e.Err)
}

func (e *CaptureUnavailableError) Unwrap() error {
	return e.Err
}
