package transcriber

import "errors"

// ErrFramesFull is returned by Push when the transcriber's internal frame
// channel is saturated. The caller (a bus listener) is expected to treat
// this the same as any other BusBackpressure condition: drop the frame and
// continue.
var ErrFramesFull = errors.New("transcriber: frame channel full")
