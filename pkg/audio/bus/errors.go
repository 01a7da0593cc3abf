package bus

import "errors"

// ErrClosed is returned by [Listener.Recv] once the listener has been
// closed and its queue has drained.
var ErrClosed = errors.New("bus: listener closed")
