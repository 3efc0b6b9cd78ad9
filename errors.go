package g3d

import "errors"

// ErrClosed is returned by Frame after Close.
var ErrClosed = errors.New("g3d: engine closed")
