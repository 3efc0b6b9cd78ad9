package render

import "errors"

var (
	// ErrNilProvider is returned when a nil device provider is passed.
	ErrNilProvider = errors.New("render: nil device provider")

	// ErrProviderNotHAL is returned when a provider does not expose a HAL
	// device and queue.
	ErrProviderNotHAL = errors.New("render: provider does not expose HAL types")

	// ErrZeroSize is returned for a zero-width or zero-height target.
	ErrZeroSize = errors.New("render: zero target size")

	// ErrBindingConflict is returned when the main camera's bind index
	// collides with the light binding.
	ErrBindingConflict = errors.New("render: camera binding collides with light binding")

	// ErrGPUTimeout is returned when the GPU does not finish a frame
	// within the submit timeout.
	ErrGPUTimeout = errors.New("render: timed out waiting for GPU")
)
