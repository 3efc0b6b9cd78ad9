package resource

import "errors"

var (
	// ErrNilDevice is returned when the manager has no device or queue.
	ErrNilDevice = errors.New("resource: nil device or queue")

	// ErrEmptyBuffer is returned when creating a buffer from no data.
	ErrEmptyBuffer = errors.New("resource: empty buffer data")

	// ErrBufferNotFound is returned for an unknown BufferID.
	ErrBufferNotFound = errors.New("resource: buffer not found")

	// ErrOutOfBounds is returned when a write exceeds the stored buffer size.
	ErrOutOfBounds = errors.New("resource: write out of bounds")

	// ErrMisalignedOffset is returned when a write offset is not 4-byte aligned.
	ErrMisalignedOffset = errors.New("resource: write offset not 4-byte aligned")

	// ErrMisalignedSize is returned when a partial write is not a multiple
	// of 4 bytes.
	ErrMisalignedSize = errors.New("resource: write size not a multiple of 4 bytes")

	// ErrVertexData is returned when vertex data does not match the vertex format.
	ErrVertexData = errors.New("resource: vertex data does not match format")

	// ErrNoIndices is returned when a mesh is created without indices.
	ErrNoIndices = errors.New("resource: mesh has no indices")
)
