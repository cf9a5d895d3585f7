package pixform

import "errors"

// Validation errors reported before any dispatch work starts. When one of
// these is returned, no buffer has been staged and no transform has run.
var (
	// ErrInvalidDimensions indicates a non-positive width or height.
	ErrInvalidDimensions = errors.New("pixform: width and height must be positive")

	// ErrBufferSize indicates a pixel buffer whose length does not match
	// width*height*PixelBytes.
	ErrBufferSize = errors.New("pixform: buffer length does not match dimensions")

	// ErrNilTransform indicates a nil transform passed via WithTransform.
	ErrNilTransform = errors.New("pixform: transform must not be nil")
)
