package tesseract

import (
	"context"
	"image"
)

// Client is an interface over a local Tesseract installation.
// Ref: https://pkg.go.dev/github.com/otiai10/gosseract/v2
// The implementation lives in the engine package, which needs cgo and libtesseract.
// This interface is used for mocking Tesseract in unit tests.
type Client interface {
	// Returns the recognized text lines in reading order.
	RecognizeLines(ctx context.Context, byteImage []byte) ([]Line, error)
}

type Line struct {
	Box  image.Rectangle
	Text string
	// In [0, 1].
	Confidence float64
}
