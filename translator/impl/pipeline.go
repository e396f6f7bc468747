package impl

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log"

	_ "golang.org/x/image/webp"

	"github.com/visionex-project/imagetrans/translator/impl/report"
)

// Tells at which stage an image was given up.
type imageError struct {
	stage report.Stage
	err   error
}

func (e *imageError) Error() string {
	return fmt.Sprintf("%s: %v", e.stage, e.err)
}

func (e *imageError) Unwrap() error {
	return e.err
}

// Process replaces the text of every region on a copy of img and returns the copy.
// Regions are processed one at a time in the given order, so a later region wins where boxes overlap.
func (p *pipeline) Process(ctx context.Context, img image.Image, regions []Region, languages Languages) (*image.RGBA, []regionResult) {
	canvas := newCanvas(img)
	results := make([]regionResult, 0, len(regions))
	for i, region := range regions {
		result := p.processRegion(ctx, canvas, i, region, languages)
		if result.outcome == OUTCOME_FAILED {
			log.Printf("Failed to process region %d %q: %v", i, region.text, result.err)
		}
		results = append(results, result)
	}
	return canvas, results
}

// Decodes, detects and processes one encoded image.
// When no text is found the result is an unmodified copy with no region results.
func (p *pipeline) translateImage(ctx context.Context, byteImage []byte, languages Languages) (*image.RGBA, []regionResult, error) {
	img, _, err := image.Decode(bytes.NewReader(byteImage))
	if err != nil {
		return nil, nil, &imageError{stage: report.StageDecode, err: err}
	}

	regions, err := p.detector.Detect(ctx, byteImage)
	if err != nil {
		return nil, nil, &imageError{stage: report.StageDetect, err: err}
	}

	translated, results := p.Process(ctx, img, regions, languages)
	return translated, results, nil
}

// Copies img into an opaque RGB raster with its origin at (0, 0).
// Alpha is dropped without blending, so transparent pixels keep their color.
func newCanvas(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	if opaque, ok := img.(interface{ Opaque() bool }); ok && opaque.Opaque() {
		draw.Draw(canvas, canvas.Bounds(), img, bounds.Min, draw.Src)
		return canvas
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			pixel := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			canvas.SetRGBA(x-bounds.Min.X, y-bounds.Min.Y, color.RGBA{R: pixel.R, G: pixel.G, B: pixel.B, A: 255})
		}
	}
	return canvas
}
