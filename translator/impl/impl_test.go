package impl

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/text/language"

	"github.com/visionex-project/imagetrans/translator/impl/font"
	"github.com/visionex-project/imagetrans/translator/impl/storage"
)

var (
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	black = color.RGBA{A: 255}
	red   = color.RGBA{R: 200, G: 30, B: 30, A: 255}
)

var testLanguages = Languages{Source: language.SimplifiedChinese, Target: language.Korean}

type fakeTranslator struct {
	// Source text -> translation. Texts missing here are returned unchanged.
	translations map[string]string
	err          error
	calls        int
}

func (f *fakeTranslator) Translate(ctx context.Context, text string, source language.Tag, target language.Tag) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if translated, ok := f.translations[text]; ok {
		return translated, nil
	}
	return text, nil
}

type fakeDetector struct {
	detect func(byteImage []byte) ([]Region, error)
}

func (f *fakeDetector) Detect(ctx context.Context, byteImage []byte) ([]Region, error) {
	return f.detect(byteImage)
}

type panickingFontProvider struct{}

func (panickingFontProvider) Face(size float64) (xfont.Face, error) {
	panic("glyph cache corrupted")
}

func testFontProvider(t *testing.T) font.FontProvider {
	t.Helper()
	fontProvider, err := font.Parse(goregular.TTF, 0)
	require.NoError(t, err)
	return fontProvider
}

func newTestPipeline(t *testing.T, detector Detector, translator *fakeTranslator) *pipeline {
	t.Helper()
	return New(
		detector,
		translator,
		testFontProvider(t),
		testLanguages,
		Storage{
			Client:           storage.NewLocal(),
			DownloadBucket:   t.TempDir(),
			TranslatedBucket: t.TempDir(),
		},
		time.Millisecond, /* =backoffDuration */
	)
}

// A white image with a solid block of ink in rect.
func newTestImage(width int, height int, ink image.Rectangle, inkColor color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(white), image.Point{}, draw.Src)
	draw.Draw(img, ink, image.NewUniform(inkColor), image.Point{}, draw.Src)
	return img
}

func boxRegion(left int, top int, right int, bottom int, text string) Region {
	return NewRegion([]image.Point{
		{X: left, Y: top},
		{X: right, Y: top},
		{X: right, Y: bottom},
		{X: left, Y: bottom},
	}, text, 0.9)
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	buffer := new(bytes.Buffer)
	require.NoError(t, png.Encode(buffer, img))
	return buffer.Bytes()
}

func cloneRGBA(img *image.RGBA) *image.RGBA {
	clone := image.NewRGBA(img.Bounds())
	copy(clone.Pix, img.Pix)
	return clone
}

// Calls fn for every pixel of rect.
func eachPixel(rect image.Rectangle, fn func(x int, y int)) {
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			fn(x, y)
		}
	}
}
