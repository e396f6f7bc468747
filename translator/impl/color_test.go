package impl

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSampleBackground(t *testing.T) {
	img := newTestImage(200, 100, image.Rect(20, 15, 60, 35), black)
	box := boxRegion(10, 10, 110, 40, "").position()

	// 800 of 3000 pixels are black: 255 * 2200 / 3000 = 187.
	assert.Equal(t, color.RGBA{R: 187, G: 187, B: 187, A: 255}, sampleBackground(img, box))
	assert.Equal(t, sampleBackground(img, box), sampleBackground(img, box))
}

func TestSampleBackgroundFloorsMean(t *testing.T) {
	img := newTestImage(2, 1, image.Rect(0, 0, 1, 1), color.RGBA{R: 0, G: 1, B: 2, A: 255})
	box := position{top: 0, left: 0, bottom: 1, right: 2}

	// (0+255)/2, (1+255)/2, (2+255)/2
	assert.Equal(t, color.RGBA{R: 127, G: 128, B: 128, A: 255}, sampleBackground(img, box))
}

func TestSampleBackgroundEmptyCrop(t *testing.T) {
	img := newTestImage(20, 20, image.Rectangle{}, black)

	assert.Equal(t, black, sampleBackground(img, position{top: 5, left: 5, bottom: 5, right: 15}))
	assert.Equal(t, black, sampleBackground(img, position{top: 50, left: 50, bottom: 60, right: 60}))
}

func TestSampleForeground(t *testing.T) {
	img := newTestImage(100, 50, image.Rect(10, 10, 30, 30), red)
	// Fewer dark pixels of another color.
	for x := 40; x < 50; x++ {
		img.SetRGBA(x, 20, black)
	}
	box := position{top: 0, left: 0, bottom: 50, right: 100}

	assert.Equal(t, red, sampleForeground(img, box))
}

func TestSampleForegroundTieGoesToFirstSeen(t *testing.T) {
	img := newTestImage(10, 10, image.Rectangle{}, black)
	blue := color.RGBA{B: 150, A: 255}
	// Row-major order meets blue first.
	img.SetRGBA(5, 1, blue)
	img.SetRGBA(6, 1, blue)
	img.SetRGBA(0, 2, red)
	img.SetRGBA(1, 2, red)

	assert.Equal(t, blue, sampleForeground(img, position{top: 0, left: 0, bottom: 10, right: 10}))
}

func TestSampleForegroundFallsBackToBlack(t *testing.T) {
	// Average 220 is not dark enough.
	img := newTestImage(10, 10, image.Rect(0, 0, 10, 10), color.RGBA{R: 220, G: 220, B: 220, A: 255})

	assert.Equal(t, black, sampleForeground(img, position{top: 0, left: 0, bottom: 10, right: 10}))
	assert.Equal(t, black, sampleForeground(img, position{top: 3, left: 3, bottom: 3, right: 3}))
}

func TestIsLowContrast(t *testing.T) {
	assert.True(t, isLowContrast(color.RGBA{R: 100, G: 100, B: 100, A: 255}, color.RGBA{R: 101, G: 100, B: 100, A: 255}))
	assert.False(t, isLowContrast(black, white))
}
