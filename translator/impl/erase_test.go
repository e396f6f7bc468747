package impl

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEraseRegionIncludesEdges(t *testing.T) {
	img := newTestImage(50, 50, image.Rectangle{}, black)
	fill := color.RGBA{R: 10, G: 20, B: 30, A: 255}

	eraseRegion(img, position{top: 10, left: 10, bottom: 20, right: 30}, fill)

	eachPixel(img.Bounds(), func(x int, y int) {
		inside := x >= 10 && x <= 30 && y >= 10 && y <= 20
		if inside {
			assert.Equal(t, fill, img.RGBAAt(x, y), "(%d, %d)", x, y)
		} else {
			assert.Equal(t, white, img.RGBAAt(x, y), "(%d, %d)", x, y)
		}
	})
}

func TestEraseRegionClipsToImage(t *testing.T) {
	img := newTestImage(20, 20, image.Rectangle{}, black)

	assert.NotPanics(t, func() {
		eraseRegion(img, position{top: 15, left: 15, bottom: 40, right: 40}, red)
		eraseRegion(img, position{top: 50, left: 50, bottom: 60, right: 60}, red)
	})
	assert.Equal(t, red, img.RGBAAt(19, 19))
	assert.Equal(t, white, img.RGBAAt(14, 14))
}

func TestEraseRemovesForeground(t *testing.T) {
	img := newTestImage(200, 100, image.Rect(20, 15, 60, 35), black)
	box := boxRegion(10, 10, 110, 40, "").position()
	foreground := sampleForeground(img, box)
	background := sampleBackground(img, box)

	eraseRegion(img, box, background)

	eachPixel(box.cropRect(), func(x int, y int) {
		assert.NotEqual(t, foreground, img.RGBAAt(x, y))
	})
}
