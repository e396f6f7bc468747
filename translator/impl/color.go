package impl

import (
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	// Pixels whose average channel intensity is below this value are treated as glyph ink.
	DARK_PIXEL_THRESHOLD = 220
	// CIEDE2000 distance under which the drawn text is considered hard to read on its fill.
	// Only used for logging.
	LOW_CONTRAST_COLOR_DIFF_THRESHOLD = 0.1
)

// Mean color of the box. Glyph strokes cover a minority of the box, so the mean stays close to the background.
func sampleBackground(img *image.RGBA, box position) color.RGBA {
	rect := box.cropRect().Intersect(img.Bounds())
	count := rect.Dx() * rect.Dy()
	if count == 0 {
		return color.RGBA{A: 255}
	}

	var r, g, b int
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			pixel := img.RGBAAt(x, y)
			r += int(pixel.R)
			g += int(pixel.G)
			b += int(pixel.B)
		}
	}
	return color.RGBA{R: uint8(r / count), G: uint8(g / count), B: uint8(b / count), A: 255}
}

// Most frequent exact color among the dark pixels of the box. Ties go to the color seen first in row-major order.
// Falls back to black when no pixel is dark enough, e.g., light text on a light background.
func sampleForeground(img *image.RGBA, box position) color.RGBA {
	rect := box.cropRect().Intersect(img.Bounds())

	counts := map[color.RGBA]int{}
	firstSeen := []color.RGBA{}
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			pixel := img.RGBAAt(x, y)
			if int(pixel.R)+int(pixel.G)+int(pixel.B) >= 3*DARK_PIXEL_THRESHOLD {
				continue
			}
			key := color.RGBA{R: pixel.R, G: pixel.G, B: pixel.B, A: 255}
			if counts[key] == 0 {
				firstSeen = append(firstSeen, key)
			}
			counts[key]++
		}
	}

	dominant := color.RGBA{A: 255}
	dominantCount := 0
	for _, key := range firstSeen {
		if counts[key] > dominantCount {
			dominant = key
			dominantCount = counts[key]
		}
	}
	return dominant
}

func isLowContrast(foreground color.RGBA, background color.RGBA) bool {
	textColor, _ := colorful.MakeColor(foreground)
	fillColor, _ := colorful.MakeColor(background)
	return textColor.DistanceCIEDE2000(fillColor) < LOW_CONTRAST_COLOR_DIFF_THRESHOLD
}
