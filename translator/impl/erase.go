package impl

import (
	"image"
	"image/color"
	"image/draw"
)

// Paints the box, edges included, with a single solid color.
// Pixels outside the image are ignored.
func eraseRegion(img *image.RGBA, box position, fill color.RGBA) {
	rect := box.fillRect().Intersect(img.Bounds())
	if rect.Empty() {
		return
	}
	draw.Draw(img, rect, image.NewUniform(fill), image.Point{}, draw.Src)
}
