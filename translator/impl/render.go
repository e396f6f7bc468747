package impl

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
)

// Inset between the box corner and the drawn text.
const TEXT_INSET = 2

// Draws text with its top-left corner at origin, directly on img.
// No wrapping, centering or clipping: text longer than the box extends past it.
func drawText(img *image.RGBA, origin image.Point, text string, face font.Face, textColor color.Color) {
	drawingContext := gg.NewContextForRGBA(img)
	drawingContext.SetFontFace(face)
	drawingContext.SetColor(textColor)

	// DrawString takes the baseline, so move down by the ascent to anchor the top of the glyphs.
	ascent := face.Metrics().Ascent.Ceil()
	drawingContext.DrawString(
		text,
		float64(origin.X),        /* =x */
		float64(origin.Y+ascent), /* =y (baseline) */
	)
}
