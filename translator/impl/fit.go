package impl

import "math"

const (
	// Approximate ratio of cap height to the detected box height.
	FONT_SIZE_RATIO = 0.8
	// Smallest font size that stays readable.
	MIN_FONT_SIZE = 10
)

// Font size for a region of the given pixel height.
// The width of the translated text is not considered, so long translations can overflow the box.
func fitFontSize(regionHeight int) int {
	return max(MIN_FONT_SIZE, int(math.Round(float64(regionHeight)*FONT_SIZE_RATIO)))
}
