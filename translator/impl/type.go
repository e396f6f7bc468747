package impl

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/text/language"

	"github.com/visionex-project/imagetrans/pkg/utils"
)

// A detected text occurrence. Regions are produced once by a detector and never modified afterwards.
type Region struct {
	// The detected polygon, usually four corners. E.g., [(10, 10), (110, 10), (110, 40), (10, 40)]
	vertices []vertex
	// The recognized source-language text. E.g., "你好"
	text string
	// Detector confidence in [0, 1]. Not used for processing.
	confidence float64
}

type vertex struct {
	x int32
	y int32
}

func NewRegion(points []image.Point, text string, confidence float64) Region {
	return Region{
		vertices: utils.Map(points, func(point image.Point) vertex {
			return vertex{x: int32(point.X), y: int32(point.Y)}
		}),
		text:       text,
		confidence: confidence,
	}
}

func (r Region) Text() string {
	return r.text
}

func (r Region) Confidence() float64 {
	return r.confidence
}

// The axis-aligned bounding box over the polygon vertices.
func (r Region) position() position {
	return utils.Reduce(r.vertices, func(current position, v vertex) position {
		return position{
			top:    min(current.top, v.y),
			left:   min(current.left, v.x),
			bottom: max(current.bottom, v.y),
			right:  max(current.right, v.x),
		}
	}, position{
		top:    math.MaxInt32,
		left:   math.MaxInt32,
		bottom: math.MinInt32,
		right:  math.MinInt32,
	})
}

// Represents the bounding box coordinates (top, left, bottom, right) of a region.
// Both edges are pixel coordinates, so width = right - left.
type position struct {
	top    int32
	left   int32
	bottom int32
	right  int32
}

func (p position) width() int {
	return int(p.right - p.left)
}

func (p position) height() int {
	return int(p.bottom - p.top)
}

// Half-open rectangle used for sampling, matching a crop to (left, top, right, bottom).
func (p position) cropRect() image.Rectangle {
	return image.Rect(int(p.left), int(p.top), int(p.right), int(p.bottom))
}

// Rectangle including the right and bottom edges, used for filling.
func (p position) fillRect() image.Rectangle {
	return image.Rect(int(p.left), int(p.top), int(p.right)+1, int(p.bottom)+1)
}

func combinedPosition(positions []position) position {
	return utils.Reduce(positions, func(combined position, current position) position {
		return position{
			top:    min(combined.top, current.top),
			left:   min(combined.left, current.left),
			bottom: max(combined.bottom, current.bottom),
			right:  max(combined.right, current.right),
		}
	}, position{
		top:    math.MaxInt32,
		left:   math.MaxInt32,
		bottom: math.MinInt32,
		right:  math.MinInt32,
	})
}

func (p position) corners() []image.Point {
	return []image.Point{
		{X: int(p.left), Y: int(p.top)},
		{X: int(p.right), Y: int(p.top)},
		{X: int(p.right), Y: int(p.bottom)},
		{X: int(p.left), Y: int(p.bottom)},
	}
}

// Source and target language of a translation run. E.g., {zh-CN, ko}
type Languages struct {
	Source language.Tag
	Target language.Tag
}

// The terminal state of one region.
type regionOutcome string

const (
	OUTCOME_SUCCESS regionOutcome = "success"
	// Too small to be a reliable detection. The image is untouched.
	OUTCOME_SKIPPED regionOutcome = "skipped"
	// The region was erased, but the translation failed and the marker text was drawn instead.
	OUTCOME_PARTIAL_FAILURE regionOutcome = "partial_failure"
	// Aborted. Any erasure committed before the failure stays in the image.
	OUTCOME_FAILED regionOutcome = "failed"
)

// What happened to one region, reported back to the pipeline.
type regionResult struct {
	// Position of the region in detector order.
	index      int
	text       string
	translated string
	outcome    regionOutcome
	background color.RGBA
	foreground color.RGBA
	fontSize   int
	// Top-left of the drawn text. E.g., (12, 12)
	origin image.Point
	err    error
}

func (r regionResult) errorMessage() string {
	if r.err == nil {
		return ""
	}
	return r.err.Error()
}
