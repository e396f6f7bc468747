package impl

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strings"
	"unicode"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"

	"github.com/visionex-project/imagetrans/pkg/utils"
	"github.com/visionex-project/imagetrans/translator/impl/documentai"
	"github.com/visionex-project/imagetrans/translator/impl/tesseract"
	"github.com/visionex-project/imagetrans/translator/impl/vision"
)

type wordSegment struct {
	text       string
	position   position
	confidence float64
}

type lineSegment struct {
	words []wordSegment
}

func (l lineSegment) position() position {
	return combinedPosition(utils.Map(l.words, func(word wordSegment) position {
		return word.position
	}))
}

// Joins the words of a line. Only neighbours that are both Latin letters or digits get a space between them,
// so Chinese text stays unbroken. E.g., ["包邮", "Free", "Shipping"] -> "包邮Free Shipping"
func (l lineSegment) text() string {
	var builder strings.Builder
	for i, word := range l.words {
		if i > 0 && needsSpace(l.words[i-1].text, word.text) {
			builder.WriteString(" ")
		}
		builder.WriteString(word.text)
	}
	return builder.String()
}

func (l lineSegment) toRegion() Region {
	confidences := utils.Map(l.words, func(word wordSegment) float64 {
		return word.confidence
	})
	return NewRegion(
		l.position().corners(),
		l.text(),
		utils.Reduce(confidences, func(sum float64, confidence float64) float64 {
			return sum + confidence
		}, 0)/float64(max(len(confidences), 1)),
	)
}

func needsSpace(previous string, current string) bool {
	previousRunes := []rune(previous)
	currentRunes := []rune(current)
	if len(previousRunes) == 0 || len(currentRunes) == 0 {
		return false
	}
	return isSpacedRune(previousRunes[len(previousRunes)-1]) && isSpacedRune(currentRunes[0])
}

func isSpacedRune(char rune) bool {
	return unicode.IsDigit(char) || unicode.Is(unicode.Latin, char)
}

// Groups words into single lines and sorts the lines from top to bottom.
// Words must be in the detector's reading order.
func toLines(words []wordSegment) []lineSegment {
	lines := utils.Reduce(words, func(lines []lineSegment, word wordSegment) []lineSegment {
		if len(lines) == 0 {
			return []lineSegment{{words: []wordSegment{word}}}
		}

		lastLine := lines[len(lines)-1]
		lastWord := lastLine.words[len(lastLine.words)-1]
		if isSameLine(lastWord, word) {
			lastLine.words = append(lastLine.words, word)
			lines[len(lines)-1] = lastLine
			return lines
		}
		return append(lines, lineSegment{words: []wordSegment{word}})
	}, []lineSegment{})

	sort.SliceStable(lines, func(i int, j int) bool {
		return lines[i].position().top < lines[j].position().top
	})
	return lines
}

func isSameLine(previous wordSegment, current wordSegment) bool {
	if previous.position.left > current.position.left {
		return false
	}
	middleOfHeight := (current.position.top + current.position.bottom) / 2
	return middleOfHeight > previous.position.top &&
		middleOfHeight < previous.position.bottom &&
		previous.position.right >= current.position.left-int32(math.Max(float64(charWidth(previous)), float64(charWidth(current)))*1.5)
}

func charWidth(word wordSegment) int32 {
	return (word.position.right - word.position.left) / max(utils.Reduce([]rune(word.text), func(charCount int32, char rune) int32 {
		if unicode.IsLetter(char) {
			return charCount + 1
		}
		return charCount
	}, 0), 1)
}

type tesseractDetector struct {
	tesseract tesseract.Client
}

// NewTesseractDetector detects text lines with a local Tesseract installation.
func NewTesseractDetector(tesseract tesseract.Client) Detector {
	return &tesseractDetector{tesseract: tesseract}
}

func (d *tesseractDetector) Detect(ctx context.Context, byteImage []byte) ([]Region, error) {
	lines, err := d.tesseract.RecognizeLines(ctx, byteImage)
	if err != nil {
		return nil, fmt.Errorf("failed to detect text: %w", err)
	}

	return utils.Map(lines, func(line tesseract.Line) Region {
		box := position{
			top:    int32(line.Box.Min.Y),
			left:   int32(line.Box.Min.X),
			bottom: int32(line.Box.Max.Y),
			right:  int32(line.Box.Max.X),
		}
		// Tesseract puts spaces between Chinese characters.
		words := utils.Map(strings.Fields(line.Text), func(text string) wordSegment {
			return wordSegment{text: text}
		})
		return NewRegion(box.corners(), lineSegment{words: words}.text(), line.Confidence)
	}), nil
}

type visionDetector struct {
	vision vision.Client
}

// NewVisionDetector detects text with the Cloud Vision document text detection.
func NewVisionDetector(vision vision.Client) Detector {
	return &visionDetector{vision: vision}
}

func (d *visionDetector) Detect(ctx context.Context, byteImage []byte) ([]Region, error) {
	textAnnotation, err := d.vision.DetectDocumentText(ctx, &visionpb.Image{Content: byteImage}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to detect text: %w", err)
	}
	return utils.Map(toLines(textAnnotationToWordSegments(textAnnotation)), lineSegment.toRegion), nil
}

func textAnnotationToWordSegments(textAnnotation *visionpb.TextAnnotation) []wordSegment {
	blocks := utils.FlatMap(textAnnotation.GetPages(), func(page *visionpb.Page) []*visionpb.Block {
		return page.GetBlocks()
	})
	paragraphs := utils.FlatMap(blocks, func(block *visionpb.Block) []*visionpb.Paragraph {
		return block.GetParagraphs()
	})
	words := utils.FlatMap(paragraphs, func(paragraph *visionpb.Paragraph) []*visionpb.Word {
		return paragraph.GetWords()
	})

	return utils.Map(words, func(word *visionpb.Word) wordSegment {
		return wordSegment{
			text: utils.Reduce(word.GetSymbols(), func(text string, symbol *visionpb.Symbol) string {
				return text + symbol.GetText()
			}, ""),
			position: verticesPosition(utils.Map(word.GetBoundingBox().GetVertices(), func(v *visionpb.Vertex) vertex {
				return vertex{x: v.GetX(), y: v.GetY()}
			})),
			confidence: float64(word.GetConfidence()),
		}
	})
}

type DocumentaiSpec struct {
	// E.g., special-tf-prod
	ProjectID string
	// E.g., us
	Location string
	// E.g., 98dae69a95e1906
	ProcessorID string
}

type documentaiDetector struct {
	documentai     documentai.Client
	documentaiSpec DocumentaiSpec
}

// NewDocumentaiDetector detects text lines with a Document AI OCR processor.
func NewDocumentaiDetector(documentai documentai.Client, documentaiSpec DocumentaiSpec) Detector {
	return &documentaiDetector{documentai: documentai, documentaiSpec: documentaiSpec}
}

func (d *documentaiDetector) Detect(ctx context.Context, byteImage []byte) ([]Region, error) {
	request := &documentaipb.ProcessRequest{
		Name: fmt.Sprintf("projects/%s/locations/%s/processors/%s", d.documentaiSpec.ProjectID, d.documentaiSpec.Location, d.documentaiSpec.ProcessorID),
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  byteImage,
				MimeType: http.DetectContentType(byteImage),
			},
		},
	}
	response, err := d.documentai.ProcessDocument(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("failed to process document: %w", err)
	}
	return documentToRegions(response.GetDocument()), nil
}

// Document structure:
// Document
//
//	├── Text
//	└── Pages []Document_Page
//	     ├── Dimension (width, height)
//	     └── Lines []Document_Page_Line
//	          └── Layout
//	               ├── TextAnchor.TextSegments [](StartIndex, EndIndex) into Text
//	               ├── BoundingPoly.Vertices or NormalizedVertices
//	               └── Confidence
func documentToRegions(document *documentaipb.Document) []Region {
	text := []rune(document.GetText())
	lines := utils.FlatMap(document.GetPages(), func(page *documentaipb.Document_Page) []lineSegment {
		return utils.Map(page.GetLines(), func(line *documentaipb.Document_Page_Line) lineSegment {
			layout := line.GetLayout()
			lineText := strings.Join(utils.Map(layout.GetTextAnchor().GetTextSegments(), func(segment *documentaipb.Document_TextAnchor_TextSegment) string {
				start := min(int(segment.GetStartIndex()), len(text))
				end := min(int(segment.GetEndIndex()), len(text))
				return string(text[start:end])
			}), "")
			return lineSegment{words: []wordSegment{{
				text:       strings.TrimSpace(lineText),
				position:   layoutPosition(layout.GetBoundingPoly(), page.GetDimension()),
				confidence: float64(layout.GetConfidence()),
			}}}
		})
	})

	lines = utils.Filter(lines, func(line lineSegment) bool {
		return line.text() != ""
	})
	sort.SliceStable(lines, func(i int, j int) bool {
		return lines[i].position().top < lines[j].position().top
	})
	return utils.Map(lines, lineSegment.toRegion)
}

// Pixel vertices are preferred; normalized vertices are scaled by the page dimension.
func layoutPosition(boundingPoly *documentaipb.BoundingPoly, dimension *documentaipb.Document_Page_Dimension) position {
	if len(boundingPoly.GetVertices()) > 0 {
		return verticesPosition(utils.Map(boundingPoly.GetVertices(), func(v *documentaipb.Vertex) vertex {
			return vertex{x: v.GetX(), y: v.GetY()}
		}))
	}
	return verticesPosition(utils.Map(boundingPoly.GetNormalizedVertices(), func(v *documentaipb.NormalizedVertex) vertex {
		return vertex{
			x: int32(math.Round(float64(v.GetX() * dimension.GetWidth()))),
			y: int32(math.Round(float64(v.GetY() * dimension.GetHeight()))),
		}
	}))
}

func verticesPosition(vertices []vertex) position {
	return Region{vertices: vertices}.position()
}
