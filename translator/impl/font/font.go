package font

import (
	"bytes"
	"fmt"
	"os"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
)

// FontProvider hands out faces of the single process-wide font.
// It is read-only after New and safe to share.
type FontProvider interface {
	// Returns a face of the font at the given pixel size.
	Face(size float64) (font.Face, error)
}

type fontProvider struct {
	// Set for plain .ttf files.
	trueType *truetype.Font
	// Set for collections (.ttc/.otc), e.g., AppleSDGothicNeo.ttc.
	openType *opentype.Font
}

// Magic tag at the start of a font collection file.
var collectionTag = []byte("ttcf")

// New loads the font at path. index selects the font inside a collection and is ignored otherwise.
// A missing or unparseable font is returned as an error; callers treat it as fatal.
func New(path string, index int) (FontProvider, error) {
	fontBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font %s: %w", path, err)
	}
	return Parse(fontBytes, index)
}

// Parse builds a provider from font file contents.
func Parse(fontBytes []byte, index int) (FontProvider, error) {
	if bytes.HasPrefix(fontBytes, collectionTag) {
		collection, err := opentype.ParseCollection(fontBytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse font collection: %w", err)
		}
		if index < 0 || index >= collection.NumFonts() {
			return nil, fmt.Errorf("font index %d out of range, collection has %d fonts", index, collection.NumFonts())
		}
		openType, err := collection.Font(index)
		if err != nil {
			return nil, fmt.Errorf("failed to load font %d from collection: %w", index, err)
		}
		return &fontProvider{openType: openType}, nil
	}

	trueType, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	return &fontProvider{trueType: trueType}, nil
}

func (fp *fontProvider) Face(size float64) (font.Face, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid font size %v", size)
	}
	if fp.openType != nil {
		return opentype.NewFace(fp.openType, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
	}
	return truetype.NewFace(fp.trueType, &truetype.Options{Size: size}), nil
}
