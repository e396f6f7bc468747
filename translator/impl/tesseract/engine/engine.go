package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/visionex-project/imagetrans/translator/impl/tesseract"
)

type engine struct {
	// A gosseract client wraps a Tesseract API handle that must not be shared, so one is created per call.
	clientFactory func() *gosseract.Client
	// Tesseract language codes. E.g., ["chi_sim"]
	languages []string
}

func New(languages []string) tesseract.Client {
	return &engine{clientFactory: gosseract.NewClient, languages: languages}
}

func (e *engine) RecognizeLines(ctx context.Context, byteImage []byte) ([]tesseract.Line, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client := e.clientFactory()
	defer client.Close()

	if len(e.languages) > 0 {
		if err := client.SetLanguage(e.languages...); err != nil {
			return nil, fmt.Errorf("failed to set languages: %w", err)
		}
	}
	if err := client.SetImageFromBytes(byteImage); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("failed to recognize text lines: %w", err)
	}

	lines := make([]tesseract.Line, 0, len(boxes))
	for _, box := range boxes {
		text := strings.TrimSpace(box.Word)
		if text == "" {
			continue
		}
		lines = append(lines, tesseract.Line{
			Box:        box.Box,
			Text:       text,
			Confidence: box.Confidence / 100.0,
		})
	}
	return lines, nil
}
