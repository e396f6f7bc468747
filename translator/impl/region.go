package impl

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"net/http"

	"github.com/cenkalti/backoff/v4"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	// Boxes narrower or shorter than this are usually noise from the detector.
	MIN_REGION_SIZE = 10
	// Drawn in place of the translation when every attempt failed. Reads "translation error".
	TRANSLATION_ERROR_MARKER = "[번역 오류]"
	TRANSLATION_MAX_RETRIES  = 4
)

var errEmptyRegion = errors.New("region has no vertices")

// Replaces the text of one region in img: sample colors, erase, translate, render.
// Failures never leave this function; they are reported through the outcome.
// Whatever was drawn before a failure stays in img.
func (p *pipeline) processRegion(ctx context.Context, img *image.RGBA, index int, region Region, languages Languages) (result regionResult) {
	result = regionResult{index: index, text: region.text}

	defer func() {
		if r := recover(); r != nil {
			result.outcome = OUTCOME_FAILED
			result.err = fmt.Errorf("panic while processing region: %v", r)
		}
	}()

	if len(region.vertices) == 0 {
		result.outcome = OUTCOME_FAILED
		result.err = errEmptyRegion
		return result
	}

	box := region.position()
	if box.width() < MIN_REGION_SIZE || box.height() < MIN_REGION_SIZE {
		result.outcome = OUTCOME_SKIPPED
		return result
	}

	// Both colors come from the original pixels, so the text keeps its color after the box is filled.
	result.background = sampleBackground(img, box)
	result.foreground = sampleForeground(img, box)
	if isLowContrast(result.foreground, result.background) {
		log.Printf("Region %d has low contrast: text %v on %v", index, result.foreground, result.background)
	}
	eraseRegion(img, box, result.background)

	outcome := OUTCOME_SUCCESS
	translated, err := p.translateText(ctx, region.text, languages)
	if err != nil {
		log.Printf("Failed to translate %q: %v", region.text, err)
		translated = TRANSLATION_ERROR_MARKER
		outcome = OUTCOME_PARTIAL_FAILURE
		result.err = err
	}
	result.translated = translated

	result.fontSize = fitFontSize(box.height())
	face, err := p.fontProvider.Face(float64(result.fontSize))
	if err != nil {
		result.outcome = OUTCOME_FAILED
		result.err = fmt.Errorf("failed to create font face: %w", err)
		return result
	}

	result.origin = image.Pt(int(box.left)+TEXT_INSET, int(box.top)+TEXT_INSET)
	drawText(img, result.origin, translated, face, result.foreground)

	result.outcome = outcome
	return result
}

func (p *pipeline) translateText(ctx context.Context, text string, languages Languages) (string, error) {
	translated, err := backoff.RetryWithData(func() (string, error) {
		translated, err := p.translation.Translate(ctx, text, languages.Source, languages.Target)
		if err != nil {
			if isPermanent(err) {
				return "", backoff.Permanent(err)
			}
			return "", err
		}
		return translated, nil
	}, backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(p.backoffDuration), TRANSLATION_MAX_RETRIES), ctx))
	if err != nil {
		return "", fmt.Errorf("failed to translate: %w", err)
	}
	return translated, nil
}

// Errors that would fail the same way on every attempt, e.g., a rejected API key.
func isPermanent(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			return true
		}
	}

	switch status.Code(err) {
	case codes.InvalidArgument, codes.PermissionDenied, codes.Unauthenticated, codes.NotFound:
		return true
	}
	return errors.Is(err, context.Canceled)
}
