package impl

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/http"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestProcessRegionScenario(t *testing.T) {
	img := newTestImage(200, 100, image.Rect(20, 15, 60, 35), black)
	translator := &fakeTranslator{translations: map[string]string{"你好": "안녕"}}
	p := newTestPipeline(t, nil, translator)

	result := p.processRegion(context.Background(), img, 0, boxRegion(10, 10, 110, 40, "你好"), testLanguages)

	require.NoError(t, result.err)
	assert.Equal(t, OUTCOME_SUCCESS, result.outcome)
	assert.Equal(t, "안녕", result.translated)
	assert.Equal(t, 24, result.fontSize)
	assert.Equal(t, image.Pt(12, 12), result.origin)
	assert.Equal(t, uint8(187), result.background.R)
	assert.Equal(t, black, result.foreground)

	// The corners are outside the drawn text, so they hold the fill.
	for _, corner := range []image.Point{{X: 10, Y: 10}, {X: 110, Y: 10}, {X: 110, Y: 40}, {X: 10, Y: 40}} {
		assert.Equal(t, result.background, img.RGBAAt(corner.X, corner.Y), "%v", corner)
	}
	assert.Equal(t, white, img.RGBAAt(111, 41))
	assert.Equal(t, 1, translator.calls)
}

func TestProcessRegionErasesWholeBox(t *testing.T) {
	img := newTestImage(200, 100, image.Rect(20, 15, 60, 35), black)
	// Nothing is drawn for an empty translation, so only the fill remains.
	p := newTestPipeline(t, nil, &fakeTranslator{translations: map[string]string{"你好": ""}})

	result := p.processRegion(context.Background(), img, 0, boxRegion(10, 10, 110, 40, "你好"), testLanguages)

	assert.Equal(t, OUTCOME_SUCCESS, result.outcome)
	eachPixel(image.Rect(10, 10, 111, 41), func(x int, y int) {
		assert.Equal(t, result.background, img.RGBAAt(x, y), "(%d, %d)", x, y)
	})
}

func TestProcessRegionSkipsSmallRegions(t *testing.T) {
	tests := []struct {
		name   string
		region Region
	}{
		{name: "short", region: boxRegion(10, 10, 110, 19, "小")},
		{name: "narrow", region: boxRegion(10, 10, 19, 40, "小")},
		{name: "single point", region: NewRegion([]image.Point{{X: 30, Y: 30}}, "小", 0.5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := newTestImage(200, 100, image.Rect(12, 12, 18, 18), black)
			before := cloneRGBA(img)
			translator := &fakeTranslator{}
			p := newTestPipeline(t, nil, translator)

			result := p.processRegion(context.Background(), img, 0, tt.region, testLanguages)

			assert.Equal(t, OUTCOME_SKIPPED, result.outcome)
			assert.Equal(t, before.Pix, img.Pix)
			assert.Zero(t, translator.calls)
		})
	}
}

func TestProcessRegionRendersMarkerOnTranslationFailure(t *testing.T) {
	img := newTestImage(200, 100, image.Rect(20, 15, 60, 35), black)
	translator := &fakeTranslator{err: errors.New("connection reset")}
	p := newTestPipeline(t, nil, translator)

	result := p.processRegion(context.Background(), img, 0, boxRegion(10, 10, 110, 40, "你好"), testLanguages)

	assert.Equal(t, OUTCOME_PARTIAL_FAILURE, result.outcome)
	assert.Equal(t, TRANSLATION_ERROR_MARKER, result.translated)
	assert.ErrorContains(t, result.err, "connection reset")
	// The first attempt and every retry.
	assert.Equal(t, TRANSLATION_MAX_RETRIES+1, translator.calls)
	// Erased even though the translation failed.
	assert.Equal(t, result.background, img.RGBAAt(105, 11))
	assert.Equal(t, 24, result.fontSize)
}

func TestProcessRegionDoesNotRetryPermanentErrors(t *testing.T) {
	img := newTestImage(200, 100, image.Rect(20, 15, 60, 35), black)
	translator := &fakeTranslator{err: status.Error(codes.PermissionDenied, "API key not valid")}
	p := newTestPipeline(t, nil, translator)

	result := p.processRegion(context.Background(), img, 0, boxRegion(10, 10, 110, 40, "你好"), testLanguages)

	assert.Equal(t, OUTCOME_PARTIAL_FAILURE, result.outcome)
	assert.Equal(t, 1, translator.calls)
}

func TestProcessRegionRecoversFromPanic(t *testing.T) {
	img := newTestImage(200, 100, image.Rect(20, 15, 60, 35), black)
	p := newTestPipeline(t, nil, &fakeTranslator{})
	p.fontProvider = panickingFontProvider{}

	result := p.processRegion(context.Background(), img, 3, boxRegion(10, 10, 110, 40, "你好"), testLanguages)

	assert.Equal(t, OUTCOME_FAILED, result.outcome)
	assert.Equal(t, 3, result.index)
	assert.ErrorContains(t, result.err, "glyph cache corrupted")
	// The erasure committed before the panic stays.
	assert.Equal(t, result.background, img.RGBAAt(30, 20))
}

func TestProcessRegionFailsWithoutVertices(t *testing.T) {
	img := newTestImage(50, 50, image.Rectangle{}, black)
	before := cloneRGBA(img)
	p := newTestPipeline(t, nil, &fakeTranslator{})

	result := p.processRegion(context.Background(), img, 0, NewRegion(nil, "你好", 0.9), testLanguages)

	assert.Equal(t, OUTCOME_FAILED, result.outcome)
	assert.ErrorIs(t, result.err, errEmptyRegion)
	assert.Equal(t, before.Pix, img.Pix)
}

func TestIsPermanent(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "openai unauthorized", err: &openai.APIError{HTTPStatusCode: http.StatusUnauthorized}, want: true},
		{name: "openai rate limited", err: &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests}, want: false},
		{name: "wrapped grpc invalid argument", err: fmt.Errorf("translation failed: %w", status.Error(codes.InvalidArgument, "bad")), want: true},
		{name: "grpc unavailable", err: status.Error(codes.Unavailable, "try again"), want: false},
		{name: "canceled", err: fmt.Errorf("translation failed: %w", context.Canceled), want: true},
		{name: "plain", err: errors.New("timeout"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isPermanent(tt.err))
		})
	}
}
