package vision

import (
	"context"

	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	gax "github.com/googleapis/gax-go/v2"
)

// Client is the part of vision.ImageAnnotatorClient used for text detection.
// Ref: https://pkg.go.dev/cloud.google.com/go/vision/v2/apiv1
// Tests replace it with a fake returning canned annotations.
type Client interface {
	DetectDocumentText(ctx context.Context, image *visionpb.Image, imageContext *visionpb.ImageContext, opts ...gax.CallOption) (*visionpb.TextAnnotation, error)
}
