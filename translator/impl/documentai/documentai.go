package documentai

import (
	"context"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/googleapis/gax-go/v2"
)

// Client is the part of documentai.DocumentProcessorClient used for OCR.
// Ref: https://pkg.go.dev/cloud.google.com/go/documentai/apiv1
// Tests replace it with a fake returning canned documents.
type Client interface {
	ProcessDocument(ctx context.Context, req *documentaipb.ProcessRequest, opts ...gax.CallOption) (*documentaipb.ProcessResponse, error)
}
