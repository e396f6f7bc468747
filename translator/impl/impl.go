package impl

import (
	"context"
	"time"

	"github.com/visionex-project/imagetrans/translator/impl/font"
	"github.com/visionex-project/imagetrans/translator/impl/storage"
	"github.com/visionex-project/imagetrans/translator/impl/translate"
)

// Detector finds text regions in an encoded image, in reading order.
// An empty result means no text was found and is not an error.
type Detector interface {
	Detect(ctx context.Context, byteImage []byte) ([]Region, error)
}

type pipeline struct {
	detector    Detector
	translation translate.Client

	// Used for drawing texts on images.
	fontProvider font.FontProvider

	// Default languages of a run. Requests in serve mode may override them.
	languages Languages

	storage Storage

	// Used to delay the next request when the external API fails.
	backoffDuration time.Duration
}

type Storage struct {
	// Local directories, optionally mirrored to Google Cloud Storage.
	Client storage.Client

	// Where downloaded images are kept. E.g., downloaded_images
	DownloadBucket string

	// Where translated images and run reports are written. E.g., translated_images
	TranslatedBucket string
}

func New(
	detector Detector,
	translation translate.Client,
	fontProvider font.FontProvider,
	languages Languages,
	storage Storage,
	backoffDuration time.Duration,
) *pipeline {
	return &pipeline{
		detector:        detector,
		translation:     translation,
		fontProvider:    fontProvider,
		languages:       languages,
		storage:         storage,
		backoffDuration: backoffDuration,
	}
}
