package impl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/visionex-project/imagetrans/pkg/utils"
	"github.com/visionex-project/imagetrans/translator/impl/report"
	"github.com/visionex-project/imagetrans/translator/impl/source"
)

const JPEG_QUALITY = 95

var supportedExtensions = []string{".jpg", ".jpeg", ".png"}

// Download saves every image of the product page at target into the download directory.
// Images that fail to download or save are recorded in rep and skipped.
func (p *pipeline) Download(ctx context.Context, imageSource source.Client, target string, rep *report.Report) error {
	images, failures, err := imageSource.Fetch(ctx, target)
	if err != nil {
		return err
	}
	for _, failure := range failures {
		rep.AddFailure(failure.URL, report.StageDownload, failure.Err)
	}

	for _, img := range images {
		if err := p.storage.Client.SaveBytes(ctx, p.storage.DownloadBucket, img.Name, img.Data); err != nil {
			log.Printf("Failed to save %s: %v", img.Name, err)
			rep.AddFailure(img.URL, report.StageSave, err)
			continue
		}
		log.Printf("Saved %s from %s", img.Name, img.URL)
	}
	return nil
}

// TranslateDirectory translates every jpg and png image in the download directory, one at a time.
// Each output keeps the input file name. An image that cannot be read, decoded, detected or saved
// is recorded in rep and the run continues with the next one.
func (p *pipeline) TranslateDirectory(ctx context.Context, rep *report.Report) error {
	entries, err := os.ReadDir(p.storage.DownloadBucket)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", p.storage.DownloadBucket, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !isSupportedImage(entry.Name()) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		p.translateFile(ctx, entry.Name(), rep)
	}
	return nil
}

func (p *pipeline) translateFile(ctx context.Context, name string, rep *report.Report) {
	byteImage, err := os.ReadFile(filepath.Join(p.storage.DownloadBucket, name))
	if err != nil {
		log.Printf("Failed to read %s: %v", name, err)
		rep.AddFailure(name, report.StageRead, err)
		return
	}

	translated, results, err := p.translateImage(ctx, byteImage, p.languages)
	if err != nil {
		var imgErr *imageError
		stage := report.StageDetect
		if errors.As(err, &imgErr) {
			stage = imgErr.stage
		}
		log.Printf("Failed to translate %s at %s: %v", name, stage, err)
		rep.AddFailure(name, stage, err)
		return
	}

	status := report.StatusTranslated
	// Images without text are saved as they are.
	output := byteImage
	if len(results) == 0 {
		log.Printf("No text found in %s", name)
		status = report.StatusNoText
	} else {
		output, err = encodeImage(translated, name)
		if err != nil {
			log.Printf("Failed to encode %s: %v", name, err)
			rep.AddFailure(name, report.StageEncode, err)
			return
		}
	}

	if err := p.storage.Client.SaveBytes(ctx, p.storage.TranslatedBucket, name, output); err != nil {
		log.Printf("Failed to save %s: %v", name, err)
		rep.AddFailure(name, report.StageSave, err)
		return
	}

	rep.Add(report.ImageRecord{
		Name:    name,
		Status:  status,
		Regions: utils.Map(results, toRegionRecord),
	})
	log.Printf("Translated %s", filepath.Join(p.storage.TranslatedBucket, name))
}

func toRegionRecord(result regionResult) report.RegionRecord {
	return report.RegionRecord{
		Index:      result.index,
		Text:       result.text,
		Translated: result.translated,
		Outcome:    string(result.outcome),
		ErrorMsg:   result.errorMessage(),
	}
}

// Encodes img in the format of the file name: PNG for .png, JPEG for .jpg and .jpeg, PNG otherwise.
func encodeImage(img image.Image, name string) ([]byte, error) {
	buffer := new(bytes.Buffer)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		if err := jpeg.Encode(buffer, img, &jpeg.Options{Quality: JPEG_QUALITY}); err != nil {
			return nil, err
		}
	default:
		if err := png.Encode(buffer, img); err != nil {
			return nil, err
		}
	}
	return buffer.Bytes(), nil
}

func isSupportedImage(name string) bool {
	return utils.Contains(supportedExtensions, strings.ToLower(filepath.Ext(name)))
}
