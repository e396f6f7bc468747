// Package report collects what happened to every image and region of a run,
// so skipped and failed items can be inspected after the run.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

type ImageStatus string

const (
	StatusTranslated ImageStatus = "translated"
	// No text was detected; the image was saved unchanged.
	StatusNoText ImageStatus = "no_text"
	StatusFailed ImageStatus = "failed"
)

// Stage at which an image failed.
type Stage string

const (
	StageDownload Stage = "download"
	StageRead     Stage = "read"
	StageDecode   Stage = "decode"
	StageDetect   Stage = "detect"
	StageEncode   Stage = "encode"
	StageSave     Stage = "save"
)

type RegionRecord struct {
	Index      int    `json:"index"`
	Text       string `json:"text"`
	Translated string `json:"translated,omitempty"`
	// One of success, skipped, partial_failure, failed.
	Outcome  string `json:"outcome"`
	ErrorMsg string `json:"error_msg,omitempty"`
}

type ImageRecord struct {
	// File name, or the source URL for download failures.
	Name      string         `json:"name"`
	Status    ImageStatus    `json:"status"`
	Stage     Stage          `json:"stage,omitempty"`
	ErrorMsg  string         `json:"error_msg,omitempty"`
	Regions   []RegionRecord `json:"regions,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

type Summary struct {
	Translated       int `json:"translated"`
	NoText           int `json:"no_text"`
	Failed           int `json:"failed"`
	RegionsSucceeded int `json:"regions_succeeded"`
	RegionsSkipped   int `json:"regions_skipped"`
	RegionsPartial   int `json:"regions_partial"`
	RegionsFailed    int `json:"regions_failed"`
}

func (s Summary) String() string {
	return fmt.Sprintf("%d translated, %d without text, %d failed; regions: %d ok, %d skipped, %d marker, %d failed",
		s.Translated, s.NoText, s.Failed, s.RegionsSucceeded, s.RegionsSkipped, s.RegionsPartial, s.RegionsFailed)
}

type Report struct {
	mu         sync.Mutex
	RunID      string         `json:"run_id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at,omitempty"`
	Images     []*ImageRecord `json:"images"`
}

func New() *Report {
	return &Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Images:    []*ImageRecord{},
	}
}

// Add records the outcome of one image.
func (r *Report) Add(record ImageRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}
	r.Images = append(r.Images, &record)
}

// AddFailure records an image that failed at stage.
func (r *Report) AddFailure(name string, stage Stage, err error) {
	r.Add(ImageRecord{
		Name:     name,
		Status:   StatusFailed,
		Stage:    stage,
		ErrorMsg: err.Error(),
	})
}

func (r *Report) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.summaryLocked()
}

func (r *Report) summaryLocked() Summary {
	summary := Summary{}
	for _, image := range r.Images {
		switch image.Status {
		case StatusTranslated:
			summary.Translated++
		case StatusNoText:
			summary.NoText++
		case StatusFailed:
			summary.Failed++
		}
		for _, region := range image.Regions {
			switch region.Outcome {
			case "success":
				summary.RegionsSucceeded++
			case "skipped":
				summary.RegionsSkipped++
			case "partial_failure":
				summary.RegionsPartial++
			case "failed":
				summary.RegionsFailed++
			}
		}
	}
	return summary
}

// Failures returns copies of the failed image records.
func (r *Report) Failures() []ImageRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	failures := []ImageRecord{}
	for _, image := range r.Images {
		if image.Status == StatusFailed {
			failures = append(failures, *image)
		}
	}
	return failures
}

// Save writes report-<run id>.json into dir and returns its path.
func (r *Report) Save(dir string) (string, error) {
	r.mu.Lock()
	r.FinishedAt = time.Now().UTC()
	data, err := json.MarshalIndent(struct {
		*Report
		Summary Summary `json:"summary"`
	}{r, r.summaryLocked()}, "", "  ")
	r.mu.Unlock()
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("report-%s.json", r.RunID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}
