package impl

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"golang.org/x/text/language"

	"github.com/visionex-project/imagetrans/pkg/utils"
	"github.com/visionex-project/imagetrans/translator/impl/report"
)

// Image size limit for the Vision API is 20MB.
// Ref: https://cloud.google.com/vision/quotas#limits
const MAX_REQUEST_BYTES = 20 * 1024 * 1024

type translateResponse struct {
	UriImage string           `json:"uriImage"`
	Regions  []regionResponse `json:"regions"`
}

type regionResponse struct {
	Index      int    `json:"index"`
	Text       string `json:"text"`
	Translated string `json:"translated,omitempty"`
	Outcome    string `json:"outcome"`
	FontSize   int    `json:"fontSize,omitempty"`
	Error      string `json:"error,omitempty"`
}

// ServeTranslate translates the image sent as the raw request body and answers with a PNG data URI.
// The run languages can be overridden with the source and target query parameters, e.g., ?source=zh-CN&target=ja
func (p *pipeline) ServeTranslate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	languages, err := requestLanguages(r, p.languages)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	byteImage, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MAX_REQUEST_BYTES))
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			http.Error(w, "image is too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "failed to read image", http.StatusBadRequest)
		return
	}
	if len(byteImage) == 0 {
		http.Error(w, "image is required", http.StatusBadRequest)
		return
	}

	translated, results, err := p.translateImage(r.Context(), byteImage, languages)
	if err != nil {
		log.Printf("Failed to translate image: %v", err)
		var imgErr *imageError
		if errors.As(err, &imgErr) && imgErr.stage == report.StageDecode {
			http.Error(w, "failed to decode image", http.StatusBadRequest)
			return
		}
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	pngImage, err := encodeImage(translated, "translated.png")
	if err != nil {
		log.Printf("Failed to encode image: %v", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(translateResponse{
		UriImage: "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngImage),
		Regions: utils.Map(results, func(result regionResult) regionResponse {
			return regionResponse{
				Index:      result.index,
				Text:       result.text,
				Translated: result.translated,
				Outcome:    string(result.outcome),
				FontSize:   result.fontSize,
				Error:      result.errorMessage(),
			}
		}),
	}); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

func requestLanguages(r *http.Request, defaults Languages) (Languages, error) {
	languages := defaults
	query := r.URL.Query()
	if value := query.Get("source"); value != "" {
		tag, err := language.Parse(value)
		if err != nil {
			return Languages{}, fmt.Errorf("invalid source language %q", value)
		}
		languages.Source = tag
	}
	if value := query.Get("target"); value != "" {
		tag, err := language.Parse(value)
		if err != nil {
			return Languages{}, fmt.Errorf("invalid target language %q", value)
		}
		languages.Target = tag
	}
	return languages, nil
}
