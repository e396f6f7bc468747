package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	gcs "cloud.google.com/go/storage"
	vision "cloud.google.com/go/vision/v2/apiv1"
	firebase "firebase.google.com/go"
	"github.com/google/generative-ai-go/genai"
	"github.com/ridge/must/v2"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/text/language"
	"google.golang.org/api/option"

	"github.com/visionex-project/imagetrans/pkg/env"
	yaHttp "github.com/visionex-project/imagetrans/pkg/http"
	yaOpenai "github.com/visionex-project/imagetrans/pkg/openai"
	translatorAuth "github.com/visionex-project/imagetrans/translator/auth"
	"github.com/visionex-project/imagetrans/translator/impl"
	"github.com/visionex-project/imagetrans/translator/impl/font"
	yaGenai "github.com/visionex-project/imagetrans/translator/impl/genai"
	"github.com/visionex-project/imagetrans/translator/impl/report"
	"github.com/visionex-project/imagetrans/translator/impl/source"
	"github.com/visionex-project/imagetrans/translator/impl/storage"
	"github.com/visionex-project/imagetrans/translator/impl/tesseract/engine"
	"github.com/visionex-project/imagetrans/translator/impl/translate"
)

const usage = `usage:
  imagetrans <product-url>   download the product images, then translate them
  imagetrans translate       translate the images already in DOWNLOAD_DIR
  imagetrans serve           serve POST /v1/translate on PORT
Without arguments the product URL is read from stdin.`

func main() {
	env.Load()
	ctx := context.Background()

	// The font is the only asset the pipeline cannot work without.
	fontProvider := must.OK1(font.New(
		env.StringVariable("FONT_PATH", "/System/Library/Fonts/AppleSDGothicNeo.ttc"),
		env.IntVariable("FONT_INDEX", 0),
	))

	languages := impl.Languages{
		Source: language.MustParse(env.StringVariable("SOURCE_LANGUAGE", "zh-CN")),
		Target: language.MustParse(env.StringVariable("TARGET_LANGUAGE", "ko")),
	}

	rep := report.New()
	storageClient := storage.NewLocal()
	if bucket := os.Getenv("GCS_BUCKET"); bucket != "" {
		gcsClient := must.OK1(gcs.NewClient(ctx))
		defer gcsClient.Close()
		storageClient = storage.NewMirror(storageClient, storage.New(gcsClient), bucket, rep.RunID)
	}

	detector, closeDetector := newDetector(ctx)
	defer closeDetector()

	translator := impl.New(
		detector,
		newTranslationClient(ctx),
		fontProvider,
		languages,
		impl.Storage{
			Client:           storageClient,
			DownloadBucket:   env.StringVariable("DOWNLOAD_DIR", "downloaded_images"),
			TranslatedBucket: env.StringVariable("TRANSLATED_DIR", "translated_images"),
		},
		time.Second/2, /* =backoffDuration */
	)

	args := os.Args[1:]
	switch {
	case len(args) == 1 && args[0] == "serve":
		runServer(ctx, translator, env.IntVariable("PORT", 8080))
		return
	case len(args) == 1 && args[0] == "translate":
	case len(args) == 1 && (args[0] == "-h" || args[0] == "--help"):
		fmt.Println(usage)
		return
	case len(args) <= 1:
		target := readTarget(args)
		imageSource := source.New(http.DefaultClient, env.DurationVariable("DOWNLOAD_TIMEOUT", 5*time.Second), time.Second/2)
		log.Printf("Downloading images from %s", target)
		if err := translator.Download(ctx, imageSource, target, rep); err != nil {
			log.Fatalf("Failed to download images: %v", err)
		}
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	log.Printf("Translating images in %s", env.StringVariable("DOWNLOAD_DIR", "downloaded_images"))
	if err := translator.TranslateDirectory(ctx, rep); err != nil {
		log.Printf("Failed to translate images: %v", err)
	}

	path, err := rep.Save(env.StringVariable("TRANSLATED_DIR", "translated_images"))
	if err != nil {
		log.Printf("Failed to save report: %v", err)
	} else {
		log.Printf("Report saved to %s", path)
	}
	log.Printf("Run %s finished: %s", rep.RunID, rep.Summary())
}

func readTarget(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	fmt.Print("Product URL: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		log.Fatalf("Failed to read product URL: %v", err)
	}
	return strings.TrimSpace(line)
}

// Returns the detector selected by DETECTOR and a function releasing its clients.
func newDetector(ctx context.Context) (impl.Detector, func()) {
	switch detector := env.StringVariable("DETECTOR", "tesseract"); detector {
	case "tesseract":
		languages := env.ListVariable("TESSERACT_LANGUAGES", []string{"chi_sim"})
		return impl.NewTesseractDetector(engine.New(languages)), func() {}
	case "vision":
		visionClient := must.OK1(vision.NewImageAnnotatorClient(ctx))
		return impl.NewVisionDetector(visionClient), func() { visionClient.Close() }
	case "documentai":
		documentaiClient := must.OK1(documentai.NewDocumentProcessorClient(ctx, option.WithEndpoint(env.RequiredStringVariable("DOCUMENTAI_ENDPOINT"))))
		return impl.NewDocumentaiDetector(documentaiClient, impl.DocumentaiSpec{
			ProjectID:   env.RequiredStringVariable("GCP_PROJECT_ID"),
			Location:    env.RequiredStringVariable("DOCUMENTAI_LOCATION"),
			ProcessorID: env.RequiredStringVariable("DOCUMENTAI_PROCESSOR_ID"),
		}), func() { documentaiClient.Close() }
	default:
		log.Fatalf("unknown DETECTOR %q, expected tesseract, vision or documentai", detector)
		return nil, nil
	}
}

func newTranslationClient(ctx context.Context) translate.Client {
	switch translator := env.StringVariable("TRANSLATOR", "openai"); translator {
	case "openai":
		openaiKey := apiKey(ctx, "OPENAI_API_KEY", "OPENAI_KEY_SECRET_NAME")
		return translate.New(
			yaOpenai.NewAdapter(openai.NewClient(openaiKey)),
			env.StringVariable("OPENAI_MODEL", "gpt-4o-mini"),
		)
	case "gemini":
		geminiKey := apiKey(ctx, "GEMINI_API_KEY", "GEMINI_API_KEY_SECRET_NAME")
		return translate.New(
			yaGenai.New(must.OK1(genai.NewClient(ctx, option.WithAPIKey(geminiKey)))),
			env.StringVariable("GEMINI_MODEL", string(yaGenai.GenaiModelFlash)),
		)
	default:
		log.Fatalf("unknown TRANSLATOR %q, expected openai or gemini", translator)
		return nil
	}
}

// Direct API keys are for local development. Otherwise the key is read from GCP Secret Manager.
func apiKey(ctx context.Context, keyVariable string, secretVariable string) string {
	if key := os.Getenv(keyVariable); key != "" {
		return key
	}
	secretmanagerClient := must.OK1(secretmanager.NewClient(ctx))
	defer secretmanagerClient.Close()
	return secretFromGCP(secretmanagerClient, ctx, env.RequiredStringVariable(secretVariable))
}

func secretFromGCP(secretmanagerClient *secretmanager.Client, ctx context.Context, secretName string) string {
	secretValue := must.OK1(secretmanagerClient.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: fmt.Sprintf("projects/%s/secrets/%s/versions/latest",
			env.RequiredStringVariable("GCP_PROJECT_ID"),
			secretName,
		),
	}))
	return string(secretValue.Payload.Data)
}

type translateHandler interface {
	ServeTranslate(w http.ResponseWriter, r *http.Request)
}

func runServer(ctx context.Context, translator translateHandler, port int) {
	var handler http.Handler = http.HandlerFunc(translator.ServeTranslate)

	// Auth is off for local runs without a Firebase project.
	if projectID := os.Getenv("FIREBASE_PROJECT_ID"); projectID != "" {
		app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID})
		if err != nil {
			log.Fatalf("error initializing app: %v", err)
		}
		firebaseClient, err := app.Auth(ctx)
		if err != nil {
			log.Fatalf("error getting Auth client: %v", err)
		}
		authClient := translatorAuth.New(firebaseClient, env.ListVariable("ALLOWED_EMAIL_DOMAINS", nil))
		handler = yaHttp.RequireBearer(authClient, handler)
	} else {
		log.Printf("FIREBASE_PROJECT_ID is not set, requests are not authenticated")
	}

	mux := http.NewServeMux()
	mux.Handle("/v1/translate", handler)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	log.Printf("Image translator listening on port %d", port)
	must.OK(http.ListenAndServe(fmt.Sprintf(":%d", port), yaHttp.LogRequests(mux)))
}
