// Package source collects product images from a product page.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	// Some shops answer bots without a browser user agent with an empty page.
	USER_AGENT = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	// Product pages are large; images are fetched with their own, shorter timeout.
	PAGE_TIMEOUT          = 30 * time.Second
	DOWNLOAD_MAX_RETRIES  = 2
	MAX_IMAGE_BYTES int64 = 20 * 1024 * 1024
)

var supportedExtensions = []string{".jpg", ".jpeg", ".png"}

type Image struct {
	// E.g., image_0.jpg
	Name string
	URL  string
	Data []byte
}

type Failure struct {
	URL string
	Err error
}

type Client interface {
	// Fetch downloads every product image referenced by the page at target.
	// Only a failure to load the page itself is returned as an error.
	Fetch(ctx context.Context, target string) ([]Image, []Failure, error)
}

type client struct {
	httpClient      *http.Client
	downloadTimeout time.Duration
	backoffDuration time.Duration
}

func New(httpClient *http.Client, downloadTimeout time.Duration, backoffDuration time.Duration) Client {
	return &client{
		httpClient:      httpClient,
		downloadTimeout: downloadTimeout,
		backoffDuration: backoffDuration,
	}
}

func (c *client) Fetch(ctx context.Context, target string) ([]Image, []Failure, error) {
	pageURL, err := url.Parse(target)
	if err != nil || (pageURL.Scheme != "http" && pageURL.Scheme != "https") {
		return nil, nil, fmt.Errorf("invalid product url %q", target)
	}

	pageCtx, cancel := context.WithTimeout(ctx, PAGE_TIMEOUT)
	defer cancel()
	page, err := c.get(pageCtx, target)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load product page: %w", err)
	}

	imageURLs, err := findImageURLs(bytes.NewReader(page), pageURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse product page: %w", err)
	}

	images := []Image{}
	failures := []Failure{}
	for _, imageURL := range imageURLs {
		data, err := c.download(ctx, imageURL)
		if err != nil {
			log.Printf("Failed to download %s: %v", imageURL, err)
			failures = append(failures, Failure{URL: imageURL, Err: err})
			continue
		}
		images = append(images, Image{
			Name: fmt.Sprintf("image_%d%s", len(images), extension(imageURL)),
			URL:  imageURL,
			Data: data,
		})
	}
	return images, failures, nil
}

func (c *client) download(ctx context.Context, imageURL string) ([]byte, error) {
	return backoff.RetryWithData(func() ([]byte, error) {
		downloadCtx, cancel := context.WithTimeout(ctx, c.downloadTimeout)
		defer cancel()
		return c.get(downloadCtx, imageURL)
	}, backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(c.backoffDuration), DOWNLOAD_MAX_RETRIES), ctx))
}

func (c *client) get(ctx context.Context, target string) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	request.Header.Set("User-Agent", USER_AGENT)

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		err := fmt.Errorf("unexpected status %s", response.Status)
		// Only server errors are worth another attempt.
		if response.StatusCode < http.StatusInternalServerError {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(response.Body, MAX_IMAGE_BYTES+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > MAX_IMAGE_BYTES {
		return nil, backoff.Permanent(errors.New("response too large"))
	}
	return body, nil
}

// Returns the absolute URLs of all <img> elements that look like jpg or png files, in document order and without duplicates.
// Lazy-loaded images carry the real URL in data-src.
func findImageURLs(page io.Reader, base *url.URL) ([]string, error) {
	root, err := html.Parse(page)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	imageURLs := []string{}
	var walk func(node *html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && node.DataAtom == atom.Img {
			if imageURL, ok := resolve(imageSource(node), base); ok && isSupported(imageURL) && !seen[imageURL] {
				seen[imageURL] = true
				imageURLs = append(imageURLs, imageURL)
			}
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)
	return imageURLs, nil
}

func imageSource(node *html.Node) string {
	attributes := map[string]string{}
	for _, attribute := range node.Attr {
		attributes[attribute.Key] = strings.TrimSpace(attribute.Val)
	}
	if src := attributes["src"]; src != "" && !strings.HasPrefix(src, "data:") {
		return src
	}
	return attributes["data-src"]
}

// E.g., //img.example.com/a.jpg -> https://img.example.com/a.jpg
func resolve(src string, base *url.URL) (string, bool) {
	if src == "" {
		return "", false
	}
	if strings.HasPrefix(src, "//") {
		src = "https:" + src
	}
	reference, err := url.Parse(src)
	if err != nil {
		return "", false
	}
	resolved := base.ResolveReference(reference)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", false
	}
	return resolved.String(), true
}

// Matches the extension anywhere in the URL, since CDNs append resize suffixes like a.jpg_640x640.webp.
func isSupported(imageURL string) bool {
	lower := strings.ToLower(imageURL)
	for _, ext := range supportedExtensions {
		if strings.Contains(lower, ext) {
			return true
		}
	}
	return false
}

func extension(imageURL string) string {
	parsed, err := url.Parse(imageURL)
	if err != nil {
		return ".jpg"
	}
	ext := strings.ToLower(path.Ext(parsed.Path))
	for _, supported := range supportedExtensions {
		if ext == supported {
			return ext
		}
	}
	return ".jpg"
}
