package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// FileExtractor submits raw document bytes to a structured-parsing
// service and gets back a sequence of text elements.
type FileExtractor interface {
	ExtractFile(ctx context.Context, path, contentType string) ([]string, error)
}

// PageScraper renders a URL and returns its visible text as one flat
// blob, whitespace collapsed.
type PageScraper interface {
	ScrapePage(ctx context.Context, url string) (string, error)
}

// UnstructuredExtractor calls the Unstructured partition API. The
// "fast" strategy skips the slow layout-analysis models, which is good
// enough for text-based documents.
type UnstructuredExtractor struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

func NewUnstructuredExtractor(baseURL string) *UnstructuredExtractor {
	return &UnstructuredExtractor{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: 5 * time.Minute,
		},
		logger: slog.Default().With("component", "unstructured-extractor"),
	}
}

type unstructuredElement struct {
	Text string `json:"text"`
}

func (e *UnstructuredExtractor) ExtractFile(ctx context.Context, path, contentType string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	if contentType == "" {
		contentType = "application/octet-stream"
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="files"; filename="%s"`, filepath.Base(path)))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to buffer upload: %w", err)
	}
	if err := writer.WriteField("strategy", "fast"); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	url := e.baseURL + "/general/v0/general"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unstructured API unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("unstructured API failed: %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	var elements []unstructuredElement
	if err := json.NewDecoder(resp.Body).Decode(&elements); err != nil {
		return nil, fmt.Errorf("failed to decode unstructured response: %w", err)
	}

	texts := make([]string, 0, len(elements))
	for _, element := range elements {
		if element.Text != "" {
			texts = append(texts, element.Text)
		}
	}
	e.logger.Debug("extracted elements", "file", filepath.Base(path), "count", len(texts))
	return texts, nil
}

// ChromeScraper renders pages in an isolated headless browser context
// per call, so concurrent scrapes never share page state.
type ChromeScraper struct {
	timeout time.Duration
	logger  *slog.Logger
}

func NewChromeScraper(timeout time.Duration) *ChromeScraper {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &ChromeScraper{
		timeout: timeout,
		logger:  slog.Default().With("component", "chrome-scraper"),
	}
}

// stripPageText removes script/style/noscript nodes before reading the
// body text, so chunks never contain code or CSS.
const stripPageText = `(() => {
	document.querySelectorAll("script, style, noscript").forEach((node) => node.remove());
	return document.body ? document.body.innerText : "";
})()`

func (s *ChromeScraper) ScrapePage(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	browserCtx, cancelBrowser := chromedp.NewContext(ctx)
	defer cancelBrowser()

	var raw string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Evaluate(stripPageText, &raw),
	)
	if err != nil {
		return "", fmt.Errorf("failed to render %s: %w", url, err)
	}

	text := strings.Join(strings.Fields(raw), " ")
	if text == "" {
		return "", fmt.Errorf("page %s rendered no text", url)
	}
	s.logger.Debug("scraped page", "url", url, "chars", len(text))
	return text, nil
}
