package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/koereq/docpipeline/internal/config"
	"github.com/koereq/docpipeline/internal/models"
)

// FunctionsClient implements all three remote capabilities against the
// functions backend: issueUploadUrls, analyzeDocument and processText on
// one base URL, authenticated with a function key query parameter.
type FunctionsClient struct {
	baseURL    string
	key        string
	deployment string
	client     *http.Client
}

func NewFunctionsClient(cfg *config.Config) *FunctionsClient {
	return &FunctionsClient{
		baseURL:    strings.TrimRight(cfg.FunctionsBaseURL, "/"),
		key:        cfg.FunctionKey,
		deployment: cfg.OpenAIDeployment,
		client:     &http.Client{Timeout: cfg.HTTPTimeout},
	}
}

func (c *FunctionsClient) endpoint(name string) string {
	url := c.baseURL + "/" + name
	if c.key != "" {
		url += "?code=" + c.key
	}
	return url
}

func (c *FunctionsClient) postJSON(ctx context.Context, name string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal %s payload: %v", ErrRequestFailed, name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(name), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build %s request: %v", ErrRequestFailed, name, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRequestFailed, name, err)
	}
	return resp, nil
}

// Upload is two-phase: request one upload target per image, then transfer
// every image concurrently via PUT. A single failed transfer fails the
// whole call; already completed transfers are not rolled back.
func (c *FunctionsClient) Upload(ctx context.Context, images [][]byte) ([]string, error) {
	resp, err := c.postJSON(ctx, "issueUploadUrls", map[string]int{"count": len(images)})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: issueUploadUrls returned status %d", ErrRequestFailed, resp.StatusCode)
	}

	var urls []string
	if err := json.NewDecoder(resp.Body).Decode(&urls); err != nil {
		return nil, fmt.Errorf("%w: issueUploadUrls: %v", ErrInvalidResponse, err)
	}
	if len(urls) != len(images) {
		return nil, fmt.Errorf("%w: issueUploadUrls returned %d urls for %d images", ErrInvalidResponse, len(urls), len(images))
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, url := range urls {
		i, url := i, url
		g.Go(func() error {
			return c.transfer(gctx, url, images[i])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return urls, nil
}

func (c *FunctionsClient) transfer(ctx context.Context, url string, image []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(image))
	if err != nil {
		return fmt.Errorf("%w: build transfer request: %v", ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", "image/jpeg")
	// Azure blob SAS PUTs reject the request without a blob type.
	req.Header.Set("x-ms-blob-type", "BlockBlob")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: transfer: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: transfer returned status %d", ErrRequestFailed, resp.StatusCode)
	}
	return nil
}

// Analyze submits the uploaded image URLs for OCR in a single
// request/response exchange. No retries.
func (c *FunctionsClient) Analyze(ctx context.Context, urls []string) (*models.OCRResult, error) {
	resp, err := c.postJSON(ctx, "analyzeDocument", map[string][]string{"urls": urls})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: analyzeDocument returned status %d", ErrRequestFailed, resp.StatusCode)
	}

	var result models.OCRResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: analyzeDocument: %v", ErrInvalidResponse, err)
	}
	return &result, nil
}

type processTextPayload struct {
	OCRText      string  `json:"ocrText"`
	DocumentType string  `json:"documentType"`
	CustomPrompt *string `json:"customPrompt"`
	Deployment   string  `json:"deployment"`
}

// Process sends OCR text for structuring. The response body is the
// structured text itself, not JSON.
func (c *FunctionsClient) Process(ctx context.Context, ocrText string, docType models.DocumentType, customPrompt *string) (string, error) {
	payload := processTextPayload{
		OCRText:      ocrText,
		DocumentType: string(docType),
		CustomPrompt: customPrompt,
		Deployment:   c.deployment,
	}

	resp, err := c.postJSON(ctx, "processText", payload)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: processText returned status %d", ErrRequestFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: processText: %v", ErrInvalidResponse, err)
	}
	if !utf8.Valid(body) {
		return "", fmt.Errorf("%w: processText body is not valid UTF-8", ErrInvalidResponse)
	}
	return string(body), nil
}
