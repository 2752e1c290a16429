// Package analyzer categorizes complaint photos. It proxies to an external
// analyzer sidecar and degrades to filename heuristics when the sidecar is
// unreachable; categorization is best-effort and never blocks a submission.
package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/viksitkanpur/portal/internal/middleware"
	"github.com/viksitkanpur/portal/internal/model"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type analyzeResponse struct {
	Categories []string `json:"categories"`
}

// Analyze sends the image to the sidecar and returns detected categories.
// On any failure it falls back to GuessFromName and a nil error.
func (c *Client) Analyze(ctx context.Context, filename string, image io.Reader) ([]string, error) {
	start := time.Now()
	categories, err := c.analyzeRemote(ctx, filename, image)
	middleware.RecordAnalyzerCall(err == nil, time.Since(start))
	if err != nil {
		return GuessFromName(filename), nil
	}
	return categories, nil
}

func (c *Client) analyzeRemote(ctx context.Context, filename string, image io.Reader) ([]string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("analyzer returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return result.Categories, nil
}

var nameHints = map[string]string{
	"water":    model.CategoryWater,
	"leak":     model.CategoryWater,
	"road":     model.CategoryRoads,
	"pothole":  model.CategoryRoads,
	"wire":     model.CategoryElectricity,
	"electric": model.CategoryElectricity,
	"garbage":  model.CategoryGarbage,
	"trash":    model.CategoryGarbage,
	"light":    model.CategoryStreetLights,
	"drain":    model.CategoryDrainage,
	"sewer":    model.CategoryDrainage,
	"animal":   model.CategoryStrayAnimals,
	"cow":      model.CategoryStrayAnimals,
	"dog":      model.CategoryStrayAnimals,
}

// GuessFromName is the degraded path: match category hints against the
// uploaded filename. Returns nil when nothing matches.
func GuessFromName(filename string) []string {
	lower := strings.ToLower(filename)
	var categories []string
	for hint, category := range nameHints {
		if strings.Contains(lower, hint) {
			categories = append(categories, category)
		}
	}
	return dedupe(categories)
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
