package common

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"shopscout/searchservice/internal/metrics"
)

// ErrRendererDisabled is returned when no rendering service is configured.
var ErrRendererDisabled = errors.New("rendering service is not configured")

const defaultRenderTimeoutMS = 60000

// Renderer fetches a page through an external headless-browser service
// (FlareSolverr protocol): the service loads the URL in a real browser and
// returns the settled HTML.
type Renderer struct {
	endpoint     string
	client       *http.Client
	maxTimeoutMS int
}

type RendererConfig struct {
	Endpoint     string
	Client       *http.Client
	MaxTimeoutMS int
}

func NewRenderer(cfg RendererConfig) *Renderer {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "http://" + endpoint
	}
	endpoint = strings.TrimSuffix(endpoint, "/") + "/v1"

	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 90 * time.Second}
	}
	maxTimeout := cfg.MaxTimeoutMS
	if maxTimeout <= 0 {
		maxTimeout = defaultRenderTimeoutMS
	}
	return &Renderer{endpoint: endpoint, client: client, maxTimeoutMS: maxTimeout}
}

func (r *Renderer) Enabled() bool {
	return r != nil && r.endpoint != ""
}

type renderRequest struct {
	Cmd        string `json:"cmd"`
	URL        string `json:"url"`
	MaxTimeout int    `json:"maxTimeout"`
}

type renderResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Solution struct {
		URL      string `json:"url"`
		Status   int    `json:"status"`
		Response string `json:"response"`
	} `json:"solution"`
}

func (r *Renderer) Fetch(ctx context.Context, pageURL string) (string, error) {
	if !r.Enabled() {
		return "", ErrRendererDisabled
	}

	payload, err := json.Marshal(renderRequest{
		Cmd:        "request.get",
		URL:        pageURL,
		MaxTimeout: r.maxTimeoutMS,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	startedAt := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("render request failed: %w", err)
	}
	defer resp.Body.Close()
	metrics.RenderDuration.Observe(time.Since(startedAt).Seconds())

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("render HTTP %d: %s", resp.StatusCode, CleanHTMLText(string(body)))
	}

	var rendered renderResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 8*1024*1024)).Decode(&rendered); err != nil {
		return "", fmt.Errorf("decode render response: %w", err)
	}
	if rendered.Status != "ok" {
		return "", fmt.Errorf("render failed: %s", strings.TrimSpace(rendered.Message))
	}
	if rendered.Solution.Status != 0 && rendered.Solution.Status != http.StatusOK {
		return "", fmt.Errorf("render target HTTP %d", rendered.Solution.Status)
	}
	if strings.TrimSpace(rendered.Solution.Response) == "" {
		return "", errors.New("render returned empty body")
	}
	return rendered.Solution.Response, nil
}
