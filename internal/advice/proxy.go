// Package advice forwards generative-advice requests to the Generative Language API.
package advice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/luminher/luminher-api/internal/core"
)

const (
	DefaultModel   = "gemini-1.5-flash-latest"
	DefaultVersion = "v1beta"

	maxBodyBytes = 1 << 20
)

// ErrNotConfigured is returned when the server holds no API key for the upstream.
var ErrNotConfigured = errors.New("advice upstream is not configured")

var namePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Response is the upstream answer, passed back to the client untouched.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

// Proxy relays generateContent calls. It does not interpret request or response bodies.
type Proxy struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	defaultModel   string
	defaultVersion string
	logger         *zap.Logger
}

// Config configures a Proxy. Empty defaults fall back to DefaultModel and DefaultVersion.
type Config struct {
	BaseURL        string
	APIKey         string
	DefaultModel   string
	DefaultVersion string
	Timeout        time.Duration
}

// NewProxy creates a Proxy.
func NewProxy(cfg Config, logger *zap.Logger) *Proxy {
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = DefaultModel
	}
	if cfg.DefaultVersion == "" {
		cfg.DefaultVersion = DefaultVersion
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Proxy{
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:         cfg.APIKey,
		defaultModel:   cfg.DefaultModel,
		defaultVersion: cfg.DefaultVersion,
		logger:         logger,
	}
}

// Forward posts body to {base}/{version}/models/{model}:generateContent.
func (p *Proxy) Forward(ctx context.Context, model, version string, body io.Reader) (*Response, error) {
	if p.apiKey == "" {
		return nil, ErrNotConfigured
	}
	if model == "" {
		model = p.defaultModel
	}
	if version == "" {
		version = p.defaultVersion
	}
	if !namePattern.MatchString(model) {
		return nil, fmt.Errorf("%w: model must match [A-Za-z0-9._-]+", core.ErrInvalidArgument)
	}
	if !namePattern.MatchString(version) {
		return nil, fmt.Errorf("%w: version must match [A-Za-z0-9._-]+", core.ErrInvalidArgument)
	}

	payload, err := io.ReadAll(io.LimitReader(body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read body: %v", core.ErrInvalidArgument, err)
	}
	if len(payload) > maxBodyBytes {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", core.ErrInvalidArgument, maxBodyBytes)
	}

	endpoint := fmt.Sprintf("%s/%s/models/%s:generateContent?key=%s",
		p.baseURL, version, model, url.QueryEscape(p.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build upstream request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		// The URL carries the key; never log or return it.
		p.logger.Error("Advice upstream unreachable", zap.String("model", model), zap.String("version", version))
		return nil, core.Upstream("generative-language", http.StatusBadGateway, errors.New("upstream request failed"))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.Upstream("generative-language", http.StatusBadGateway, fmt.Errorf("failed to read upstream body: %w", err))
	}
	p.logger.Debug("Advice forwarded", zap.String("model", model), zap.Int("status", resp.StatusCode))
	return &Response{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        respBody,
	}, nil
}
