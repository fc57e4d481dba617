// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

/*
client.go - OpenAI-compatible embeddings HTTP client

Client Features:
  - POST {base_url}/embeddings with {"model", "input", "encoding_format"}
  - Bearer API key authentication
  - Client-side rate limiting (golang.org/x/time/rate) ahead of provider quotas
  - Response validation: count, index coverage, and dimensions
  - Context support for cancellation and timeouts
*/

//nolint:staticcheck // File documentation, not package doc
package embedding

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/eventide/internal/config"
	"github.com/tomtom215/eventide/internal/metrics"
	"github.com/tomtom215/eventide/internal/vector"
)

// maxErrorBodySize limits how much of an error response is read.
const maxErrorBodySize = 64 * 1024

func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

type embeddingRequest struct {
	Model          string   `json:"model"`
	Input          []string `json:"input"`
	EncodingFormat string   `json:"encoding_format"`
	Dimensions     int      `json:"dimensions,omitempty"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
	Model string `json:"model"`
	Usage struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

// Client calls a remote embeddings endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	limits     Limits
	limiter    *rate.Limiter
	logger     zerolog.Logger
}

// NewClient creates an embeddings client from configuration.
// A RequestsPerSec of 0 disables client-side rate limiting.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewClient(cfg config.EmbeddingConfig, logger zerolog.Logger) *Client {
	limit := rate.Inf
	if cfg.RequestsPerSec > 0 {
		limit = rate.Limit(cfg.RequestsPerSec)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		limits: Limits{
			MaxTextLength: cfg.MaxTextLength,
			MaxBatchSize:  cfg.MaxBatchSize,
			Dimensions:    cfg.Dimensions,
		},
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger.With().Str("component", "embedding-client").Logger(),
	}
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

// Limits returns the limits the client enforces.
func (c *Client) Limits() Limits { return c.limits }

// Embed returns the embedding of a single text.
func (c *Client) Embed(ctx context.Context, text string) (vector.Vector, error) {
	clean, err := c.limits.CheckText(text)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	vecs, err := c.call(ctx, []string{clean})
	metrics.RecordEmbeddingCall("single", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch returns one embedding per text, in input order.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([]vector.Vector, error) {
	clean, err := c.limits.CheckBatch(texts)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	vecs, err := c.call(ctx, clean)
	metrics.RecordEmbeddingCall("batch", time.Since(start), err)
	return vecs, err
}

func (c *Client) call(ctx context.Context, inputs []string) ([]vector.Vector, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	body, err := json.Marshal(embeddingRequest{
		Model:          c.model,
		Input:          inputs,
		EncodingFormat: "float",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProviderFailure, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Debug().Err(cerr).Msg("close response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrProviderFailure, resp.StatusCode, readBodyForError(resp.Body))
	}

	var parsed embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrBadResponse, err)
	}

	out, err := c.collect(&parsed, len(inputs))
	if err != nil {
		return nil, err
	}

	c.logger.Debug().
		Int("inputs", len(inputs)).
		Int("total_tokens", parsed.Usage.TotalTokens).
		Msg("embeddings generated")
	return out, nil
}

// collect orders response items by index and validates their shape.
func (c *Client) collect(parsed *embeddingResponse, want int) ([]vector.Vector, error) {
	if len(parsed.Data) != want {
		return nil, fmt.Errorf("%w: got %d embeddings for %d inputs", ErrBadResponse, len(parsed.Data), want)
	}
	sort.SliceStable(parsed.Data, func(i, j int) bool {
		return parsed.Data[i].Index < parsed.Data[j].Index
	})
	out := make([]vector.Vector, want)
	for i, item := range parsed.Data {
		if item.Index != i {
			return nil, fmt.Errorf("%w: missing index %d", ErrBadResponse, i)
		}
		if err := c.limits.CheckVector(item.Embedding); err != nil {
			return nil, fmt.Errorf("%w: item %d: %w", ErrBadResponse, i, err)
		}
		out[i] = item.Embedding
	}
	return out, nil
}
