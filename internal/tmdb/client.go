// Package tmdb implements the movie metadata provider on top of the TMDb
// HTTP API. The rest of the system depends only on Search and Details.
package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/cinemareddy/postbot/internal/domain"
	"github.com/cinemareddy/postbot/internal/logger"
	"github.com/cinemareddy/postbot/internal/netutil"
)

// SearchLimit bounds the candidate list presented to a user. Session
// validation depends on this bound.
const SearchLimit = 5

const (
	defaultBaseURL      = "https://api.themoviedb.org/3"
	defaultImageBaseURL = "https://image.tmdb.org/t/p/original"
)

// Config carries the provider settings.
type Config struct {
	APIKey       string
	BaseURL      string
	ImageBaseURL string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

// Client talks to TMDb. Failures map to domain.ErrProviderUnavailable so
// callers never see transport detail.
type Client struct {
	cfg  Config
	http *http.Client
}

// New builds a Client, filling in endpoint and transport defaults.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.ImageBaseURL == "" {
		cfg.ImageBaseURL = defaultImageBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = time.Second
	}
	return &Client{
		cfg:  cfg,
		http: netutil.NewClient(cfg.Timeout, cfg.MaxRetries, cfg.RetryBackoff),
	}
}

// Search returns up to SearchLimit candidates in provider relevance order.
func (c *Client) Search(ctx context.Context, title string) ([]domain.Candidate, error) {
	start := time.Now()
	endpoint := fmt.Sprintf("%s/search/movie?api_key=%s&query=%s",
		c.cfg.BaseURL, url.QueryEscape(c.cfg.APIKey), url.QueryEscape(title))

	var payload struct {
		Results []struct {
			ID          int64  `json:"id"`
			Title       string `json:"title"`
			ReleaseDate string `json:"release_date"`
		} `json:"results"`
	}
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		logger.Error(ctx, "tmdb", "search",
			slog.String("status", "fail"),
			slog.String("query", logger.SanitizeLimit(title, 128)),
			slog.Duration("duration", logger.Took(start)),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("%w: search: %v", domain.ErrProviderUnavailable, err)
	}

	results := payload.Results
	if len(results) > SearchLimit {
		results = results[:SearchLimit]
	}
	candidates := make([]domain.Candidate, 0, len(results))
	for _, r := range results {
		year := ""
		if len(r.ReleaseDate) >= 4 {
			year = r.ReleaseDate[:4]
		}
		candidates = append(candidates, domain.Candidate{
			ID:          r.ID,
			Title:       r.Title,
			ReleaseYear: year,
		})
	}

	logger.Debug(ctx, "tmdb", "search",
		slog.String("status", "ok"),
		slog.String("query", logger.SanitizeLimit(title, 128)),
		slog.Int("candidates", len(candidates)),
		slog.Duration("duration", logger.Took(start)),
	)
	return candidates, nil
}

// Details fetches the resolved movie fields needed for composing a post.
// PosterURL is empty when TMDb has no poster for the movie.
func (c *Client) Details(ctx context.Context, id int64) (domain.MovieDetails, error) {
	start := time.Now()
	endpoint := fmt.Sprintf("%s/movie/%d?api_key=%s",
		c.cfg.BaseURL, id, url.QueryEscape(c.cfg.APIKey))

	var payload struct {
		Title      string `json:"title"`
		PosterPath string `json:"poster_path"`
		Genres     []struct {
			Name string `json:"name"`
		} `json:"genres"`
	}
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		logger.Error(ctx, "tmdb", "details",
			slog.String("status", "fail"),
			slog.Int64("tmdb_id", id),
			slog.Duration("duration", logger.Took(start)),
			slog.String("err", err.Error()),
		)
		return domain.MovieDetails{}, fmt.Errorf("%w: details: %v", domain.ErrProviderUnavailable, err)
	}

	details := domain.MovieDetails{Title: payload.Title}
	if payload.PosterPath != "" {
		details.PosterURL = c.cfg.ImageBaseURL + payload.PosterPath
	}
	for _, g := range payload.Genres {
		details.Genres = append(details.Genres, g.Name)
	}

	logger.Debug(ctx, "tmdb", "details",
		slog.String("status", "ok"),
		slog.Int64("tmdb_id", id),
		slog.Duration("duration", logger.Took(start)),
	)
	return details, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
