// Package search implements the Trade Me search provider adapter.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/neticnz/matcher/internal/config"
	"github.com/neticnz/matcher/internal/domain"
	"github.com/neticnz/matcher/internal/logger"
)

const (
	defaultTitle    = "Untitled"
	defaultLocation = "Unknown"
)

// Client queries the Trade Me general search endpoint. It is stateless: a
// search is a pure function of (query, budget, limit).
type Client struct {
	baseURL    string
	listingURL string
	httpClient *http.Client
	logger     logger.Logger
}

// NewClient creates a search client from config.
func NewClient(cfg config.SearchConfig, log logger.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		listingURL: strings.TrimRight(cfg.ListingURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     log,
	}
}

// searchResponse mirrors the fields we consume from the Trade Me payload.
type searchResponse struct {
	List []searchItem `json:"List"`
}

type searchItem struct {
	ListingID    int64        `json:"ListingId"`
	Title        string       `json:"Title"`
	PriceDisplay *priceAmount `json:"PriceDisplay"`
	BuyNowPrice  float64      `json:"BuyNowPrice"`
	Region       string       `json:"Region"`
	PictureHref  string       `json:"PictureHref"`
	CategoryPath string       `json:"CategoryPath"`
}

type priceAmount struct {
	Amount float64 `json:"Amount"`
}

// Search returns candidate listings for a free-text query, optionally
// bounded by a price ceiling (truncated to a whole dollar amount) and
// capped at maxResults. A transport failure, non-2xx response, or
// malformed body yields an error; callers isolate it per want.
func (c *Client) Search(ctx context.Context, query string, maxPrice *float64, maxResults int) ([]domain.Listing, error) {
	params := url.Values{}
	params.Set("search_string", strings.TrimSpace(query))
	params.Set("rows", strconv.Itoa(maxResults))
	if maxPrice != nil && *maxPrice > 0 {
		params.Set("price_max", strconv.Itoa(int(math.Floor(*maxPrice))))
	}

	endpoint := c.baseURL + "/Search/General.json?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("Trade Me returned non-OK status",
			logger.Int("status_code", resp.StatusCode),
			logger.Duration("duration", duration),
		)
		return nil, fmt.Errorf("trade me returned status %d", resp.StatusCode)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	listings := make([]domain.Listing, 0, len(payload.List))
	for _, item := range payload.List {
		if len(listings) >= maxResults {
			break
		}
		listings = append(listings, c.mapItem(item))
	}

	c.logger.Debug("Trade Me search complete",
		logger.String("query", query),
		logger.Int("results", len(listings)),
		logger.Duration("duration", duration),
	)

	return listings, nil
}

// mapItem maps a provider item defensively: missing fields get placeholder
// defaults, and the listing URL is synthesized deterministically so the
// same listing always yields the same dedup key across runs.
func (c *Client) mapItem(item searchItem) domain.Listing {
	title := item.Title
	if title == "" {
		title = defaultTitle
	}

	price := item.BuyNowPrice
	if item.PriceDisplay != nil && item.PriceDisplay.Amount > 0 {
		price = item.PriceDisplay.Amount
	}

	location := item.Region
	if location == "" {
		location = defaultLocation
	}

	return domain.Listing{
		ListingID: strconv.FormatInt(item.ListingID, 10),
		Title:     title,
		Price:     price,
		URL:       c.listingURLFor(item),
		Location:  location,
		ImageURL:  item.PictureHref,
	}
}

// listingURLFor builds the public listing URL from the listing id and,
// where available, the normalized category path.
func (c *Client) listingURLFor(item searchItem) string {
	id := strconv.FormatInt(item.ListingID, 10)
	if path := normalizeCategoryPath(item.CategoryPath); path != "" {
		return c.listingURL + "/" + path + "/listing/" + id
	}
	return c.listingURL + "/listing/" + id
}

// normalizeCategoryPath lower-cases a category path like
// "/Sports/Golf & Clubs" into "sports/golf-and-clubs".
func normalizeCategoryPath(path string) string {
	path = strings.Trim(path, "/")
	if path == "" {
		return ""
	}
	path = strings.ToLower(path)
	path = strings.ReplaceAll(path, "&", "and")
	path = strings.ReplaceAll(path, " ", "-")
	// Collapse runs introduced by " & " becoming "-and-" variants.
	for strings.Contains(path, "--") {
		path = strings.ReplaceAll(path, "--", "-")
	}
	return path
}
