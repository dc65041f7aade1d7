package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"sunquote/internal"
	"sunquote/internal/config"
	"sunquote/internal/util"
)

type Client struct {
	cfg        config.Config
	httpClient *http.Client
	limiter    *pacer
}

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Errors  json.RawMessage `json:"errors"`
	Data    json.RawMessage `json:"data"`
}

type scrollPayload struct {
	Products []map[string]any `json:"products"`
	ScrollID *string          `json:"scrollId"`
	Total    *int             `json:"total"`
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.CatalogTimeoutMs) * time.Millisecond},
		limiter:    newPacer(cfg.CatalogRateLimitRPS),
	}
}

func (c *Client) GetProductsScrollAll(ctx context.Context) ([]internal.CatalogProduct, error) {
	return c.getProductsScroll(ctx, map[string]string{})
}

func (c *Client) GetProductsIncremental(ctx context.Context) ([]internal.CatalogProduct, error) {
	return c.getProductsScroll(ctx, map[string]string{
		"hours": strconv.Itoa(c.cfg.CatalogLookbackHrs),
	})
}

func (c *Client) GetBrandDirectory(ctx context.Context) (map[string]any, error) {
	body, err := c.fetchJSON(ctx, "brand/directory", map[string]string{})
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) getProductsScroll(ctx context.Context, params map[string]string) ([]internal.CatalogProduct, error) {
	all := make([]internal.CatalogProduct, 0)
	seen := map[string]struct{}{}
	var scrollID string

	for {
		query := map[string]string{}
		for k, v := range params {
			query[k] = v
		}
		if scrollID != "" {
			query["scrollId"] = scrollID
		}

		body, err := c.fetchJSON(ctx, "product/scroll", query)
		if err != nil {
			return nil, err
		}

		var payload scrollPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, err
		}

		for _, raw := range payload.Products {
			product, err := toProduct(raw)
			if err != nil {
				continue
			}
			all = append(all, product)
		}

		if payload.ScrollID == nil || *payload.ScrollID == "" || len(payload.Products) == 0 {
			break
		}
		if _, ok := seen[*payload.ScrollID]; ok {
			break
		}
		seen[*payload.ScrollID] = struct{}{}
		scrollID = *payload.ScrollID
	}

	return all, nil
}

func (c *Client) fetchJSON(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	if strings.TrimSpace(c.cfg.CatalogAPIToken) == "" {
		return nil, errors.New("missing CATALOG_API_TOKEN")
	}

	baseURL := strings.TrimRight(c.cfg.CatalogAPIBaseURL, "/") + "/"
	u, err := url.Parse(baseURL + endpoint)
	if err != nil {
		return nil, err
	}

	q := u.Query()
	for k, v := range params {
		if strings.TrimSpace(v) != "" {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()

	var lastErr error
	for attempt := 1; attempt <= 5; attempt++ {
		c.limiter.wait()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.CatalogAPIToken)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if isRetryableStatus(resp.StatusCode) && attempt < 5 {
				backoff := time.Duration(250*(1<<(attempt-1))+rand.Intn(100)) * time.Millisecond
				time.Sleep(backoff)
				lastErr = fmt.Errorf("catalog status %d", resp.StatusCode)
				continue
			}
			return nil, fmt.Errorf("catalog api error: status=%d body=%s", resp.StatusCode, string(body))
		}

		var apiResp apiResponse
		if err := json.Unmarshal(body, &apiResp); err != nil {
			return nil, err
		}
		if !apiResp.Success {
			return nil, fmt.Errorf("catalog api unsuccessful: %s", string(apiResp.Errors))
		}
		return apiResp.Data, nil
	}

	if lastErr == nil {
		lastErr = errors.New("catalog request failed")
	}
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func toProduct(raw map[string]any) (internal.CatalogProduct, error) {
	brand, _ := raw["brand"].(string)
	model, _ := raw["model"].(string)
	brand = strings.TrimSpace(brand)
	model = strings.TrimSpace(model)
	if brand == "" || model == "" {
		return internal.CatalogProduct{}, errors.New("missing brand or model")
	}

	category, _ := raw["category"].(string)
	switch internal.ProductCategory(category) {
	case internal.CategoryPanel, internal.CategoryBattery, internal.CategoryInverter:
	default:
		return internal.CatalogProduct{}, fmt.Errorf("unknown category: %q", category)
	}

	id, ok := toInt(raw["id"])
	if !ok {
		return internal.CatalogProduct{}, errors.New("missing id")
	}

	rawJSON, _ := json.Marshal(raw)
	product := internal.CatalogProduct{
		ID:       id,
		Category: internal.ProductCategory(category),
		Brand:    brand,
		Model:    model,
		RawJSON:  string(rawJSON),
	}
	product.SyncUID = toStringPtr(raw["syncUid"])
	product.Watts = toFloatPtr(raw["watts"])
	product.UsableKWh = toFloatPtr(raw["usableKWh"])
	product.RatedKw = toFloatPtr(raw["ratedKw"])
	product.Datasheet = toStringPtr(raw["datasheet"])
	product.UpdatedAt = toStringPtr(raw["updatedAt"])

	return product, nil
}

func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	case json.Number:
		i, err := t.Int64()
		return int(i), err == nil
	default:
		return 0, false
	}
}

func toFloatPtr(v any) *float64 {
	switch t := v.(type) {
	case float64:
		return &t
	case int:
		f := float64(t)
		return &f
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return &f
		}
	}
	return nil
}

func toStringPtr(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return util.StringPtr(s)
}
