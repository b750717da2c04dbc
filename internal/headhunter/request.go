package headhunter

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"
)

const (
	acceptType     = "application/json"
	acceptEncoding = "gzip"
)

// listPage is one page of a paged listing. Items stay loosely typed until the
// caller decodes them onto its own type.
type listPage struct {
	Items   []map[string]any `json:"items"`
	Found   int              `json:"found"`
	Pages   int              `json:"pages"`
	Page    int              `json:"page"`
	PerPage int              `json:"per_page"`
}

// listAll reads the listing at endpoint page by page until the last page or
// until limit items are collected. A zero limit reads every page.
func (c *Client) listAll(ctx context.Context, endpoint string, q url.Values, limit int) ([]map[string]any, error) {
	var items []map[string]any

	for number := 0; ; number++ {
		query := maps.Clone(q)
		if query == nil {
			query = url.Values{}
		}
		query.Set("page", strconv.Itoa(number))

		var page listPage
		if err := c.getJSON(ctx, endpoint, query, &page); err != nil {
			return nil, fmt.Errorf("page %d: %w", number, err)
		}

		if number == 0 {
			c.logger.Debug("got response from HH.ru", zap.Int("pages", page.Pages), zap.Int("found", page.Found))
		}

		items = append(items, page.Items...)

		if limit > 0 && len(items) >= limit {
			return items[:limit], nil
		}
		if len(page.Items) == 0 || page.Page >= page.Pages-1 {
			return items, nil
		}
	}
}

func (c *Client) getJSON(ctx context.Context, endpoint string, q url.Values, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if q != nil {
		req.URL.RawQuery = q.Encode()
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", acceptType)
	req.Header.Set("Accept-Encoding", acceptEncoding)

	c.logger.Debug("make request", zap.String("url", req.URL.String()))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decodeBody(resp, target)
}

// decodeBody decodes a JSON response. Setting Accept-Encoding by hand turns off
// transparent decompression, so gzip bodies are unpacked here.
func decodeBody(resp *http.Response, target any) error {
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status: %s", resp.Status)
	}

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return err
		}
		defer gz.Close()
		reader = gz
	}

	return json.NewDecoder(reader).Decode(target)
}
