// Package headhunter reads public vacancies from the hh.ru API.
package headhunter

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const (
	apiURL    = "https://api.hh.ru"
	userAgent = "spigell/skillmatch"
	// Max value for search per page.
	perPage = "100"
)

type Client struct {
	// token is optional, public vacancies do not need it.
	token      string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

func New(logger *zap.Logger, token string) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		token:  token,
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:    logger,
		UserAgent: userAgent,
	}
}

// Search returns the vacancies matching params. Search results carry no description.
func (c *Client) Search(ctx context.Context, params *SearchParams) (*Vacancies, error) {
	return c.search(ctx, params)
}

// Vacancy returns the full vacancy, description and key skills included.
func (c *Client) Vacancy(ctx context.Context, id string) (*Vacancy, error) {
	var vacancy Vacancy
	target := fmt.Sprintf("%s%s/%s", c.APIURL, SearchPath, url.PathEscape(id))
	if err := c.getJSON(ctx, target, nil, &vacancy); err != nil {
		return nil, fmt.Errorf("get vacancy %s: %w", id, err)
	}
	return &vacancy, nil
}
