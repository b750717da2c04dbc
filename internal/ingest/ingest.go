// Package ingest turns job postings into stored job skill trees.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/spigell/skillmatch/internal/analysis"
	"github.com/spigell/skillmatch/internal/extract"
	"github.com/spigell/skillmatch/internal/skilltree"
	"github.com/spigell/skillmatch/internal/storage"
)

const (
	// DefaultTimeout bounds a single posting download.
	DefaultTimeout = 30 * time.Second
	// DefaultUserAgent is sent with posting downloads.
	DefaultUserAgent = "Mozilla/5.0 (compatible; skillmatch/1.0)"

	maxPostingSize = 10 << 20
)

var validate = validator.New()

// Request describes a posting to ingest. Exactly one of URL, File and Text is set.
type Request struct {
	ID       int64  `validate:"gt=0"`
	Title    string `validate:"required"`
	Location string
	URL      string `validate:"required_without_all=File Text,excluded_with=File Text"`
	File     string `validate:"excluded_with=URL Text"`
	// Text is posting text that was already extracted.
	Text string `validate:"excluded_with=URL File"`
}

// FetchError reports a posting that could not be downloaded.
type FetchError struct {
	URL     string
	Message string
	Cause   error
}

func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Message)
}

func (e *FetchError) Unwrap() error { return e.Cause }

// Ingester fetches postings, analyzes them and stores the resulting trees.
type Ingester struct {
	analyzer *analysis.Analyzer
	store    storage.Store
	logger   *zap.Logger

	HTTPClient *http.Client
	UserAgent  string
}

// New creates an Ingester writing job trees into store.
func New(analyzer *analysis.Analyzer, store storage.Store, logger *zap.Logger) *Ingester {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingester{
		analyzer: analyzer,
		store:    store,
		logger:   logger,
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		UserAgent: DefaultUserAgent,
	}
}

// Ingest builds the job tree of the posting in req and stores it under req.ID.
func (i *Ingester) Ingest(ctx context.Context, req Request) (*skilltree.Node, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid ingest request: %w", err)
	}

	log := i.logger.With(zap.Int64("job_id", req.ID))

	var (
		text string
		err  error
	)
	switch {
	case req.URL != "":
		text, err = i.fetch(ctx, req.URL)
	case req.File != "":
		text, err = readPosting(req.File)
	default:
		if text = strings.TrimSpace(req.Text); text == "" {
			err = errors.New("posting text is empty")
		}
	}
	if err != nil {
		return nil, err
	}

	log.Debug("posting text extracted", zap.Int("length", len(text)))

	data, requirements := i.analyzer.Job(ctx, text)
	tree := skilltree.BuildJob(data, requirements, skilltree.JobInfo{
		ID:       req.ID,
		Title:    req.Title,
		Location: req.Location,
	})

	if err := i.store.Write(ctx, storage.Job, strconv.FormatInt(req.ID, 10), tree); err != nil {
		return nil, fmt.Errorf("store job %d: %w", req.ID, err)
	}

	log.Info("job skill tree stored",
		zap.String("job_title", req.Title),
		zap.Int("skills", len(skilltree.Flatten(tree))),
		zap.Int("requirements", len(requirements)),
	)

	return tree, nil
}

func (i *Ingester) fetch(ctx context.Context, rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", &FetchError{URL: rawURL, Message: "invalid URL", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &FetchError{URL: rawURL, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", i.UserAgent)

	i.logger.Debug("make request", zap.String("url", rawURL))
	resp, err := i.HTTPClient.Do(req)
	if err != nil {
		return "", &FetchError{URL: rawURL, Message: "HTTP request failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &FetchError{URL: rawURL, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPostingSize))
	if err != nil {
		return "", &FetchError{URL: rawURL, Message: "failed to read response body", Cause: err}
	}

	format, ok := extract.FromMIME(resp.Header.Get("Content-Type"))
	if !ok {
		format, ok = extract.Detect(path.Base(parsed.Path), data)
	}
	if !ok {
		return "", &extract.ExtractionError{Name: rawURL, Err: extract.ErrUnsupported}
	}

	return postingText(format, rawURL, data)
}

func readPosting(name string) (string, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("read posting: %w", err)
	}

	format, ok := extract.Detect(name, data)
	if !ok {
		return "", &extract.ExtractionError{Name: name, Err: extract.ErrUnsupported}
	}
	return postingText(format, name, data)
}

func postingText(format extract.Format, name string, data []byte) (string, error) {
	if format != extract.HTML {
		return extract.As(format, name, data)
	}

	text, err := extract.HTMLText(string(data), extract.JobPostingSelectors())
	if err != nil {
		return "", &extract.ExtractionError{Name: name, Format: format, Err: err}
	}
	if text == "" {
		return "", &extract.ExtractionError{Name: name, Format: format, Err: errors.New("document contains no text")}
	}
	return text, nil
}
