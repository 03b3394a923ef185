package cms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"compagnie-lumen.org/web/internal/pagination"
)

const (
	defaultHTTPTimeout  = 5 * time.Second
	instrumentationName = "compagnie-lumen.org/web/internal/cms"
)

// HTTPStore reads content from the headless CMS JSON API:
//
//	GET {base}/content/{type}/{relativePath}
//	GET {base}/content/{type}?after={cursor}&first={n}
type HTTPStore struct {
	baseURL  string
	token    string
	pageSize int
	http     *http.Client
	tracer   trace.Tracer
	meter    metric.Meter
	latency  metric.Float64Histogram
}

// HTTPOption customises an HTTPStore.
type HTTPOption func(*HTTPStore)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(s *HTTPStore) {
		if c != nil {
			s.http = c
		}
	}
}

// WithToken sends the token as a bearer credential.
func WithToken(token string) HTTPOption {
	return func(s *HTTPStore) {
		s.token = strings.TrimSpace(token)
	}
}

// WithTimeout sets the client timeout. A client passed through WithHTTPClient is copied
// first so the caller's value is left untouched.
func WithTimeout(d time.Duration) HTTPOption {
	return func(s *HTTPStore) {
		if d > 0 {
			c := *s.http
			c.Timeout = d
			s.http = &c
		}
	}
}

// WithMeter records request latency on m instead of the global meter provider.
func WithMeter(m metric.Meter) HTTPOption {
	return func(s *HTTPStore) {
		s.meter = m
	}
}

// WithPageSize sets the number of items requested per listing page.
func WithPageSize(size int) HTTPOption {
	return func(s *HTTPStore) {
		s.pageSize = pagination.ClampPageSize(size)
	}
}

// NewHTTPStore constructs an HTTPStore with the provided base URL.
func NewHTTPStore(baseURL string, opts ...HTTPOption) *HTTPStore {
	s := &HTTPStore{
		baseURL:  strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		pageSize: pagination.DefaultPageSize,
		http:     &http.Client{Timeout: defaultHTTPTimeout},
		tracer:   otel.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.meter == nil {
		s.meter = otel.GetMeterProvider().Meter(instrumentationName)
	}
	if h, err := s.meter.Float64Histogram(
		"cms.request.duration",
		metric.WithUnit("ms"),
		metric.WithDescription("Latency in milliseconds of content store requests"),
	); err == nil {
		s.latency = h
	}
	return s
}

var _ Store = (*HTTPStore)(nil)

type rawItem struct {
	Type         string         `json:"type"`
	RelativePath string         `json:"relativePath"`
	Breadcrumbs  []string       `json:"breadcrumbs"`
	Locale       string         `json:"locale"`
	Title        string         `json:"title"`
	Summary      string         `json:"summary"`
	Body         string         `json:"body"`
	Date         string         `json:"date"`
	Image        string         `json:"image"`
	Order        int            `json:"order"`
	Extra        map[string]any `json:"extra"`
	UpdatedAt    *time.Time     `json:"updatedAt"`
}

type rawPage struct {
	Items    []rawItem `json:"items"`
	PageInfo struct {
		EndCursor   string `json:"endCursor"`
		HasNextPage bool   `json:"hasNextPage"`
	} `json:"pageInfo"`
}

// FetchOne retrieves a single record.
func (s *HTTPStore) FetchOne(ctx context.Context, typeTag, relativePath string) (item Item, err error) {
	ctx, span := s.tracer.Start(ctx, "cms.FetchOne", trace.WithAttributes(
		attribute.String("cms.type", typeTag),
		attribute.String("cms.relative_path", relativePath),
	))
	defer func() { endSpan(span, err) }()

	rel := cleanRelativePath(relativePath)
	if !validTypeTag(typeTag) || rel == "" {
		return Item{}, ErrNotFound
	}
	segments := append([]string{"content", typeTag}, strings.Split(rel, "/")...)
	endpoint, err := url.JoinPath(s.baseURL, segments...)
	if err != nil {
		return Item{}, fmt.Errorf("cms: build url: %w", err)
	}

	var raw rawItem
	if err := s.getJSON(ctx, endpoint, &raw); err != nil {
		return Item{}, err
	}
	return mapRawItem(raw, typeTag, rel), nil
}

// FetchPage retrieves one listing page.
func (s *HTTPStore) FetchPage(ctx context.Context, typeTag, after string) (page Page, err error) {
	ctx, span := s.tracer.Start(ctx, "cms.FetchPage", trace.WithAttributes(
		attribute.String("cms.type", typeTag),
		attribute.Bool("cms.first_page", after == ""),
	))
	defer func() { endSpan(span, err) }()

	if !validTypeTag(typeTag) {
		return Page{}, nil
	}
	endpoint, err := url.JoinPath(s.baseURL, "content", typeTag)
	if err != nil {
		return Page{}, fmt.Errorf("cms: build url: %w", err)
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return Page{}, fmt.Errorf("cms: build url: %w", err)
	}
	q := u.Query()
	q.Set("first", strconv.Itoa(s.pageSize))
	if after != "" {
		q.Set("after", after)
	}
	u.RawQuery = q.Encode()

	var raw rawPage
	if err := s.getJSON(ctx, u.String(), &raw); err != nil {
		if errors.Is(err, ErrNotFound) {
			return Page{}, nil
		}
		return Page{}, err
	}
	page = Page{
		Items:      make([]Item, 0, len(raw.Items)),
		NextCursor: raw.PageInfo.EndCursor,
		HasMore:    raw.PageInfo.HasNextPage && raw.PageInfo.EndCursor != "",
	}
	for _, it := range raw.Items {
		page.Items = append(page.Items, mapRawItem(it, typeTag, it.RelativePath))
	}
	span.SetAttributes(attribute.Int("cms.items", len(page.Items)))
	return page, nil
}

func (s *HTTPStore) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("cms: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	start := time.Now()
	resp, err := s.http.Do(req)
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	s.recordLatency(ctx, time.Since(start), status)
	if err != nil {
		return fmt.Errorf("cms: request %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		return ErrNotFound
	}
	if resp.StatusCode >= 400 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("cms: remote status %d for %s", resp.StatusCode, req.URL.Path)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("cms: decode %s: %w", req.URL.Path, err)
	}
	return nil
}

func (s *HTTPStore) recordLatency(ctx context.Context, d time.Duration, status int) {
	if s.latency == nil {
		return
	}
	s.latency.Record(ctx, float64(d)/float64(time.Millisecond),
		metric.WithAttributes(attribute.Int("http.status_code", status)))
}

func mapRawItem(raw rawItem, typeTag, relativePath string) Item {
	rel := firstNonEmpty(raw.RelativePath, relativePath)
	crumbs := raw.Breadcrumbs
	if len(crumbs) == 0 {
		crumbs = BreadcrumbsOf(rel)
	} else {
		crumbs = append([]string(nil), crumbs...)
	}
	item := Item{
		Type:         firstNonEmpty(raw.Type, typeTag),
		RelativePath: rel,
		Breadcrumbs:  crumbs,
		Locale:       LocaleOf(raw.Locale, crumbs),
		Title:        strings.TrimSpace(raw.Title),
		Summary:      strings.TrimSpace(raw.Summary),
		Body:         raw.Body,
		Date:         parseContentDate(raw.Date),
		Image:        strings.TrimSpace(raw.Image),
		Order:        raw.Order,
	}
	if len(raw.Extra) > 0 {
		item.Extra = make(map[string]any, len(raw.Extra))
		for k, v := range raw.Extra {
			item.Extra[k] = v
		}
	}
	if raw.UpdatedAt != nil {
		item.UpdatedAt = *raw.UpdatedAt
	}
	if item.Title == "" {
		item.Title = prettifySlug(item.Slug())
	}
	return item
}

func endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
