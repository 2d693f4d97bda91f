package articleapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ArticleEnricher/internal/domain"
	"ArticleEnricher/internal/ports"
)

// Client persists articles through the article REST backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ ports.ArticleRepository = (*Client)(nil)

// New builds a client for baseURL, e.g. http://127.0.0.1:8080/api.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type articleDTO struct {
	ID             int64     `json:"id"`
	URL            string    `json:"url"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	IsUpdated      bool      `json:"is_updated"`
	UpdatedContent *string   `json:"updated_content"`
	Citations      []string  `json:"citations"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (d articleDTO) toDomain() domain.Article {
	citations := d.Citations
	if citations == nil {
		citations = []string{}
	}
	return domain.Article{
		ID:             d.ID,
		URL:            d.URL,
		Title:          d.Title,
		Content:        d.Content,
		IsUpdated:      d.IsUpdated,
		UpdatedContent: d.UpdatedContent,
		Citations:      citations,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

type upsertRequest struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type enrichmentRequest struct {
	IsUpdated      bool     `json:"is_updated"`
	UpdatedContent string   `json:"updated_content"`
	Citations      []string `json:"citations"`
}

// List fetches every article.
func (c *Client) List(ctx context.Context) ([]domain.Article, error) {
	var dtos []articleDTO
	if err := c.do(ctx, "list", http.MethodGet, "/articles", nil, &dtos); err != nil {
		return nil, err
	}

	articles := make([]domain.Article, 0, len(dtos))
	for _, dto := range dtos {
		articles = append(articles, dto.toDomain())
	}
	return articles, nil
}

// Get fetches one article.
func (c *Client) Get(ctx context.Context, id int64) (domain.Article, error) {
	var dto articleDTO
	if err := c.do(ctx, "get", http.MethodGet, articlePath(id), nil, &dto); err != nil {
		return domain.Article{}, err
	}
	return dto.toDomain(), nil
}

// UpsertByURL posts title and content; the backend matches on url.
func (c *Client) UpsertByURL(ctx context.Context, content domain.ArticleContent) (domain.Article, error) {
	var dto articleDTO
	body := upsertRequest{URL: content.URL, Title: content.Title, Content: content.Content}
	if err := c.do(ctx, "upsert", http.MethodPost, "/articles", body, &dto); err != nil {
		return domain.Article{}, err
	}
	return dto.toDomain(), nil
}

// UpdateEnrichment puts the enrichment fields of one article.
func (c *Client) UpdateEnrichment(ctx context.Context, id int64, enrichment domain.Enrichment) (domain.Article, error) {
	citations := enrichment.Citations
	if citations == nil {
		citations = []string{}
	}

	var dto articleDTO
	body := enrichmentRequest{IsUpdated: true, UpdatedContent: enrichment.UpdatedContent, Citations: citations}
	if err := c.do(ctx, "update", http.MethodPut, articlePath(id), body, &dto); err != nil {
		return domain.Article{}, err
	}
	return dto.toDomain(), nil
}

func articlePath(id int64) string {
	return "/articles/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return &domain.PersistenceError{Op: op, Err: fmt.Errorf("marshal request: %w", err)}
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &domain.PersistenceError{Op: op, Err: fmt.Errorf("new request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.PersistenceError{Op: op, Err: fmt.Errorf("do request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return &domain.PersistenceError{Op: op, Err: domain.ErrArticleNotFound}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &domain.PersistenceError{Op: op, Err: fmt.Errorf("backend error %s: %s", resp.Status, strings.TrimSpace(string(payload)))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.PersistenceError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
