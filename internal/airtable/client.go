// Package airtable is a thin client for the Airtable REST API, covering the
// subset this service uses: single-record reads, filtered list queries with
// offset pagination, and record create/update/delete.
package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultEndpoint is the public Airtable API root.
const DefaultEndpoint = "https://api.airtable.com/v0"

type Client struct {
	endpoint string
	baseID   string
	apiKey   string
	client   *http.Client
}

func NewClient(endpoint, baseID, apiKey string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint: endpoint,
		baseID:   baseID,
		apiKey:   apiKey,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Record is a single row of a table. Fields stays raw so callers can decode
// into their own typed field structs; unknown columns are always permitted.
type Record struct {
	ID          string          `json:"id"`
	CreatedTime time.Time       `json:"createdTime,omitempty"`
	Fields      json.RawMessage `json:"fields"`
}

type recordPage struct {
	Records []Record `json:"records"`
	Offset  string   `json:"offset,omitempty"`
}

// ListOptions narrows a list query. An empty FilterByFormula returns the
// whole table.
type ListOptions struct {
	FilterByFormula string
	Fields          []string
	MaxRecords      int
	PageSize        int
}

// GetRecord fetches one record by ID.
func (c *Client) GetRecord(ctx context.Context, table, id string) (*Record, error) {
	var rec Record
	if err := c.do(ctx, http.MethodGet, c.recordURL(table, id), nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListRecords runs a list query and follows offset pagination until the
// server stops returning an offset.
func (c *Client) ListRecords(ctx context.Context, table string, opts ListOptions) ([]Record, error) {
	var all []Record
	offset := ""
	for {
		q := url.Values{}
		if opts.FilterByFormula != "" {
			q.Set("filterByFormula", opts.FilterByFormula)
		}
		for _, f := range opts.Fields {
			q.Add("fields[]", f)
		}
		if opts.MaxRecords > 0 {
			q.Set("maxRecords", strconv.Itoa(opts.MaxRecords))
		}
		if opts.PageSize > 0 {
			q.Set("pageSize", strconv.Itoa(opts.PageSize))
		}
		if offset != "" {
			q.Set("offset", offset)
		}

		u := c.tableURL(table)
		if enc := q.Encode(); enc != "" {
			u += "?" + enc
		}

		var page recordPage
		if err := c.do(ctx, http.MethodGet, u, nil, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Records...)

		if page.Offset == "" {
			return all, nil
		}
		offset = page.Offset
	}
}

// CreateRecord inserts one record. fields is marshaled as the record's field
// map, typically one of the typed *Fields structs.
func (c *Client) CreateRecord(ctx context.Context, table string, fields any) (*Record, error) {
	body := map[string]any{"fields": fields}
	var rec Record
	if err := c.do(ctx, http.MethodPost, c.tableURL(table), body, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpdateRecord is a partial update (PATCH): only the given fields change.
func (c *Client) UpdateRecord(ctx context.Context, table, id string, fields any) (*Record, error) {
	body := map[string]any{"fields": fields}
	var rec Record
	if err := c.do(ctx, http.MethodPatch, c.recordURL(table, id), body, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *Client) DeleteRecord(ctx context.Context, table, id string) error {
	return c.do(ctx, http.MethodDelete, c.recordURL(table, id), nil, nil)
}

func (c *Client) tableURL(table string) string {
	return fmt.Sprintf("%s/%s/%s", c.endpoint, c.baseID, url.PathEscape(table))
}

func (c *Client) recordURL(table, id string) string {
	return fmt.Sprintf("%s/%s", c.tableURL(table), url.PathEscape(id))
}

func (c *Client) do(ctx context.Context, method, rawURL string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseError(resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
