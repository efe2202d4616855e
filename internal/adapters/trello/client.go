// Package trello is a thin client for the Trello REST API: board and list
// discovery plus the board action stream the velocity pipeline consumes.
package trello

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/okian/burnup/internal/domain/model"
	"github.com/okian/burnup/pkg/metrics"
)

// Default client configuration constants.
const (
	defaultBaseURL   = "https://api.trello.com/1"
	defaultTimeout   = 30 * time.Second
	defaultPageLimit = 1000
)

// Client calls the board service. Credentials ride along as query
// parameters on every request, which is how the service authenticates
// API keys.
type Client struct {
	base      string
	key       string
	token     string
	hc        *http.Client
	timeout   time.Duration
	pageLimit int
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithBaseURL points the client at a different REST root. Tests use this
// against httptest servers.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.base = base
		}
	}
}

// WithTimeout bounds each request.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.hc = hc
		}
	}
}

// WithPageLimit sets the page size used to walk the action stream.
func WithPageLimit(limit int) Option {
	return func(c *Client) {
		if limit > 0 {
			c.pageLimit = limit
		}
	}
}

// New creates a client for the given credentials.
func New(key, token string, opts ...Option) *Client {
	c := &Client{
		base:      defaultBaseURL,
		key:       key,
		token:     token,
		timeout:   defaultTimeout,
		pageLimit: defaultPageLimit,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.hc == nil {
		c.hc = &http.Client{Timeout: c.timeout}
	}
	return c
}

// Boards returns all boards visible to the credentials.
func (c *Client) Boards(ctx context.Context) ([]Board, error) {
	var boards []Board
	q := url.Values{"fields": {"name"}}
	if err := c.get(ctx, "boards", "/members/me/boards", q, &boards); err != nil {
		return nil, err
	}
	return boards, nil
}

// Lists returns all lists on the given board.
func (c *Client) Lists(ctx context.Context, boardID string) ([]List, error) {
	var lists []List
	q := url.Values{"fields": {"name"}}
	if err := c.get(ctx, "lists", "/boards/"+boardID+"/lists", q, &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

// Actions streams the board's action documents for the given kinds as
// domain records in ascending timestamp order, the order the velocity
// reducer requires.
//
// The service pages newest-first behind a before-cursor, so the client
// walks every page and sorts once before replaying; the buffering lives
// here so the pipeline downstream stays single-pass.
func (c *Client) Actions(ctx context.Context, boardID string, kinds []model.Kind) iter.Seq2[model.Action, error] {
	return func(yield func(model.Action, error) bool) {
		docs, err := c.fetchActionDocs(ctx, boardID, kinds)
		if err != nil {
			yield(model.Action{}, err)
			return
		}

		actions := make([]model.Action, 0, len(docs))
		for _, d := range docs {
			a, err := d.toAction()
			if err != nil {
				yield(model.Action{}, err)
				return
			}
			actions = append(actions, a)
		}
		// Sort by date, keeping the service's relative order inside a
		// date stable (documents arrive newest-first, so reverse first).
		for i, j := 0, len(actions)-1; i < j; i, j = i+1, j-1 {
			actions[i], actions[j] = actions[j], actions[i]
		}
		sort.SliceStable(actions, func(i, j int) bool {
			return actions[i].Date.Before(actions[j].Date)
		})

		metrics.RecordActionsFetched(len(actions))
		for _, a := range actions {
			if !yield(a, nil) {
				return
			}
		}
	}
}

// fetchActionDocs walks the before-cursor until a short page.
func (c *Client) fetchActionDocs(ctx context.Context, boardID string, kinds []model.Kind) ([]actionDoc, error) {
	filter := ""
	for i, k := range kinds {
		if i > 0 {
			filter += ","
		}
		filter += string(k)
	}

	var all []actionDoc
	before := ""
	for {
		q := url.Values{
			"filter": {filter},
			"limit":  {strconv.Itoa(c.pageLimit)},
		}
		if before != "" {
			q.Set("before", before)
		}

		var page []actionDoc
		if err := c.get(ctx, "actions", "/boards/"+boardID+"/actions", q, &page); err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < c.pageLimit {
			return all, nil
		}
		before = page[len(page)-1].ID
	}
}

// get performs one GET against the REST root and decodes the JSON body.
// The endpoint name labels the request metrics.
func (c *Client) get(ctx context.Context, endpoint, path string, q url.Values, v any) error {
	q.Set("key", c.key)
	q.Set("token", c.token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		metrics.RecordAPIRequest(endpoint, "error", time.Since(start).Seconds())
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	metrics.RecordAPIRequest(endpoint, strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("get %s: %w: %d %s", path, ErrStatus, resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
