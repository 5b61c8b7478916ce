package transports

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// HTTPTransport talks to the JSON gateway.
type HTTPTransport struct {
	baseURL string
	client  *http.Client
}

// NewHTTPTransport returns a transport rooted at baseURL. A nil client uses
// http.DefaultClient.
func NewHTTPTransport(baseURL string, client *http.Client) *HTTPTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPTransport{baseURL: baseURL, client: client}
}

// Search calls GET /v1/streams/search.
func (t *HTTPTransport) Search(ctx context.Context, req SearchRequest) (SearchResult, error) {
	q := url.Values{"key": {req.Key}}
	if req.Start != "" {
		q.Set("start", req.Start)
	}
	if req.End != "" {
		q.Set("end", req.End)
	}
	if req.Filter != "" {
		q.Set("filter", req.Filter)
	}
	if req.Limit > 0 {
		q.Set("limit", strconv.Itoa(req.Limit))
	}
	if req.Reverse {
		q.Set("reverse", "true")
	}
	hreq, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/v1/streams/search?"+q.Encode(), nil)
	if err != nil {
		return SearchResult{}, err
	}
	resp, err := t.client.Do(hreq)
	if err != nil {
		return SearchResult{}, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 300 {
		var body struct {
			Error string `json:"error"`
		}
		b, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(b, &body) == nil && body.Error != "" {
			return SearchResult{}, fmt.Errorf("http error: %s: %s", resp.Status, body.Error)
		}
		return SearchResult{}, fmt.Errorf("http error: %s", resp.Status)
	}
	var out SearchResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return SearchResult{}, err
	}
	return out, nil
}
