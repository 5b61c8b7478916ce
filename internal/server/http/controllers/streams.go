package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	streamsvc "github.com/rzbill/flostream/internal/services/streams"
	"github.com/rzbill/flostream/pkg/id"
)

// StreamsController handles all stream-related HTTP endpoints.
//
// It provides a JSON interface to the streams service: appends, range
// queries, trimming, reads from an id, stream info and CEL-filtered search.
type StreamsController struct {
	st *streamsvc.Service
}

// NewStreamsController creates a new streams controller.
func NewStreamsController(svc *streamsvc.Service) *StreamsController {
	return &StreamsController{st: svc}
}

// RegisterRoutes registers all stream-related routes with the given mux.
func (c *StreamsController) RegisterRoutes(mux *http.ServeMux) {
	// Writes
	mux.HandleFunc("/v1/streams/add", c.handleAdd)
	mux.HandleFunc("/v1/streams/trim", c.handleTrim)

	// Queries
	mux.HandleFunc("/v1/streams/range", c.handleRange)
	mux.HandleFunc("/v1/streams/len", c.handleLen)
	mux.HandleFunc("/v1/streams/read", c.handleRead)
	mux.HandleFunc("/v1/streams/info", c.handleInfo)
	mux.HandleFunc("/v1/streams/search", c.handleSearch)
}

// handleAdd appends an entry, creating the stream on first use.
func (c *StreamsController) handleAdd(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	start := time.Now()
	var req addReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Key == "" {
		writeError(w, http.StatusBadRequest, "key is required")
		return
	}
	if len(req.Pairs)%2 != 0 {
		writeError(w, http.StatusBadRequest, "pairs must alternate name and value")
		return
	}
	maxLen := -1
	if req.MaxLen != nil {
		if *req.MaxLen < 0 {
			writeError(w, http.StatusBadRequest, "maxlen must be >= 0")
			return
		}
		maxLen = *req.MaxLen
	}
	added, err := c.st.Add(r.Context(), req.Key, streamsvc.AddRequest{ID: req.ID, Fields: req.fieldList(), MaxLen: maxLen})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	// Expose basic timing for client-side debugging
	w.Header().Set("X-Add-Latency-Ms", strconv.FormatInt(time.Since(start).Milliseconds(), 10))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(addResp{ID: added})
}

// handleTrim caps a stream at maxlen entries.
func (c *StreamsController) handleTrim(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req trimReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Key == "" {
		writeError(w, http.StatusBadRequest, "key is required")
		return
	}
	n, err := c.st.Trim(r.Context(), req.Key, req.MaxLen)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, trimResp{Deleted: n})
}

// handleRange returns entries between start and end inclusive.
//
// Query parameters: key, start (default "-"), end (default "+"), count,
// reverse. With reverse the result is newest first.
func (c *StreamsController) handleRange(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	key, ok := requireKey(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	count, err := parseCount(q.Get("count"), -1)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	items, err := c.st.Range(r.Context(), key,
		orDefault(q.Get("start"), id.TokenMin),
		orDefault(q.Get("end"), id.TokenMax),
		count, parseBool(q.Get("reverse")))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, itemsResp{Key: key, Items: items})
}

// handleLen returns the number of entries in a stream.
func (c *StreamsController) handleLen(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	key, ok := requireKey(w, r)
	if !ok {
		return
	}
	n, err := c.st.Len(r.Context(), key)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, map[string]any{"key": key, "length": n})
}

// handleRead returns entries with id >= the "id" parameter (default "0").
func (c *StreamsController) handleRead(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	key, ok := requireKey(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	count, err := parseCount(q.Get("count"), 0)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	items, err := c.st.Read(r.Context(), key, orDefault(q.Get("id"), "0"), count)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, itemsResp{Key: key, Items: items})
}

// handleInfo summarises a stream; 404 when the key does not exist.
func (c *StreamsController) handleInfo(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	key, ok := requireKey(w, r)
	if !ok {
		return
	}
	info, err := c.st.Info(r.Context(), key)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, info)
}

// handleSearch scans a stream with an optional CEL filter.
//
// Query parameters: key, start, end, filter, limit, reverse. The filter sees
// id, ms, seq, fields and now_ms, e.g. fields["level"] == "error".
func (c *StreamsController) handleSearch(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	key, ok := requireKey(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	limit, err := parseCount(q.Get("limit"), 0)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	res, err := c.st.Search(r.Context(), key, streamsvc.SearchOptions{
		Start:   q.Get("start"),
		End:     q.Get("end"),
		Reverse: parseBool(q.Get("reverse")),
		Limit:   limit,
		Filter:  q.Get("filter"),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, res)
}
