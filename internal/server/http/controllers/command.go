package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/rzbill/flostream/internal/commands"
	"github.com/rzbill/flostream/internal/runtime"
)

// CommandController exposes the raw command dispatcher over HTTP.
//
// A reply error is returned as 400 with the reply text, e.g.
// {"error": "ERR syntax error"}. Status replies such as PONG are encoded as
// {"status": "PONG"} so clients can tell them from bulk strings.
type CommandController struct {
	rt *runtime.Runtime
}

// NewCommandController creates a new command controller.
func NewCommandController(rt *runtime.Runtime) *CommandController {
	return &CommandController{rt: rt}
}

// RegisterRoutes registers the command route with the given mux.
func (c *CommandController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/command", c.handleCommand)
}

func (c *CommandController) handleCommand(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req commandReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	reply, err := c.rt.Commands().Do(r.Context(), req.Args)
	if err != nil {
		if commands.IsReplyError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeServiceError(w, err)
		return
	}
	writeJSON(w, map[string]any{"reply": jsonReply(reply)})
}

// jsonReply rewrites status replies into objects; everything else already
// encodes as JSON.
func jsonReply(r any) any {
	switch t := r.(type) {
	case commands.Status:
		return map[string]string{"status": string(t)}
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = jsonReply(e)
		}
		return out
	default:
		return r
	}
}
