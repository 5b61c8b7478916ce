package controllers

import (
	"net/http"

	"github.com/rzbill/flostream/internal/runtime"
	streamsvc "github.com/rzbill/flostream/internal/services/streams"
)

// ControllerRegistry manages all HTTP controllers.
//
// It provides a centralized way to register all controller routes.
type ControllerRegistry struct {
	general  *GeneralController
	streams  *StreamsController
	commands *CommandController
}

// NewControllerRegistry creates a new controller registry.
func NewControllerRegistry(rt *runtime.Runtime, streamsSvc *streamsvc.Service) *ControllerRegistry {
	return &ControllerRegistry{
		general:  NewGeneralController(rt),
		streams:  NewStreamsController(streamsSvc),
		commands: NewCommandController(rt),
	}
}

// RegisterAllRoutes registers all controller routes with the given mux.
func (r *ControllerRegistry) RegisterAllRoutes(mux *http.ServeMux) {
	r.general.RegisterRoutes(mux)
	r.streams.RegisterRoutes(mux)
	r.commands.RegisterRoutes(mux)
}
