// Package httpserver provides a JSON gateway for flostream: typed stream
// endpoints under /v1/streams, key listing, health, and a raw command
// endpoint that runs argument vectors through the dispatcher.
//
// Example:
//
//	rt, _ := runtime.Open(runtime.Options{Config: config.Default()})
//	s := httpserver.New(rt, logger)
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = s.ListenAndServe(ctx, ":8080")
package httpserver
