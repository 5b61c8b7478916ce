// Package runtime wires config, storage and the keyspace into a single-node
// flostream instance. It exposes Open/Close, a health check and accessors
// for the keyspace and the command dispatcher used by transports.
//
// Example:
//
//	cfg := config.Default()
//	cfg.Storage.Backend = config.BackendPebble
//	rt, _ := runtime.Open(runtime.Options{Config: cfg, Logger: logger})
//	defer rt.Close()
//	_ = rt.CheckHealth(context.Background())
//	id, _ := rt.Commands().Do(ctx, []string{"XADD", "orders", "*", "sku", "42"})
package runtime
