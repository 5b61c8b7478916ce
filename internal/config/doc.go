// Package config provides loading and environment overlay for flostream
// configuration. It exposes a Default() baseline, JSON/YAML file loading and
// FLOSTREAM_* overrides.
//
// Example:
//
//	cfg, err := config.Load(config.DefaultConfigFile())
//	if err != nil {
//	    return err
//	}
//	config.FromEnv(&cfg)
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
//	rt, _ := runtime.Open(runtime.Options{Config: cfg})
//	defer rt.Close()
package config
