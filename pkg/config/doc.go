// Package config loads the cygpm TOML configuration file and resolves the
// XDG directories cygpm keeps its catalog and cache in.
//
// Command-line flags take precedence over file values; the CLI applies them
// after [Load] and before [Config.WithDefaults].
package config
