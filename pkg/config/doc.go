// Package config holds switchtower's run configuration and tool settings.
//
// A Configuration is the mutable state assembled for one run: variables
// set from the command line, recipes merged in load order, and the
// credential source. Once everything is loaded, Actor builds the executor
// from a snapshot of that state.
//
// Settings are the tool's own preferences (recipe search path, SSH
// timeout, color). They are layered with koanf:
//
//  1. embedded defaults (embedded/defaults.toml)
//  2. $XDG_CONFIG_HOME/switchtower/config.toml, if present
//  3. SWITCHTOWER_* environment variables, "__" separating sections
//     (SWITCHTOWER_SSH__KNOWN_HOSTS=/etc/ssh/known_hosts)
package config
