// Package cli implements the statdash command-line interface.
//
// Each Cobra command in commands.go parses its flags into an options struct
// and hands off to a xxxCommand function, which loads config, applies flag
// overrides and calls into the other internal packages.
//
// # Command Structure
//
//	statdash watch              - Live dashboard (monitor package)
//	statdash serve              - Serve local stats over HTTP (server, collector)
//	statdash snapshot           - Print one snapshot as tables, JSON or CSV
//	statdash export             - Append system metrics to a CSV log
//	statdash init               - Create .statdash.yaml
//	statdash doctor             - Diagnose config, source and writable paths
//	statdash config set|path    - Edit or locate the config file
//	statdash version            - Build info
//	statdash completion <shell> - Shell completion script
//
// # Flag Handling
//
// Global flags (--config, --verbose, --color) live on the root command.
// watch, snapshot, export and doctor share the source flags (--url, --local,
// --timeout); watch and snapshot share the view flags (--sort, --asc, --pin).
// Flags override config values, which override built-in defaults.
package cli
