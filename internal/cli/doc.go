// Package cli implements the nexmon command-line interface.
//
// # Command Structure
//
//	nexmon                 - Interactive dashboard (needs a terminal)
//	nexmon snapshot        - Print metrics as YAML or JSON and exit
//	nexmon version         - Print build information
//	nexmon completion <sh> - Generate shell completion
//
// # Flag Handling
//
// Dashboard flags are persistent on the root command so snapshot shares
// them. Each is bound to a viper key (see flagKeys); a flag only overrides
// NEXMON_* variables and the config file when it is set explicitly.
// --no-gpu inverts gpu.enabled and is applied as a viper override.
package cli
