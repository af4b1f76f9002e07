package types

// Version is the application version, overridden at build time via ldflags
var Version = "dev"

// CogConfigFile is the cocogitto configuration file the pipeline reads and
// synchronizes. Relative paths are resolved against the working directory.
const CogConfigFile = "cog.toml"
