// Package config defines the project settings of a BluePrint workspace and
// loads them in layers: built-in defaults, then the blueprint.yaml project
// file, then BLUEPRINT_* environment variables. Command-line flags are
// applied on top by the cli package.
package config
