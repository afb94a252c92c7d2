// Package config holds the settings shared by the privacygrade commands:
// defaults, validation, the optional YAML configuration file and the XDG
// directories.
package config
