package config

import "errors"

var (
	// ErrConfigNotFound indicates a config file or config directory does not exist.
	ErrConfigNotFound = errors.New("config not found")

	// ErrConfigExists indicates init would overwrite an existing config file.
	ErrConfigExists = errors.New("config already exists")

	// ErrInvalidConfig indicates a config file that cannot be decoded or fails validation.
	ErrInvalidConfig = errors.New("invalid config")
)
