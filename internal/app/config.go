package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vk/swix/internal/fsutil"
	"github.com/vk/swix/internal/identity"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	SourcePath   string // .swr source file
	OutputPath   string // defaults to the source path with a .wxs extension
	IdentityMode string // none, read, append, prune or strict

	Variables map[string]string // NAME=VALUE definitions, applied over VarFiles
	VarFiles  []string          // HCL files or directories of .hcl files
	EnvFile   string            // dotenv overlay for environment references

	LogFormat string
	LogLevel  string
}

// DefaultIdentityMode is used when Config.IdentityMode is empty.
const DefaultIdentityMode = "append"

// identityExt is appended to the source path to name the identity store.
const identityExt = ".ids"

func NewConfig(cfg Config) (*Config, error) {
	if strings.TrimSpace(cfg.SourcePath) == "" {
		return nil, errors.New("SourcePath is a required configuration field and cannot be empty")
	}
	if cfg.OutputPath == "" {
		cfg.OutputPath = fsutil.SiblingPath(cfg.SourcePath, ".wxs")
	}
	if cfg.OutputPath == cfg.SourcePath {
		return nil, fmt.Errorf("output path %s would overwrite the source", cfg.OutputPath)
	}

	if cfg.IdentityMode == "" {
		cfg.IdentityMode = DefaultIdentityMode
	}
	mode, err := identity.ParseMode(cfg.IdentityMode)
	if err != nil {
		return nil, err
	}
	cfg.IdentityMode = mode.String()

	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// IdentityPath is the identity store kept next to the source.
func (c *Config) IdentityPath() string {
	return c.SourcePath + identityExt
}
