package core

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	DefaultStoreFilename  = "promises.json"
	DefaultFollowRelation = "follow"
)

type Config struct {
	ServiceName    string `koanf:"service_name" mapstructure:"service_name"`
	Path           string `koanf:"path" mapstructure:"path"`
	Filename       string `koanf:"filename" mapstructure:"filename"`
	TokenBytes     int    `koanf:"token_bytes" mapstructure:"token_bytes"`
	FollowRelation string `koanf:"follow_relation" mapstructure:"follow_relation"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName:    "promise",
		Path:           ".",
		Filename:       DefaultStoreFilename,
		TokenBytes:     MinTokenBytes,
		FollowRelation: DefaultFollowRelation,
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if strings.TrimSpace(c.Filename) == "" {
		return fmt.Errorf("core: filename is required")
	}
	if strings.ContainsAny(c.Filename, `/\`) {
		return fmt.Errorf("core: filename must not contain path separators")
	}
	if c.TokenBytes < MinTokenBytes {
		return fmt.Errorf("core: token_bytes must be at least %d", MinTokenBytes)
	}
	if strings.TrimSpace(c.FollowRelation) == "" {
		return fmt.Errorf("core: follow_relation is required")
	}
	return nil
}

// StorePath is the location of the backing token file.
func (c Config) StorePath() string {
	dir := strings.TrimSpace(c.Path)
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, c.Filename)
}
