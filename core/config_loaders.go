package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"
)

const DefaultEnvPrefix = "PROMISE_"

type StaticConfigLoader struct {
	Values map[string]any
}

func (l StaticConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.Values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.Values))
	for key, value := range l.Values {
		out[key] = value
	}
	return out, nil
}

// FileConfigLoader reads a YAML, JSON or TOML config file. A missing file is
// an error unless Optional is set.
type FileConfigLoader struct {
	Path     string
	Optional bool
}

func NewFileConfigLoader(path string) FileConfigLoader {
	return FileConfigLoader{Path: path}
}

func (l FileConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	path := strings.TrimSpace(l.Path)
	if path == "" {
		return map[string]any{}, nil
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if l.Optional && isMissingConfigFile(err) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("core: read config %s: %w", path, err)
	}
	return v.AllSettings(), nil
}

func isMissingConfigFile(err error) bool {
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "no such file") || strings.Contains(msg, "cannot find")
}

type envConfig struct {
	ServiceName    string `env:"SERVICE_NAME"`
	Path           string `env:"PATH"`
	Filename       string `env:"FILENAME"`
	TokenBytes     int    `env:"TOKEN_BYTES"`
	FollowRelation string `env:"FOLLOW_RELATION"`
}

// EnvConfigLoader reads PROMISE_* variables. Environment overrides the
// process environment when set.
type EnvConfigLoader struct {
	Prefix      string
	Environment map[string]string
}

func NewEnvConfigLoader() EnvConfigLoader {
	return EnvConfigLoader{Prefix: DefaultEnvPrefix}
}

func (l EnvConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	prefix := l.Prefix
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}
	var raw envConfig
	options := env.Options{Prefix: prefix}
	if l.Environment != nil {
		options.Environment = l.Environment
	}
	if err := env.ParseWithOptions(&raw, options); err != nil {
		return nil, fmt.Errorf("core: parse environment: %w", err)
	}

	out := map[string]any{}
	if raw.ServiceName != "" {
		out["service_name"] = raw.ServiceName
	}
	if raw.Path != "" {
		out["path"] = raw.Path
	}
	if raw.Filename != "" {
		out["filename"] = raw.Filename
	}
	if raw.TokenBytes != 0 {
		out["token_bytes"] = raw.TokenBytes
	}
	if raw.FollowRelation != "" {
		out["follow_relation"] = raw.FollowRelation
	}
	return out, nil
}

type chainConfigLoader []RawConfigLoader

// ChainConfigLoaders merges loaders in order; later loaders win per key.
func ChainConfigLoaders(loaders ...RawConfigLoader) RawConfigLoader {
	return chainConfigLoader(loaders)
}

func (c chainConfigLoader) LoadRaw(ctx context.Context) (map[string]any, error) {
	out := map[string]any{}
	for _, loader := range c {
		if loader == nil {
			continue
		}
		values, err := loader.LoadRaw(ctx)
		if err != nil {
			return nil, err
		}
		for key, value := range values {
			out[key] = value
		}
	}
	return out, nil
}

var (
	_ RawConfigLoader = StaticConfigLoader{}
	_ RawConfigLoader = FileConfigLoader{}
	_ RawConfigLoader = EnvConfigLoader{}
)
