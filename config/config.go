/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"dirpx.dev/rtx/apis"
	"dirpx.dev/rtx/cache/strategy"
)

const (
	// DefaultMaxChainDepth represents the default for MaxChainDepth.
	// Real class hierarchies are far shallower than 64 levels.
	DefaultMaxChainDepth = 64
	// DefaultAllowStringNames represents the default for AllowStringNames.
	// Resolving type names from runtime strings is opt-in.
	DefaultAllowStringNames = false
	// DefaultKeyCache represents the default for KeyCache.
	DefaultKeyCache = strategy.LRU
	// DefaultKeyCacheSize represents the default for KeyCacheSize.
	DefaultKeyCacheSize = 1024
	// DefaultKeyCacheTTL represents the default for KeyCacheTTL.
	DefaultKeyCacheTTL = 10 * time.Minute
)

// Environment variables read by FromEnv.
const (
	EnvMaxChainDepth    = "RTX_MAX_CHAIN_DEPTH"
	EnvAllowStringNames = "RTX_ALLOW_STRING_NAMES"
	EnvKeyCache         = "RTX_KEY_CACHE"
	EnvKeyCacheSize     = "RTX_KEY_CACHE_SIZE"
	EnvKeyCacheTTL      = "RTX_KEY_CACHE_TTL"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("rtx(config): invalid configuration")

// NewConfig constructs an apis.Config from the given options.
func NewConfig(opts ...Option) apis.Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	// Ensure MaxChainDepth is usable.
	if cfg.MaxChainDepth <= 0 {
		cfg.MaxChainDepth = DefaultMaxChainDepth
	}
	return cfg
}

// DefaultConfig is the default configuration used when none is provided.
func DefaultConfig() apis.Config {
	return apis.Config{
		MaxChainDepth:    DefaultMaxChainDepth,
		AllowStringNames: DefaultAllowStringNames,
		KeyCache:         DefaultKeyCache,
		KeyCacheSize:     DefaultKeyCacheSize,
		KeyCacheTTL:      DefaultKeyCacheTTL,
	}
}

// Option is a functional option that mutates an apis.Config during construction.
type Option func(*apis.Config)

// WithMaxChainDepth sets the MaxChainDepth option.
// A non-positive value resets to the default.
func WithMaxChainDepth(depth int) Option {
	return func(c *apis.Config) {
		if depth <= 0 {
			c.MaxChainDepth = DefaultMaxChainDepth
			return
		}
		c.MaxChainDepth = depth
	}
}

// WithAllowStringNames sets the AllowStringNames option.
func WithAllowStringNames(allow bool) Option {
	return func(c *apis.Config) {
		c.AllowStringNames = allow
	}
}

// WithKeyCache sets the KeyCache option.
func WithKeyCache(s strategy.Strategy) Option {
	return func(c *apis.Config) {
		c.KeyCache = s
	}
}

// WithKeyCacheSize sets the KeyCacheSize option.
func WithKeyCacheSize(size int) Option {
	return func(c *apis.Config) {
		c.KeyCacheSize = size
	}
}

// WithKeyCacheTTL sets the KeyCacheTTL option.
func WithKeyCacheTTL(ttl time.Duration) Option {
	return func(c *apis.Config) {
		c.KeyCacheTTL = ttl
	}
}

// Validate reports configurations that would otherwise be silently degraded.
func Validate(cfg apis.Config) error {
	if cfg.MaxChainDepth <= 0 {
		return fmt.Errorf("%w: MaxChainDepth must be positive, got %d", ErrInvalidConfig, cfg.MaxChainDepth)
	}
	if !cfg.KeyCache.Valid() {
		return fmt.Errorf("%w: unsupported key cache strategy %s", ErrInvalidConfig, cfg.KeyCache)
	}
	if cfg.KeyCache != strategy.None && cfg.KeyCacheSize <= 0 {
		return fmt.Errorf("%w: KeyCacheSize must be positive for %s, got %d", ErrInvalidConfig, cfg.KeyCache, cfg.KeyCacheSize)
	}
	if cfg.KeyCache == strategy.TTL && cfg.KeyCacheTTL <= 0 {
		return fmt.Errorf("%w: KeyCacheTTL must be positive for TTL, got %s", ErrInvalidConfig, cfg.KeyCacheTTL)
	}
	return nil
}

// FromEnv starts from DefaultConfig and applies the RTX_* environment
// variables that are set. The result is validated.
func FromEnv() (apis.Config, error) {
	cfg := DefaultConfig()

	if v, ok := os.LookupEnv(EnvMaxChainDepth); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, EnvMaxChainDepth, err)
		}
		cfg.MaxChainDepth = n
	}
	if v, ok := os.LookupEnv(EnvAllowStringNames); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, EnvAllowStringNames, err)
		}
		cfg.AllowStringNames = b
	}
	if v, ok := os.LookupEnv(EnvKeyCache); ok {
		s, err := strategy.Parse(v)
		if err != nil {
			return cfg, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, EnvKeyCache, err)
		}
		cfg.KeyCache = s
	}
	if v, ok := os.LookupEnv(EnvKeyCacheSize); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, EnvKeyCacheSize, err)
		}
		cfg.KeyCacheSize = n
	}
	if v, ok := os.LookupEnv(EnvKeyCacheTTL); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, EnvKeyCacheTTL, err)
		}
		cfg.KeyCacheTTL = d
	}

	return cfg, Validate(cfg)
}
