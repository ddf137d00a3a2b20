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

// Package cache builds small in-memory caches for the eviction strategies
// named in cache/strategy, backed by hashicorp/golang-lru.
package cache

import (
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"dirpx.dev/rtx/cache/strategy"
)

var (
	// ErrInvalidSize is returned when a caching strategy is given a non-positive size.
	ErrInvalidSize = errors.New("rtx(cache): size must be positive")
	// ErrInvalidTTL is returned when the TTL strategy is given a non-positive TTL.
	ErrInvalidTTL = errors.New("rtx(cache): ttl must be positive")
	// ErrUnknownStrategy is returned for strategies this package cannot build.
	ErrUnknownStrategy = errors.New("rtx(cache): unknown strategy")
)

// Cache is the subset of cache behavior used by rtx. Implementations are safe
// for concurrent use.
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Add(key K, value V)
	Len() int
	Purge()
}

// New builds a cache for s. It returns (nil, nil) for strategy.None.
func New[K comparable, V any](s strategy.Strategy, size int, ttl time.Duration) (Cache[K, V], error) {
	if s == strategy.None {
		return nil, nil
	}
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, s)
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}

	switch s {
	case strategy.LRU:
		c, err := lru.New[K, V](size)
		if err != nil {
			return nil, err
		}
		return lruCache[K, V]{c}, nil
	case strategy.TwoQueue:
		c, err := lru.New2Q[K, V](size)
		if err != nil {
			return nil, err
		}
		return c, nil
	case strategy.TTL:
		if ttl <= 0 {
			return nil, fmt.Errorf("%w: %s", ErrInvalidTTL, ttl)
		}
		return expirableCache[K, V]{expirable.NewLRU[K, V](size, nil, ttl)}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, s)
	}
}

// lruCache drops the eviction flag returned by lru.Cache.Add.
type lruCache[K comparable, V any] struct {
	c *lru.Cache[K, V]
}

func (l lruCache[K, V]) Get(key K) (V, bool) { return l.c.Get(key) }
func (l lruCache[K, V]) Add(key K, value V)  { l.c.Add(key, value) }
func (l lruCache[K, V]) Len() int            { return l.c.Len() }
func (l lruCache[K, V]) Purge()              { l.c.Purge() }

type expirableCache[K comparable, V any] struct {
	c *expirable.LRU[K, V]
}

func (e expirableCache[K, V]) Get(key K) (V, bool) { return e.c.Get(key) }
func (e expirableCache[K, V]) Add(key K, value V)  { e.c.Add(key, value) }
func (e expirableCache[K, V]) Len() int            { return e.c.Len() }
func (e expirableCache[K, V]) Purge()              { e.c.Purge() }

var (
	_ Cache[string, string] = lruCache[string, string]{}
	_ Cache[string, string] = expirableCache[string, string]{}
	_ Cache[string, string] = (*lru.TwoQueueCache[string, string])(nil)
)
