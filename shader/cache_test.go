// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheHitAndMiss(t *testing.T) {
	c := NewCache(4)
	src := spirvSources().Vertex

	first, err := c.Compile(src)
	require.NoError(t, err)
	second, err := c.Compile(src)
	require.NoError(t, err)

	assert.Same(t, &first[0], &second[0], "hit returns the cached slice")
	assert.Equal(t, CacheStats{Len: 1, Hits: 1, Misses: 1}, c.Stats())
}

func TestCacheKeyIncludesEntryPoint(t *testing.T) {
	c := NewCache(4)
	src := spirvSources().Vertex

	_, err := c.Compile(src)
	require.NoError(t, err)

	src.EntryPoint = "other"
	_, err = c.Compile(src)
	require.ErrorIs(t, err, ErrEntryPointNotFound)
	assert.Equal(t, 1, c.Len(), "failures are not cached")
}

func TestCacheEviction(t *testing.T) {
	c := NewCache(2)
	srcs := []Source{
		{Name: "a", Code: posColorModule("a").bytes(), EntryPoint: "a", Kind: KindVertex, Language: LanguageSPIRV},
		{Name: "b", Code: posColorModule("b").bytes(), EntryPoint: "b", Kind: KindVertex, Language: LanguageSPIRV},
		{Name: "c", Code: posColorModule("c").bytes(), EntryPoint: "c", Kind: KindVertex, Language: LanguageSPIRV},
	}
	for _, src := range srcs {
		_, err := c.Compile(src)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, c.Len())
	assert.EqualValues(t, 1, c.Stats().Evictions)

	// "a" was least recently used and must compile again.
	_, err := c.Compile(srcs[0])
	require.NoError(t, err)
	assert.EqualValues(t, 4, c.Stats().Misses)
}

func TestCacheNil(t *testing.T) {
	var c *Cache
	words, err := c.Compile(spirvSources().Vertex)
	require.NoError(t, err)
	assert.NotEmpty(t, words)
}

func TestCacheConcurrent(t *testing.T) {
	c := NewCache(0)
	src := spirvSources().Vertex

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Compile(src)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, c.Len())
	s := c.Stats()
	assert.EqualValues(t, 8, s.Hits+s.Misses)
}

func TestPrecompileWithCache(t *testing.T) {
	c := NewCache(0)
	require.NoError(t, Precompile(spirvSources(), WithCache(c)).Err())
	require.NoError(t, Precompile(spirvSources(), WithCache(c), WithReflection()).Err())

	s := c.Stats()
	assert.EqualValues(t, 2, s.Misses)
	assert.EqualValues(t, 2, s.Hits)
}
