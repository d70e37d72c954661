package cache

import (
	"testing"
)

func TestHashKey(t *testing.T) {
	tests := []struct {
		name  string
		parts []string
	}{
		{
			name:  "single part",
			parts: []string{"test"},
		},
		{
			name:  "multiple parts",
			parts: []string{"timeline", "public", "1"},
		},
		{
			name:  "empty parts",
			parts: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hashed1 := HashKey(tt.parts...)
			hashed2 := HashKey(tt.parts...)

			// Hash should be consistent
			if hashed1 != hashed2 {
				t.Errorf("HashKey() should be consistent, got %s and %s", hashed1, hashed2)
			}

			// Hash should be 32 characters (MD5 hex)
			if len(hashed1) != 32 {
				t.Errorf("HashKey() should return 32 character hex string, got length %d", len(hashed1))
			}
		})
	}
}

func TestHashKeyDistinct(t *testing.T) {
	if HashKey("timeline", "public") == HashKey("timeline", "private") {
		t.Error("HashKey() should differ for different inputs")
	}
}

func TestCache_NamespaceKey(t *testing.T) {
	cache := &Cache{}

	tests := []struct {
		name     string
		key      string
		expected string
	}{
		{
			name:     "simple key",
			key:      "test",
			expected: "chirp:test",
		},
		{
			name:     "key with colon",
			key:      "timeline:public:1",
			expected: "chirp:timeline:public:1",
		},
		{
			name:     "empty key",
			key:      "",
			expected: "chirp:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := cache.namespaceKey(tt.key)
			if result != tt.expected {
				t.Errorf("namespaceKey() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestCache_NilSafe(t *testing.T) {
	var cache *Cache

	if _, err := cache.Get("key"); err != ErrCacheDisabled {
		t.Errorf("Get on nil cache should return ErrCacheDisabled, got %v", err)
	}
	if err := cache.Set("key", "value", 0); err != ErrCacheDisabled {
		t.Errorf("Set on nil cache should return ErrCacheDisabled, got %v", err)
	}
	if err := cache.Delete("key"); err != ErrCacheDisabled {
		t.Errorf("Delete on nil cache should return ErrCacheDisabled, got %v", err)
	}
	if err := cache.Close(); err != nil {
		t.Errorf("Close on nil cache should be a no-op, got %v", err)
	}
}
