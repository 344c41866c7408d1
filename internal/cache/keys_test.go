package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyBuilder_TokenKey(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{"with prefix", "dandb", "access-token-cache-key", "dandb:token:access-token-cache-key"},
		{"empty prefix", "", "k", "token:k"},
		{"trims whitespace and separators", "  dandb: ", "k", "dandb:token:k"},
		{"nested prefix", "app:prod", "k", "app:prod:token:k"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewKeyBuilder(tt.prefix).TokenKey(tt.key))
		})
	}
}

func TestKeyBuilder_ParseKey(t *testing.T) {
	kb := NewKeyBuilder("dandb")

	key, ok := kb.ParseKey("dandb:token:tenant:a")
	assert.True(t, ok)
	assert.Equal(t, "tenant:a", key)

	_, ok = kb.ParseKey("other:token:a")
	assert.False(t, ok)

	_, ok = kb.ParseKey("dandb:session:a")
	assert.False(t, ok)
}

func TestKeyBuilder_Pattern(t *testing.T) {
	assert.Equal(t, "dandb:token:*", NewKeyBuilder("dandb").Pattern())
	assert.Equal(t, "token:*", NewKeyBuilder("").Pattern())
	assert.Equal(t, "dandb", NewKeyBuilder("dandb").Prefix())
}
