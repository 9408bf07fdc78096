package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cacheerrors "github.com/Humphrey-He/rcache/pkg/errors"
)

func TestKeyTemplate(t *testing.T) {
	tests := []struct {
		tpl, key, rendered, pattern string
	}{
		{"", "u1", "u1", "*"},
		{"%s", "u1", "u1", "*"},
		{"app:users:%s", "u1", "app:users:u1", "app:users:*"},
		{"%s:v2", "u1", "u1:v2", "*:v2"},
		{"100%%:%s", "u1", "100%:u1", "100%:*"},
		{"[tenant]*:%s", "u1", "[tenant]*:u1", `\[tenant\]\*:*`},
	}
	for _, tt := range tests {
		kt, err := parseKeyTemplate(tt.tpl)
		require.NoError(t, err, tt.tpl)
		assert.Equal(t, tt.rendered, kt.render(tt.key), tt.tpl)
		assert.Equal(t, tt.pattern, kt.pattern(), tt.tpl)
	}
}

func TestKeyTemplateInvalid(t *testing.T) {
	for _, tpl := range []string{"users", "%s:%s", "%d", "users:%", "%%s"} {
		_, err := parseKeyTemplate(tpl)
		assert.ErrorIs(t, err, cacheerrors.ErrInvalidKeyTemplate, tpl)
	}
}
