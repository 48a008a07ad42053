package ports

import (
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFreePort(t *testing.T) {
	p, err := FindFreePort()
	require.NoError(t, err)
	assert.Greater(t, p, 0)
}

func TestResolveAddr(t *testing.T) {
	for _, in := range []string{"", "auto", ":0", "127.0.0.1:0"} {
		out, err := ResolveAddr(in)
		require.NoError(t, err, in)
		_, port, err := net.SplitHostPort(out)
		require.NoError(t, err)
		assert.NotEqual(t, "0", port, in)
	}

	out, err := ResolveAddr("0.0.0.0:3000")
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:3000", out)

	out, err = ResolveAddr("8080")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", out)

	_, err = ResolveAddr("no-port")
	assert.Error(t, err)
}

func TestBaseURL(t *testing.T) {
	assert.Equal(t, "http://127.0.0.1:3000", BaseURL(":3000"))
	assert.Equal(t, "http://127.0.0.1:3000", BaseURL("0.0.0.0:3000"))
	assert.Equal(t, "http://example.test:80", BaseURL("example.test:80"))
	assert.True(t, strings.HasPrefix(BaseURL("[::1]:9"), "http://[::1]"))
}
