package proxy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundRobinProxySwitcher(t *testing.T) {
	p, err := RoundRobinProxySwitcher("http://127.0.0.1:8888", "http://127.0.0.1:9999")
	require.NoError(t, err)

	var got []string
	for i := 0; i < 4; i++ {
		u, err := p(nil)
		require.NoError(t, err)
		got = append(got, u.String())
	}
	assert.Equal(t, []string{
		"http://127.0.0.1:8888",
		"http://127.0.0.1:9999",
		"http://127.0.0.1:8888",
		"http://127.0.0.1:9999",
	}, got)
}

func TestRoundRobinProxySwitcherInvalid(t *testing.T) {
	_, err := RoundRobinProxySwitcher()
	assert.Error(t, err)

	_, err = RoundRobinProxySwitcher("http://%zz")
	assert.Error(t, err)

	_, err = RoundRobinProxySwitcher("/no/scheme/or/host")
	assert.Error(t, err)
}
