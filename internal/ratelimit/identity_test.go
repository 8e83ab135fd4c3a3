package ratelimit

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var trusting = ProxyPolicy{Trust: true}

func TestClientIdentity_IgnoresProxyHeadersWhenUntrusted(t *testing.T) {
	got := ClientIdentity("10.0.0.9", "1.2.3.4", "5.6.7.8", ProxyPolicy{})
	assert.Equal(t, "10.0.0.9", got)
}

func TestClientIdentity_UsesLastForwardedHop(t *testing.T) {
	got := ClientIdentity("10.0.0.9", " 1.2.3.4 , 5.6.7.8", "", trusting)
	assert.Equal(t, "5.6.7.8", got)
}

func TestClientIdentity_SkipsTrustedProxies(t *testing.T) {
	proxies, err := ParseTrustedProxies("10.1.0.0/16, 192.0.2.1")
	require.NoError(t, err)
	policy := ProxyPolicy{Trust: true, Proxies: proxies}

	got := ClientIdentity("10.1.0.5", "9.9.9.9, 203.0.113.7, 192.0.2.1, 10.1.2.3", "", policy)
	assert.Equal(t, "203.0.113.7", got)
}

func TestClientIdentity_ForgedLoopbackIsNotHonoured(t *testing.T) {
	got := ClientIdentity("10.0.0.9", "127.0.0.1, 203.0.113.50", "", trusting)
	assert.Equal(t, "203.0.113.50", got)
	assert.False(t, IsLoopback(got))

	got = ClientIdentity("10.0.0.9", "127.0.0.1", "::1", trusting)
	assert.Equal(t, "10.0.0.9", got)

	assert.Equal(t, "127.0.0.1", ClientIdentity("127.0.0.1", "", "", trusting), "a real loopback connection stays exempt")
}

func TestClientIdentity_RotatingForgedHopsShareOneIdentity(t *testing.T) {
	l := NewLimiter(3)
	rejected := 0
	for i := 0; i < 10; i++ {
		id := ClientIdentity("10.0.0.9", fmt.Sprintf("198.51.100.%d, 203.0.113.60", i+1), "", trusting)
		if !l.Check(id).Allowed {
			rejected++
		}
	}
	assert.Equal(t, 7, rejected)
}

func TestClientIdentity_FallsBackToRealIP(t *testing.T) {
	got := ClientIdentity("10.0.0.9", "", "5.6.7.8", trusting)
	assert.Equal(t, "5.6.7.8", got)
}

func TestClientIdentity_StripsPortAndHandlesEmpty(t *testing.T) {
	assert.Equal(t, "10.0.0.9", ClientIdentity("10.0.0.9:5555", "", "", ProxyPolicy{}))
	assert.Equal(t, UnknownIdentity, ClientIdentity("", "", "", ProxyPolicy{}))
}

func TestParseTrustedProxies_RejectsGarbage(t *testing.T) {
	_, err := ParseTrustedProxies("10.0.0.1, not-an-ip")
	assert.Error(t, err)

	nets, err := ParseTrustedProxies("")
	require.NoError(t, err)
	assert.Empty(t, nets)
}

func TestIsLoopback(t *testing.T) {
	assert.True(t, IsLoopback("127.0.0.1"))
	assert.True(t, IsLoopback("::1"))
	assert.True(t, IsLoopback("[::1]"))
	assert.True(t, IsLoopback("LOCALHOST"))
	assert.False(t, IsLoopback("10.0.0.1"))
	assert.False(t, IsLoopback("unknown"))
}
