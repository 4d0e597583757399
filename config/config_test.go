package config

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestCheckOrigin(t *testing.T) {
	conf := Config{CorsAllowedOrigins: []string{"example.com"}}

	assert.True(t, conf.CheckOrigin("https://example.com"))
	assert.True(t, conf.CheckOrigin("http://EXAMPLE.com"))
	assert.False(t, conf.CheckOrigin("https://evil.com"))
	assert.False(t, Config{}.CheckOrigin("https://example.com"))
	assert.True(t, Config{CorsAllowedOrigins: []string{"*"}}.CheckOrigin("https://anything.io"))
}

func TestPortRange(t *testing.T) {
	min, max, ok := Config{TurnPortRange: "50000:55000"}.PortRange()
	assert.True(t, ok)
	assert.EqualValues(t, 50000, min)
	assert.EqualValues(t, 55000, max)

	_, _, ok = Config{TurnPortRange: "55000:50000"}.PortRange()
	assert.False(t, ok)
	_, _, ok = Config{}.PortRange()
	assert.False(t, ok)
	_, _, ok = Config{TurnPortRange: "abc"}.PortRange()
	assert.False(t, ok)
}

func TestTurnPort(t *testing.T) {
	assert.Equal(t, "3478", Config{TurnAddress: "0.0.0.0:3478"}.TurnPort())
	assert.Equal(t, "3478", Config{}.TurnPort())
}

func TestGetTurnRequiresPublicIP(t *testing.T) {
	t.Setenv("DESKRELAY_TURN_ADDRESS", "0.0.0.0:3478")

	_, logs := Get()
	assert.True(t, hasFatal(logs))

	t.Setenv("DESKRELAY_TURN_PUBLIC_IP", "203.0.113.9")
	_, logs = Get()
	assert.False(t, hasFatal(logs))
}

func hasFatal(logs []FutureLog) bool {
	for _, l := range logs {
		if l.Level == zerolog.FatalLevel {
			return true
		}
	}
	return false
}

func TestLogLevelDecode(t *testing.T) {
	var level LogLevel
	assert.NoError(t, level.Decode("debug"))
	assert.Error(t, level.Decode("bogus"))
}
