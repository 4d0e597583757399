package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
)

const prefix = "deskrelay"

// FutureLog is a log statement that is recorded before the logger is
// configured and emitted once it is.
type FutureLog struct {
	Level zerolog.Level
	Msg   string
}

func futureFatal(msg string) FutureLog {
	return FutureLog{Level: zerolog.FatalLevel, Msg: msg}
}

// Config is loaded from the environment with the DESKRELAY_ prefix,
// optionally seeded from dotenv files.
type Config struct {
	LogLevel LogLevel `split_words:"true" default:"info"`

	ServerAddress string `split_words:"true" default:"0.0.0.0:5051"`
	TLSCertFile   string `envconfig:"TLS_CERT_FILE"`
	TLSKeyFile    string `envconfig:"TLS_KEY_FILE"`

	Secret             []byte   `split_words:"true"`
	CorsAllowedOrigins []string `split_words:"true"`
	TrustProxyHeaders  bool     `split_words:"true"`
	Prometheus         bool     `split_words:"true"`

	SessionTTL           time.Duration `envconfig:"SESSION_TTL" default:"24h"`
	SessionSweepInterval time.Duration `split_words:"true" default:"1h"`
	PinAttempts          int           `split_words:"true" default:"5"`
	LockoutDuration      time.Duration `split_words:"true" default:"10m"`

	FrameInterval time.Duration `split_words:"true" default:"33ms"`

	TurnAddress   string `split_words:"true"`
	TurnPublicIP  string `envconfig:"TURN_PUBLIC_IP"`
	TurnPortRange string `split_words:"true"`
}

// LogLevel is a zerolog level name understood by envconfig.
type LogLevel string

func (l *LogLevel) Decode(value string) error {
	if _, err := zerolog.ParseLevel(value); err != nil {
		return fmt.Errorf("invalid log level %q", value)
	}
	*l = LogLevel(value)
	return nil
}

func (l LogLevel) AsZeroLogLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(string(l))
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// CheckOrigin reports whether a cross-origin request from origin is allowed.
func (c Config) CheckOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	for _, allowed := range c.CorsAllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, u.Host) {
			return true
		}
	}
	return false
}

// TurnEnabled reports whether the embedded TURN/STUN server should run.
func (c Config) TurnEnabled() bool {
	return c.TurnAddress != ""
}

// TurnPort returns the port component of TurnAddress.
func (c Config) TurnPort() string {
	_, port, err := splitHostPort(c.TurnAddress)
	if err != nil {
		return "3478"
	}
	return port
}

// PortRange parses TurnPortRange, expected as "min:max".
func (c Config) PortRange() (uint16, uint16, bool) {
	parts := strings.SplitN(c.TurnPortRange, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	min, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil {
		return 0, 0, false
	}
	max, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil || max < min {
		return 0, 0, false
	}
	return uint16(min), uint16(max), true
}

func splitHostPort(addr string) (string, string, error) {
	i := strings.LastIndex(addr, ":")
	if i < 0 {
		return "", "", fmt.Errorf("missing port in %q", addr)
	}
	return addr[:i], addr[i+1:], nil
}

func configFiles() []string {
	return []string{
		".env." + prefix + ".local",
		".env." + prefix,
		".env",
	}
}

// Get loads the configuration from dotenv files and the environment.
// Log statements produced while loading are returned for later emission.
func Get() (Config, []FutureLog) {
	var logs []FutureLog
	for _, file := range configFiles() {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			logs = append(logs, futureFatal(fmt.Sprintf("cannot load file %s: %s", file, err)))
		} else {
			logs = append(logs, FutureLog{
				Level: zerolog.DebugLevel,
				Msg:   fmt.Sprintf("Loading file %s", file),
			})
		}
	}

	config := Config{}
	if err := envconfig.Process(prefix, &config); err != nil {
		logs = append(logs, futureFatal(fmt.Sprintf("cannot parse env params: %s", err)))
	}

	if config.FrameInterval < time.Millisecond {
		logs = append(logs, FutureLog{
			Level: zerolog.WarnLevel,
			Msg:   fmt.Sprintf("frame interval %s below 1ms, using 1ms", config.FrameInterval),
		})
		config.FrameInterval = time.Millisecond
	}
	if config.PinAttempts < 1 {
		logs = append(logs, futureFatal("DESKRELAY_PIN_ATTEMPTS must be at least 1"))
	}
	if config.TurnEnabled() && net.ParseIP(config.TurnPublicIP) == nil {
		logs = append(logs, futureFatal("DESKRELAY_TURN_ADDRESS requires a valid DESKRELAY_TURN_PUBLIC_IP"))
	}

	return config, logs
}
