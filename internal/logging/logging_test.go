package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/jrsteele09/go-tenant-auth/internal/logging"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	env, level string
}

func (c testConfig) GetEnv() string      { return c.env }
func (c testConfig) GetLogLevel() string { return c.level }
func (c testConfig) GetAppName() string  { return "Tenant Auth" }

func TestNew_JSONOutsideDev(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(testConfig{env: "PROD", level: "debug"}, &buf)

	logger.Debug().Str("username", "alice").Msg("refresh token rotated")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "debug", line["level"])
	require.Equal(t, "alice", line["username"])
	require.Equal(t, "Tenant Auth", line["app"])
}

func TestNew_ConsoleInDev(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(testConfig{env: "DEV", level: "info"}, &buf)

	logger.Info().Msg("listening")
	require.Contains(t, buf.String(), "listening")
	require.False(t, json.Valid(buf.Bytes()))
}

func TestNew_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(testConfig{env: "PROD", level: "WARN"}, &buf)
	require.Equal(t, zerolog.WarnLevel, logger.GetLevel())

	logger.Info().Msg("dropped")
	require.Zero(t, buf.Len())

	logger = logging.New(testConfig{env: "PROD", level: "nonsense"}, &buf)
	require.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}
