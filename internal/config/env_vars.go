package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	portEnvVar     = "PORT"
	appNameVar     = "APP_NAME"
	envEnvVar      = "ENV"
	logLevelEnvVar = "LOG_LEVEL"
)

type appSection struct {
	Name     string `yaml:"name"`
	Env      string `yaml:"env"`
	Port     string `yaml:"port"`
	LogLevel string `yaml:"logLevel"`
}

type EnvVars struct {
	file appSection
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, orDefault(e.file.Port, "8080"))
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return GetEnv(appNameVar, orDefault(e.file.Name, "Tenant Auth"))
}

func (e EnvVars) GetEnv() string {
	return GetEnv(envEnvVar, orDefault(e.file.Env, "DEV"))
}

func (e EnvVars) GetLogLevel() string {
	return GetEnv(logLevelEnvVar, orDefault(e.file.LogLevel, "info"))
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

// getMillis reads a duration given in milliseconds, falling back when unset or unparseable
func getMillis(envVar string, fileValue int64, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(envVar); v != "" {
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
			return time.Duration(ms) * time.Millisecond
		}
	}
	if fileValue != 0 {
		return time.Duration(fileValue) * time.Millisecond
	}
	return defaultValue
}

func getInt(envVar string, fileValue int) int {
	if v := os.Getenv(envVar); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fileValue
}

func getBool(envVar string, fileValue bool) bool {
	if v := os.Getenv(envVar); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fileValue
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
