package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Config interface {
	EnvConfig
	CorsConfig
	JWTConfig
	StoreConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

// File is the optional YAML configuration. Environment variables override it.
type File struct {
	App   appSection   `yaml:"app"`
	Cors  corsSection  `yaml:"cors"`
	JWT   jwtSection   `yaml:"jwt"`
	Store storeSection `yaml:"store"`
}

type mainConfig struct {
	EnvVars
	Cors
	JWT
	Store
}

// New loads .env (if present), then the YAML file at path (if path is not empty).
func New(path string) (Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrap(err, "[config.New] failed to read .env")
	}

	f := File{}
	if path != "" {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		f = *loaded
	}
	return FromFile(f), nil
}

// FromFile builds a Config over an already parsed file
func FromFile(f File) Config {
	return mainConfig{
		EnvVars: EnvVars{file: f.App},
		Cors:    Cors{file: f.Cors},
		JWT:     JWT{file: f.JWT},
		Store:   Store{file: f.Store},
	}
}

func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "[config.Load] failed to read %s", path)
	}
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, errors.Wrapf(err, "[config.Load] failed to parse %s", path)
	}
	return &f, nil
}
