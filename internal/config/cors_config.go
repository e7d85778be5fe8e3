package config

import (
	"strings"
)

type corsSection struct {
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

type Cors struct {
	file corsSection
}

var _ CorsConfig = Cors{}

type AllowedOrigins map[string]struct{}
type nullValue = struct{}

func (a AllowedOrigins) IsAllowedOrigin(origin string) bool {
	_, ok := a[origin]
	return ok
}

func (a AllowedOrigins) String() string {
	var origins []string
	for k := range a {
		origins = append(origins, k)
	}
	return strings.Join(origins, ", ")
}

// GetAllowedOrigins reads CORS_ALLOWED_ORIGINS (comma separated) or the file list
func (c Cors) GetAllowedOrigins() AllowedOrigins {
	origins := c.file.AllowedOrigins
	if v := GetEnv("CORS_ALLOWED_ORIGINS", ""); v != "" {
		origins = strings.Split(v, ",")
	}
	allowed := AllowedOrigins{}
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			allowed[o] = nullValue{}
		}
	}
	return allowed
}

func (Cors) GetAllowedMethods() string {
	return "GET, POST, OPTIONS"
}

func (Cors) GetAllowedHeaders() string {
	return "Content-Type, Authorization"
}
