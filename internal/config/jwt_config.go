package config

import "time"

const (
	jwtSecretEnvVar     = "JWT_SECRET"
	accessExpiryEnvVar  = "JWT_ACCESS_TOKEN_EXPIRATION_MS"
	refreshExpiryEnvVar = "JWT_REFRESH_TOKEN_EXPIRATION_MS"
	jwtLeewayEnvVar     = "JWT_LEEWAY_MS"
	secureCookiesEnvVar = "JWT_SECURE_COOKIES"

	defaultAccessExpiry  = 15 * time.Minute
	defaultRefreshExpiry = 14 * 24 * time.Hour
)

type JWTConfig interface {
	GetSecret() string
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
	GetLeeway() time.Duration
	GetSecureCookies() bool
}

type jwtSection struct {
	Secret                   string `yaml:"secret"`
	AccessTokenExpirationMs  int64  `yaml:"accessTokenExpirationMs"`
	RefreshTokenExpirationMs int64  `yaml:"refreshTokenExpirationMs"`
	LeewayMs                 int64  `yaml:"leewayMs"`
	SecureCookies            bool   `yaml:"secureCookies"`
}

type JWT struct {
	file jwtSection
}

var _ JWTConfig = JWT{}

func (j JWT) GetSecret() string {
	return GetEnv(jwtSecretEnvVar, j.file.Secret)
}

func (j JWT) GetAccessTokenExpiry() time.Duration {
	return getMillis(accessExpiryEnvVar, j.file.AccessTokenExpirationMs, defaultAccessExpiry)
}

func (j JWT) GetRefreshTokenExpiry() time.Duration {
	return getMillis(refreshExpiryEnvVar, j.file.RefreshTokenExpirationMs, defaultRefreshExpiry)
}

func (j JWT) GetLeeway() time.Duration {
	return getMillis(jwtLeewayEnvVar, j.file.LeewayMs, 0)
}

func (j JWT) GetSecureCookies() bool {
	return getBool(secureCookiesEnvVar, j.file.SecureCookies)
}
