package config

import "time"

// SessionConfig configures the session cookie and its server-side records.
type SessionConfig struct {
	// CookieName is the name of the session cookie.
	CookieName string

	// CookieDomain scopes the cookie; empty means the request host.
	CookieDomain string

	// CookieSecure restricts the cookie to HTTPS.
	CookieSecure bool

	// Duration is the session lifetime, measured from the last renewal.
	Duration time.Duration

	// Secret signs the session token. Required.
	Secret string

	// RedisPrefix namespaces session records in the store.
	RedisPrefix string
}

func loadSessionConfig() SessionConfig {
	return SessionConfig{
		CookieName:   getEnv("GATEHOUSE_COOKIE_NAME", "gatehouse_token"),
		CookieDomain: getEnv("GATEHOUSE_COOKIE_DOMAIN", ""),
		CookieSecure: getEnvBool("GATEHOUSE_COOKIE_SECURE", false),
		Duration:     getEnvDuration("GATEHOUSE_COOKIE_DURATION", 365*24*time.Hour),
		Secret:       getEnv("GATEHOUSE_SESSION_SECRET", ""),
		RedisPrefix:  getEnv("GATEHOUSE_SESSION_REDIS_PREFIX", "gatehouse:session"),
	}
}

// SocialConfig holds the federated login application credentials.
type SocialConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	FacebookAppID      string
	FacebookAppSecret  string
}

func loadSocialConfig() SocialConfig {
	return SocialConfig{
		GoogleClientID:     getEnv("GATEHOUSE_GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GATEHOUSE_GOOGLE_CLIENT_SECRET", ""),
		FacebookAppID:      getEnv("GATEHOUSE_FACEBOOK_APP_ID", ""),
		FacebookAppSecret:  getEnv("GATEHOUSE_FACEBOOK_APP_SECRET", ""),
	}
}
