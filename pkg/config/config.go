package config

import (
	"net/http"

	"github.com/gatehouse-dev/gatehouse/pkg/errx"
)

// Config is the process-wide configuration. It is loaded once at startup,
// validated before the server accepts traffic, and read-only afterwards.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Directory DirectoryConfig
	Fields    FieldPolicyConfig
	Views     ViewConfig
	Session   SessionConfig
	Social    SocialConfig
	Redis     RedisConfig
	Database  DatabaseConfig
	Audit     AuditConfig
	Notifx    NotifxConfig
	Authz     AuthzConfig
}

// Load reads the full configuration from the environment, applying defaults
// for everything optional. It does not validate; call Validate before use.
func Load() *Config {
	return &Config{
		Server:    loadServerConfig(),
		Log:       loadLogConfig(),
		Directory: loadDirectoryConfig(),
		Fields:    loadFieldPolicyConfig(),
		Views:     loadViewConfig(),
		Session:   loadSessionConfig(),
		Social:    loadSocialConfig(),
		Redis:     loadRedisConfig(),
		Database:  loadDatabaseConfig(),
		Audit:     loadAuditConfig(),
		Notifx:    loadNotifxConfig(),
		Authz:     loadAuthzConfig(),
	}
}

// AuthzConfig holds the process-wide authorization switches.
type AuthzConfig struct {
	// Disabled turns the whole authorization layer off for the process
	// lifetime. Intended for maintenance windows and test harnesses.
	Disabled bool
}

func loadAuthzConfig() AuthzConfig {
	return AuthzConfig{
		Disabled: getEnvBool("GATEHOUSE_AUTH_DISABLED", false),
	}
}

// ============================================================================
// Validation
// ============================================================================

var ErrRegistry = errx.NewRegistry("CONFIG")

var (
	CodeMissingCredentials = ErrRegistry.Register("MISSING_CREDENTIALS", errx.TypeConfiguration, http.StatusInternalServerError, "Directory API credentials are not configured")
	CodeMissingApplication = ErrRegistry.Register("MISSING_APPLICATION", errx.TypeConfiguration, http.StatusInternalServerError, "Directory application href is not configured")
	CodeMissingSecret      = ErrRegistry.Register("MISSING_SESSION_SECRET", errx.TypeConfiguration, http.StatusInternalServerError, "Session signing secret is not configured")
	CodeInvalidSetting     = ErrRegistry.Register("INVALID_SETTING", errx.TypeConfiguration, http.StatusInternalServerError, "Invalid configuration value")
	CodeBadCredentialsFile = ErrRegistry.Register("BAD_CREDENTIALS_FILE", errx.TypeConfiguration, http.StatusInternalServerError, "Directory API key file could not be read")
)

// Validate checks the configuration the service cannot run without. It must
// be called at startup, before any route is registered; a non-nil result is
// fatal.
func (c *Config) Validate() error {
	if err := c.Directory.validate(); err != nil {
		return err
	}
	if c.Session.Secret == "" {
		return ErrRegistry.New(CodeMissingSecret)
	}
	if c.Session.Duration <= 0 {
		return ErrRegistry.New(CodeInvalidSetting).WithDetail("setting", "GATEHOUSE_COOKIE_DURATION")
	}
	if c.Views.EnableGoogle && (c.Social.GoogleClientID == "" || c.Social.GoogleClientSecret == "") {
		return ErrRegistry.New(CodeInvalidSetting).
			WithDetail("setting", "GATEHOUSE_GOOGLE_CLIENT_ID").
			WithDetail("reason", "Google login enabled without client credentials")
	}
	if c.Views.EnableFacebook && (c.Social.FacebookAppID == "" || c.Social.FacebookAppSecret == "") {
		return ErrRegistry.New(CodeInvalidSetting).
			WithDetail("setting", "GATEHOUSE_FACEBOOK_APP_ID").
			WithDetail("reason", "Facebook login enabled without app credentials")
	}
	return c.Fields.validate()
}
