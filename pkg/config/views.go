package config

// ViewConfig declares which built-in views the plugin registers and where.
type ViewConfig struct {
	EnableRegistration   bool
	RegistrationPath     string
	RegistrationTemplate string

	// VerifyEmail registers new accounts as UNVERIFIED; the directory
	// service mails the verification link and blocks login until it is
	// followed.
	VerifyEmail bool

	EnableLogin   bool
	LoginPath     string
	LoginTemplate string

	EnableLogout bool
	LogoutPath   string

	EnableForgotPassword bool
	ForgotPath           string
	ForgotTemplate       string
	ForgotChangePath     string
	ForgotChangeTemplate string

	EnableGoogle bool
	GooglePath   string

	EnableFacebook bool
	FacebookPath   string

	// RedirectURL is where successful logins land when no explicit "next"
	// destination was requested.
	RedirectURL string
}

func loadViewConfig() ViewConfig {
	return ViewConfig{
		EnableRegistration:   getEnvBool("GATEHOUSE_ENABLE_REGISTRATION", true),
		RegistrationPath:     getEnv("GATEHOUSE_REGISTRATION_PATH", "/register"),
		RegistrationTemplate: getEnv("GATEHOUSE_REGISTRATION_TEMPLATE", "register"),
		VerifyEmail:          getEnvBool("GATEHOUSE_VERIFY_EMAIL", false),

		EnableLogin:   getEnvBool("GATEHOUSE_ENABLE_LOGIN", true),
		LoginPath:     getEnv("GATEHOUSE_LOGIN_PATH", "/login"),
		LoginTemplate: getEnv("GATEHOUSE_LOGIN_TEMPLATE", "login"),

		EnableLogout: getEnvBool("GATEHOUSE_ENABLE_LOGOUT", true),
		LogoutPath:   getEnv("GATEHOUSE_LOGOUT_PATH", "/logout"),

		EnableForgotPassword: getEnvBool("GATEHOUSE_ENABLE_FORGOT_PASSWORD", false),
		ForgotPath:           getEnv("GATEHOUSE_FORGOT_PATH", "/forgot"),
		ForgotTemplate:       getEnv("GATEHOUSE_FORGOT_TEMPLATE", "forgot"),
		ForgotChangePath:     getEnv("GATEHOUSE_FORGOT_CHANGE_PATH", "/forgot/change"),
		ForgotChangeTemplate: getEnv("GATEHOUSE_FORGOT_CHANGE_TEMPLATE", "forgot_change"),

		EnableGoogle: getEnvBool("GATEHOUSE_ENABLE_GOOGLE", false),
		GooglePath:   getEnv("GATEHOUSE_GOOGLE_PATH", "/google"),

		EnableFacebook: getEnvBool("GATEHOUSE_ENABLE_FACEBOOK", false),
		FacebookPath:   getEnv("GATEHOUSE_FACEBOOK_PATH", "/facebook"),

		RedirectURL: getEnv("GATEHOUSE_REDIRECT_URL", "/"),
	}
}
