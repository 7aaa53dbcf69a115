package config

// NotifxConfig configures the notification system.
type NotifxConfig struct {
	Provider    string
	FromAddress string
	FromName    string
	AWSRegion   string
}

func loadNotifxConfig() NotifxConfig {
	return NotifxConfig{
		Provider:    getEnv("NOTIFX_PROVIDER", "console"),
		FromAddress: getEnv("NOTIFX_FROM_ADDRESS", getEnv("EMAIL_FROM_ADDRESS", "noreply@gatehouse.dev")),
		FromName:    getEnv("NOTIFX_FROM_NAME", getEnv("EMAIL_FROM_NAME", "Gatehouse")),
		AWSRegion:   getEnv("NOTIFX_AWS_REGION", getEnv("AWS_REGION", "us-east-1")),
	}
}
