package config

import (
	"bufio"
	"os"
	"strings"
	"time"
)

// DirectoryConfig holds the credentials and endpoints for the remote
// directory service. Credentials may come from the environment directly or
// from a properties-style key file.
type DirectoryConfig struct {
	BaseURL         string
	ApplicationHref string
	APIKeyID        string
	APIKeySecret    string
	APIKeyFile      string
	Timeout         time.Duration
}

func loadDirectoryConfig() DirectoryConfig {
	return DirectoryConfig{
		BaseURL:         getEnv("GATEHOUSE_BASE_URL", "https://api.directory.example.com/v1"),
		ApplicationHref: getEnv("GATEHOUSE_APPLICATION_HREF", ""),
		APIKeyID:        getEnv("GATEHOUSE_API_KEY_ID", ""),
		APIKeySecret:    getEnv("GATEHOUSE_API_KEY_SECRET", ""),
		APIKeyFile:      getEnv("GATEHOUSE_API_KEY_FILE", ""),
		Timeout:         getEnvDuration("GATEHOUSE_API_TIMEOUT", 30*time.Second),
	}
}

func (d *DirectoryConfig) validate() error {
	if d.APIKeyID == "" || d.APIKeySecret == "" {
		if d.APIKeyFile == "" {
			return ErrRegistry.New(CodeMissingCredentials)
		}
		if err := d.loadKeyFile(); err != nil {
			return err
		}
	}
	if d.ApplicationHref == "" {
		return ErrRegistry.New(CodeMissingApplication)
	}
	return nil
}

// loadKeyFile reads credentials from a properties file of the form the
// directory service's dashboard exports:
//
//	apiKey.id = XXXX
//	apiKey.secret = YYYY
func (d *DirectoryConfig) loadKeyFile() error {
	f, err := os.Open(d.APIKeyFile)
	if err != nil {
		return ErrRegistry.New(CodeBadCredentialsFile).
			WithDetail("path", d.APIKeyFile).
			WithCause(err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		switch key {
		case "apiKey.id":
			d.APIKeyID = value
		case "apiKey.secret":
			d.APIKeySecret = value
		}
	}
	if err := scanner.Err(); err != nil {
		return ErrRegistry.New(CodeBadCredentialsFile).
			WithDetail("path", d.APIKeyFile).
			WithCause(err)
	}

	if d.APIKeyID == "" || d.APIKeySecret == "" {
		return ErrRegistry.New(CodeBadCredentialsFile).
			WithDetail("path", d.APIKeyFile).
			WithDetail("reason", "file is missing apiKey.id or apiKey.secret")
	}
	return nil
}
