// cmd/container.go
//
// Root composition root. Owns infrastructure (Redis, Postgres, SES) and
// composes the gatehouse plugin. This is the only place that knows about
// every module.
package main

import (
	"context"
	"os"

	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/gatehouse-dev/gatehouse/pkg/audit"
	"github.com/gatehouse-dev/gatehouse/pkg/audit/auditinfra"
	"github.com/gatehouse-dev/gatehouse/pkg/authz"
	"github.com/gatehouse-dev/gatehouse/pkg/config"
	"github.com/gatehouse-dev/gatehouse/pkg/gatehouse"
	"github.com/gatehouse-dev/gatehouse/pkg/identity/identityinfra"
	"github.com/gatehouse-dev/gatehouse/pkg/logx"
	"github.com/gatehouse-dev/gatehouse/pkg/notifx"
	"github.com/gatehouse-dev/gatehouse/pkg/notifx/notifxconsole"
	"github.com/gatehouse-dev/gatehouse/pkg/notifx/notifxses"
	"github.com/gatehouse-dev/gatehouse/pkg/session/sessioninfra"
)

// Container holds shared infrastructure and the composed plugin.
type Container struct {
	Config *config.Config

	// Infrastructure
	DB         *sqlx.DB
	Redis      *redis.Client
	Prometheus *prometheus.Registry

	// Plugin
	Gatehouse *gatehouse.Manager
}

func NewContainer(cfg *config.Config) *Container {
	logx.Info("🔧 Initializing application container...")

	c := &Container{
		Config:     cfg,
		Prometheus: prometheus.NewRegistry(),
	}

	c.initInfrastructure()
	c.initGatehouse()

	logx.Info("✅ Application container initialized")
	return c
}

// ---------------------------------------------------------------------------
// Infrastructure: Redis, Postgres
// ---------------------------------------------------------------------------

func (c *Container) initInfrastructure() {
	logx.Info("🏗️ Initializing infrastructure...")

	// 1. Redis (session store, always required)
	c.Redis = redis.NewClient(&redis.Options{
		Addr:     c.Config.Redis.Address(),
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	})
	if _, err := c.Redis.Ping(context.Background()).Result(); err != nil {
		logx.Fatalf("Failed to connect to Redis: %v (Redis is required)", err)
	}
	logx.Info("  ✅ Redis connected")

	// 2. Database (audit trail only, connected when the trail is on)
	if c.Config.Audit.Enabled {
		db, err := sqlx.Connect("postgres", c.Config.Database.DSN())
		if err != nil {
			logx.Fatalf("Failed to connect to database: %v", err)
		}
		db.SetMaxOpenConns(c.Config.Database.MaxOpenConns)
		db.SetMaxIdleConns(c.Config.Database.MaxIdleConns)
		db.SetConnMaxLifetime(c.Config.Database.ConnMaxLifetime)
		c.DB = db
		logx.Info("  ✅ Database connected")
	}

	logx.Info("✅ Infrastructure initialized")
}

// ---------------------------------------------------------------------------
// Plugin composition
// ---------------------------------------------------------------------------

func (c *Container) initGatehouse() {
	logx.Info("📦 Initializing gatehouse...")

	client := identityinfra.NewRESTClient(identityinfra.ClientConfig{
		BaseURL:         c.Config.Directory.BaseURL,
		ApplicationHref: c.Config.Directory.ApplicationHref,
		APIKeyID:        c.Config.Directory.APIKeyID,
		APIKeySecret:    c.Config.Directory.APIKeySecret,
		Timeout:         c.Config.Directory.Timeout,
	})

	store := sessioninfra.NewRedisStore(c.Redis, c.Config.Session.RedisPrefix)

	var recorder audit.Recorder
	if c.Config.Audit.Enabled {
		recorder = audit.Multi(
			auditinfra.NewLogxRecorder(nil),
			auditinfra.NewPostgresRecorder(c.DB),
		)
		logx.Info("  ✅ Audit trail enabled (logx + postgres)")
	} else {
		// Events still reach the log when the persistent trail is off.
		recorder = auditinfra.NewLogxRecorder(nil)
	}

	metrics := authz.NewMetrics(authz.MetricsConfig{Registry: c.Prometheus})

	c.Gatehouse = gatehouse.New(gatehouse.Deps{
		Config:   c.Config,
		Client:   client,
		Store:    store,
		Recorder: recorder,
		Mailer:   c.buildMailer(),
		Metrics:  metrics,
	})
}

// buildMailer selects the mail provider. Console is the default so local
// development never needs AWS credentials.
func (c *Container) buildMailer() *notifx.Mailer {
	var provider notifx.Sender

	switch c.Config.Notifx.Provider {
	case "ses":
		awsCfg, err := awsConfig.LoadDefaultConfig(context.Background(),
			awsConfig.WithRegion(c.Config.Notifx.AWSRegion))
		if err != nil {
			logx.Fatalf("Unable to load AWS SDK config: %v", err)
		}
		provider = notifxses.NewSESProvider(ses.NewFromConfig(awsCfg), c.Config.Notifx.FromAddress)
		logx.Infof("  ✅ SES mail provider configured (region: %s)", c.Config.Notifx.AWSRegion)

	case "console":
		provider = notifxconsole.NewConsoleProvider()
		logx.Info("  ✅ Console mail provider configured")

	case "none":
		return nil

	default:
		logx.Fatalf("Unknown NOTIFX_PROVIDER: %s (use 'console', 'ses' or 'none')", c.Config.Notifx.Provider)
	}

	mailClient := notifx.NewClient(provider, c.Config.Notifx.FromAddress)
	mailer, err := notifx.NewMailer(mailClient, c.Config.Notifx.FromName)
	if err != nil {
		logx.Fatalf("Failed to build mailer: %v", err)
	}
	return mailer
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

func (c *Container) Cleanup() {
	logx.Info("🧹 Cleaning up resources...")

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			logx.Errorf("Error closing database: %v", err)
		} else {
			logx.Info("  ✅ Database connection closed")
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logx.Errorf("Error closing Redis: %v", err)
		} else {
			logx.Info("  ✅ Redis connection closed")
		}
	}

	logx.Info("✅ Cleanup complete")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
