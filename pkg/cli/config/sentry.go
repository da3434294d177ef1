package config

import (
	"github.com/urfave/cli/v3"

	"github.com/digione/xnatsync/pkg/infra/reporter"
)

// Sentry holds error reporting configuration
type Sentry struct {
	DSN string `masq:"secret"`
	Env string
}

// Flags returns CLI flags for Sentry configuration
func (c *Sentry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sentry-dsn",
			Usage:       "Sentry DSN, reporting is disabled when empty",
			Destination: &c.DSN,
			Sources:     cli.EnvVars("XNATSYNC_SENTRY_DSN"),
		},
		&cli.StringFlag{
			Name:        "sentry-env",
			Usage:       "Sentry environment",
			Value:       "production",
			Destination: &c.Env,
			Sources:     cli.EnvVars("XNATSYNC_SENTRY_ENV"),
		},
	}
}

// NewReporter creates the error reporter
func (c *Sentry) NewReporter() (*reporter.Sentry, error) {
	return reporter.New(c.DSN, c.Env)
}
