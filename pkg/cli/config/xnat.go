package config

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/digione/xnatsync/pkg/domain/interfaces"
	"github.com/digione/xnatsync/pkg/infra/xnat"
)

// XNAT holds the XNAT server address and credentials
type XNAT struct {
	URL      string
	User     string
	Password string `masq:"secret"`
	Timeout  time.Duration
}

// Flags returns CLI flags for XNAT configuration
func (c *XNAT) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "xnat-url",
			Usage:       "Base URL of the XNAT server (e.g. https://xnat.example.org)",
			Required:    true,
			Destination: &c.URL,
			Sources:     cli.EnvVars("XNATSYNC_XNAT_URL"),
		},
		&cli.StringFlag{
			Name:        "xnat-user",
			Usage:       "XNAT user name",
			Required:    true,
			Destination: &c.User,
			Sources:     cli.EnvVars("XNATSYNC_XNAT_USER"),
		},
		&cli.StringFlag{
			Name:        "xnat-password",
			Usage:       "XNAT password",
			Required:    true,
			Destination: &c.Password,
			Sources:     cli.EnvVars("XNATSYNC_XNAT_PASSWORD"),
		},
		&cli.DurationFlag{
			Name:        "xnat-timeout",
			Usage:       "Timeout of a single request to XNAT, no timeout when 0",
			Destination: &c.Timeout,
			Sources:     cli.EnvVars("XNATSYNC_XNAT_TIMEOUT"),
		},
	}
}

// NewClient creates an authenticated XNAT client
func (c *XNAT) NewClient() (interfaces.XNATClient, error) {
	var opts []xnat.Option
	if c.Timeout > 0 {
		opts = append(opts, xnat.WithTimeout(c.Timeout))
	}

	client, err := xnat.NewClient(c.URL, c.User, c.Password, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create XNAT client", goerr.V("url", c.URL))
	}
	return client, nil
}
