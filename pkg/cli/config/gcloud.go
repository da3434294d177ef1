package config

import (
	"github.com/urfave/cli/v3"
	"google.golang.org/api/option"
)

// GoogleCloud holds credentials shared by Google Cloud clients
type GoogleCloud struct {
	CredentialsFile string
}

// Flags returns CLI flags for Google Cloud configuration
func (c *GoogleCloud) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gcp-credentials",
			Usage:       "Path to a service account key file, application default credentials when empty",
			Destination: &c.CredentialsFile,
			Sources:     cli.EnvVars("XNATSYNC_GCP_CREDENTIALS"),
		},
	}
}

// ClientOptions returns options for Google Cloud clients
func (c *GoogleCloud) ClientOptions() []option.ClientOption {
	if c == nil || c.CredentialsFile == "" {
		return nil
	}
	return []option.ClientOption{option.WithCredentialsFile(c.CredentialsFile)}
}
