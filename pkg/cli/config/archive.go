package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"

	"github.com/digione/xnatsync/pkg/infra/archive"
)

// Archive holds the Cloud Storage destination of staging folders
type Archive struct {
	Bucket string
	Prefix string
}

// Flags returns CLI flags for archive configuration
func (c *Archive) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "archive-bucket",
			Usage:       "Cloud Storage bucket receiving downloaded experiments, disabled when empty",
			Destination: &c.Bucket,
			Sources:     cli.EnvVars("XNATSYNC_ARCHIVE_BUCKET"),
		},
		&cli.StringFlag{
			Name:        "archive-prefix",
			Usage:       "Object name prefix in the archive bucket",
			Destination: &c.Prefix,
			Sources:     cli.EnvVars("XNATSYNC_ARCHIVE_PREFIX"),
		},
	}
}

// NewArchiver returns nil when no bucket is configured
func (c *Archive) NewArchiver(ctx context.Context, fs afero.Fs, gcp *GoogleCloud) (*archive.GCS, error) {
	if c.Bucket == "" {
		return nil, nil
	}

	a, err := archive.NewGCS(ctx, fs, c.Bucket, c.Prefix, gcp.ClientOptions()...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create archiver")
	}
	return a, nil
}
