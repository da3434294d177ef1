package config

import (
	"bytes"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/digione/xnatsync/pkg/domain/model"
	"github.com/digione/xnatsync/pkg/usecase"
)

// Policy decides which experiments are complete and how the crawl and ledger behave.
// Values given by flags take precedence over the policy file.
type Policy struct {
	File             string
	RequiredTypes    []string
	CrawlConcurrency int
	RetryIncomplete  bool
}

type policyFile struct {
	RequiredTypes    []string `toml:"required_types"`
	CrawlConcurrency int      `toml:"crawl_concurrency"`
	RetryIncomplete  bool     `toml:"retry_incomplete"`
}

// Flags returns CLI flags for policy configuration
func (c *Policy) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "policy-file",
			Usage:       "Path to a TOML policy file",
			Destination: &c.File,
			Sources:     cli.EnvVars("XNATSYNC_POLICY_FILE"),
		},
		&cli.StringSliceFlag{
			Name:        "required-type",
			Usage:       "Scan data type required for an experiment to be complete (repeatable, default: CT and RT image)",
			Destination: &c.RequiredTypes,
			Sources:     cli.EnvVars("XNATSYNC_REQUIRED_TYPES"),
		},
		&cli.IntFlag{
			Name:        "crawl-concurrency",
			Usage:       "Number of concurrent listing requests per hierarchy level (default: 1)",
			Destination: &c.CrawlConcurrency,
			Sources:     cli.EnvVars("XNATSYNC_CRAWL_CONCURRENCY"),
		},
		&cli.BoolFlag{
			Name:        "retry-incomplete",
			Usage:       "Record only downloaded experiments in the ledger so others are examined again",
			Destination: &c.RetryIncomplete,
			Sources:     cli.EnvVars("XNATSYNC_RETRY_INCOMPLETE"),
		},
	}
}

// Load reads the policy file, if any, and fills the values not given by flags
func (c *Policy) Load() error {
	if c.File != "" {
		raw, err := os.ReadFile(c.File)
		if err != nil {
			return goerr.Wrap(err, "failed to read policy file", goerr.V("path", c.File))
		}

		var f policyFile
		dec := toml.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return goerr.Wrap(err, "failed to parse policy file", goerr.V("path", c.File))
		}

		if len(c.RequiredTypes) == 0 {
			c.RequiredTypes = f.RequiredTypes
		}
		if c.CrawlConcurrency == 0 {
			c.CrawlConcurrency = f.CrawlConcurrency
		}
		c.RetryIncomplete = c.RetryIncomplete || f.RetryIncomplete
	}

	if len(c.RequiredTypes) == 0 {
		c.RequiredTypes = model.DefaultRequiredTypes()
	}
	if c.CrawlConcurrency == 0 {
		c.CrawlConcurrency = 1
	}
	if c.CrawlConcurrency < 0 {
		return goerr.New("crawl concurrency must be positive", goerr.V("value", c.CrawlConcurrency))
	}

	return nil
}

// SyncOptions returns options for the sync use case
func (c *Policy) SyncOptions() []usecase.SyncOption {
	return []usecase.SyncOption{
		usecase.WithRequiredTypes(c.RequiredTypes...),
		usecase.WithCrawlConcurrency(c.CrawlConcurrency),
	}
}
