package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"

	"github.com/digione/xnatsync/pkg/domain/model"
)

func cmdRun() *cli.Command {
	var cfg listenerConfig

	return &cli.Command{
		Name:  "run",
		Usage: "Run a single discovery and download pass",
		Flags: cfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			listener, closer, err := cfg.build(ctx, afero.NewOsFs())
			if err != nil {
				return err
			}
			defer closer()

			report, err := listener.RunOnce(ctx)
			if err != nil {
				return goerr.Wrap(err, "pass failed")
			}

			printReport(os.Stdout, report)
			return nil
		},
	}
}

var (
	outcomeColors = map[model.Outcome]*color.Color{
		model.OutcomeDownloaded: color.New(color.FgGreen),
		model.OutcomeIncomplete: color.New(color.FgYellow),
		model.OutcomeFailed:     color.New(color.FgRed),
	}
	bold = color.New(color.Bold)
)

func printReport(w io.Writer, report *model.PassReport) {
	pass := report.Pass
	if pass == nil {
		return
	}

	_, _ = bold.Fprintf(w, "Pass %s (%s)\n", pass.ID, pass.FinishedAt.Sub(pass.StartedAt).Round(time.Millisecond))
	for _, r := range pass.Results {
		c := outcomeColors[r.Outcome]
		_, _ = c.Fprintf(w, "  %-10s", r.Outcome)
		_, _ = fmt.Fprintf(w, " %s/%s", r.Project, r.Label)

		switch r.Outcome {
		case model.OutcomeDownloaded:
			_, _ = fmt.Fprintf(w, " %d files -> %s", len(r.Files), r.Folder)
		case model.OutcomeIncomplete:
			_, _ = fmt.Fprintf(w, " missing %s", strings.Join(r.MissingTypes, ", "))
		case model.OutcomeFailed:
			_, _ = fmt.Fprintf(w, " %s", r.Error)
		}
		_, _ = fmt.Fprintln(w)
	}

	_, _ = fmt.Fprintf(w, "examined %d, downloaded %d, incomplete %d, failed %d, recorded %d\n",
		len(pass.Results),
		pass.Count(model.OutcomeDownloaded),
		pass.Count(model.OutcomeIncomplete),
		pass.Count(model.OutcomeFailed),
		len(report.Recorded),
	)
}
