package config

import "github.com/urfave/cli/v3"

// Server holds server configuration
type Server struct {
	Addr string
}

// Flags returns CLI flags for server configuration
func (c *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Address of the HTTP control surface, disabled when empty (e.g. localhost:8080)",
			Destination: &c.Addr,
			Sources:     cli.EnvVars("XNATSYNC_ADDR"),
		},
	}
}

// Enabled returns true when the HTTP server should be started
func (c *Server) Enabled() bool {
	return c.Addr != ""
}
