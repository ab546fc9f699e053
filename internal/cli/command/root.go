package command

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/freshlane/cartvault/internal/cli/client"
	"github.com/freshlane/cartvault/internal/cli/config"
	"github.com/freshlane/cartvault/internal/cli/output"
	"github.com/freshlane/cartvault/internal/infra/buildinfo"
)

// App creates the CLI application.
func App() *cli.App {
	app := &cli.App{
		Name:    "cartvault-cli",
		Usage:   "CartVault command-line management tool",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			CartCommand(),
			RecoverCommand(),
			SystemCommand(),
		},
		Before: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}
			c.App.Metadata["cliConfig"] = cfg
			return nil
		},
	}

	return app
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "CartVault server address (e.g., 127.0.0.1:6180)",
			EnvVars: []string{"CARTVAULT_SERVER"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			EnvVars: []string{"CARTVAULT_OUTPUT"},
		},
		&cli.StringFlag{
			Name:  "config",
			Usage: "Path to CLI config file",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Request timeout",
			Value: client.DefaultTimeout,
		},
	}
}

// cliConfig returns the loaded config file, or defaults when App's
// Before hook has not run (as in direct command tests).
func cliConfig(c *cli.Context) *config.CLIConfig {
	if cfg, ok := c.App.Metadata["cliConfig"].(*config.CLIConfig); ok {
		return cfg
	}
	return config.Default()
}

// apiClient builds the API client: the --server flag wins, then the
// config file, then the built-in default.
func apiClient(c *cli.Context) *client.Client {
	server := c.String("server")
	if server == "" {
		server = cliConfig(c).DefaultServer
	}
	return client.New(server, client.WithTimeout(c.Duration("timeout")))
}

// formatter resolves the output format the same way.
func formatter(c *cli.Context) output.Formatter {
	format := c.String("output")
	if format == "" {
		format = cliConfig(c).DefaultOutput
	}
	return output.NewFormatter(output.Format(format))
}

// printResult writes data to stdout in the selected format.
func printResult(c *cli.Context, data any) error {
	return formatter(c).Format(c.App.Writer, data)
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// requestTimeout returns the per-command timeout.
func requestTimeout(c *cli.Context) time.Duration {
	if d := c.Duration("timeout"); d > 0 {
		return d
	}
	return client.DefaultTimeout
}
