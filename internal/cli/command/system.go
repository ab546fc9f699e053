package command

import (
	"context"

	"github.com/urfave/cli/v2"
)

// SystemCommand returns the system subcommand group.
func SystemCommand() *cli.Command {
	return &cli.Command{
		Name:    "system",
		Aliases: []string{"sys"},
		Usage:   "Server management commands",
		Subcommands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Show server status summary",
				Action: systemStatus,
			},
			{
				Name:   "health",
				Usage:  "Check server health",
				Action: systemHealth,
			},
			{
				Name:   "sweep",
				Usage:  "Trigger one expiration sweep pass",
				Action: systemSweep,
			},
		},
	}
}

func systemStatus(c *cli.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout(c))
	defer cancel()

	status, err := apiClient(c).Status(ctx)
	if err != nil {
		return err
	}
	return printResult(c, status)
}

func systemHealth(c *cli.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout(c))
	defer cancel()

	if err := apiClient(c).Health(ctx); err != nil {
		PrintError("health check failed: %v", err)
		return err
	}
	return printResult(c, map[string]string{"status": "healthy"})
}

func systemSweep(c *cli.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout(c))
	defer cancel()

	result, err := apiClient(c).TriggerSweep(ctx)
	if err != nil {
		return err
	}
	return printResult(c, result)
}
