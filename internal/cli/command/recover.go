package command

import (
	"context"

	"github.com/urfave/cli/v2"
)

// RecoverCommand returns the recover command.
func RecoverCommand() *cli.Command {
	return &cli.Command{
		Name:      "recover",
		Usage:     "Rebuild a cart from a recovery token",
		ArgsUsage: "TOKEN",
		Description: "Recovery mints a brand-new cart from the token's items. " +
			"The new cart has fresh IDs and totals recomputed at current " +
			"prices; the expired cart itself is never restored.",
		Action: recoverCart,
	}
}

func recoverCart(c *cli.Context) error {
	token, err := requireArg(c, 0, "TOKEN")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout(c))
	defer cancel()

	cart, err := apiClient(c).Recover(ctx, token)
	if err != nil {
		return err
	}
	return printResult(c, cart)
}
