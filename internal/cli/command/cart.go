package command

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/freshlane/cartvault/internal/server/httpserver/handler"
)

// CartCommand returns the cart subcommand group.
func CartCommand() *cli.Command {
	return &cli.Command{
		Name:  "cart",
		Usage: "Manage carts",
		Subcommands: []*cli.Command{
			{
				Name:      "create",
				Usage:     "Create a cart, optionally seeded with items",
				ArgsUsage: " ",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:    "item",
						Aliases: []string{"i"},
						Usage:   "Initial item as sku=quantity (repeatable)",
					},
					&cli.StringFlag{Name: "name", Usage: "Customer name"},
					&cli.StringFlag{Name: "email", Usage: "Customer email"},
					&cli.StringFlag{Name: "phone", Usage: "Customer phone"},
				},
				Action: cartCreate,
			},
			{
				Name:      "get",
				Usage:     "Fetch a cart (refreshes its expiry)",
				ArgsUsage: "CART_ID",
				Action:    cartGet,
			},
			{
				Name:      "add",
				Usage:     "Add quantity of a SKU to a cart",
				ArgsUsage: "CART_ID",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "sku", Usage: "SKU to add", Required: true},
					&cli.IntFlag{Name: "quantity", Aliases: []string{"q"}, Usage: "Quantity to add", Value: 1},
				},
				Action: cartAdd,
			},
			{
				Name:      "remove",
				Usage:     "Remove a line from a cart",
				ArgsUsage: "CART_ID LINE_ID",
				Action:    cartRemove,
			},
			{
				Name:      "customer",
				Usage:     "Set or clear a cart's customer annotation",
				ArgsUsage: "CART_ID",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "Customer name"},
					&cli.StringFlag{Name: "email", Usage: "Customer email"},
					&cli.StringFlag{Name: "phone", Usage: "Customer phone"},
					&cli.BoolFlag{Name: "clear", Usage: "Clear the customer annotation"},
				},
				Action: cartCustomer,
			},
			{
				Name:      "delete",
				Usage:     "Delete a cart",
				ArgsUsage: "CART_ID",
				Action:    cartDelete,
			},
		},
	}
}

func cartCreate(c *cli.Context) error {
	req := &handler.CreateCartRequest{}
	for _, spec := range c.StringSlice("item") {
		item, err := parseItemSpec(spec)
		if err != nil {
			return err
		}
		req.Items = append(req.Items, item)
	}
	if customer := customerFromFlags(c); customer != nil {
		req.Customer = customer
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout(c))
	defer cancel()

	cart, err := apiClient(c).CreateCart(ctx, req)
	if err != nil {
		return err
	}
	return printResult(c, cart)
}

func cartGet(c *cli.Context) error {
	cartID, err := requireArg(c, 0, "CART_ID")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout(c))
	defer cancel()

	cart, err := apiClient(c).GetCart(ctx, cartID)
	if err != nil {
		return err
	}
	return printResult(c, cart)
}

func cartAdd(c *cli.Context) error {
	cartID, err := requireArg(c, 0, "CART_ID")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout(c))
	defer cancel()

	cart, err := apiClient(c).AddItem(ctx, cartID, &handler.AddItemRequest{
		SKU:      c.String("sku"),
		Quantity: c.Int("quantity"),
	})
	if err != nil {
		return err
	}
	return printResult(c, cart)
}

func cartRemove(c *cli.Context) error {
	cartID, err := requireArg(c, 0, "CART_ID")
	if err != nil {
		return err
	}
	lineID, err := requireArg(c, 1, "LINE_ID")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout(c))
	defer cancel()

	cart, err := apiClient(c).RemoveItem(ctx, cartID, lineID)
	if err != nil {
		return err
	}
	return printResult(c, cart)
}

func cartCustomer(c *cli.Context) error {
	cartID, err := requireArg(c, 0, "CART_ID")
	if err != nil {
		return err
	}

	customer := customerFromFlags(c)
	if customer == nil && !c.Bool("clear") {
		return fmt.Errorf("provide --name/--email/--phone, or --clear to remove the customer")
	}
	if c.Bool("clear") {
		customer = nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout(c))
	defer cancel()

	cart, err := apiClient(c).SetCustomer(ctx, cartID, customer)
	if err != nil {
		return err
	}
	return printResult(c, cart)
}

func cartDelete(c *cli.Context) error {
	cartID, err := requireArg(c, 0, "CART_ID")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout(c))
	defer cancel()

	if err := apiClient(c).DeleteCart(ctx, cartID); err != nil {
		return err
	}
	return printResult(c, map[string]any{"deleted": true, "id": cartID})
}

// parseItemSpec parses an "sku=quantity" item flag value.
func parseItemSpec(spec string) (handler.ItemPayload, error) {
	sku, qtyStr, found := strings.Cut(spec, "=")
	if !found || sku == "" {
		return handler.ItemPayload{}, fmt.Errorf("invalid item %q, expected sku=quantity", spec)
	}
	qty, err := strconv.Atoi(qtyStr)
	if err != nil {
		return handler.ItemPayload{}, fmt.Errorf("invalid quantity in item %q: %w", spec, err)
	}
	return handler.ItemPayload{SKU: sku, Quantity: qty}, nil
}

// customerFromFlags builds a customer payload from flags, nil when no
// customer flag was given.
func customerFromFlags(c *cli.Context) *handler.CustomerPayload {
	name, email, phone := c.String("name"), c.String("email"), c.String("phone")
	if name == "" && email == "" && phone == "" {
		return nil
	}
	return &handler.CustomerPayload{Name: name, Email: email, Phone: phone}
}

// requireArg fetches a positional argument or fails with usage help.
func requireArg(c *cli.Context, index int, name string) (string, error) {
	arg := c.Args().Get(index)
	if arg == "" {
		return "", fmt.Errorf("missing required argument %s", name)
	}
	return arg, nil
}
