package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/florianilch/switchboard/internal/directory"
	"github.com/florianilch/switchboard/internal/tokenstore"
)

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Inspect and manage stored credentials",
		Commands: []*cli.Command{
			tokenShowCommand(),
			tokenSetCommand(),
			tokenDeleteCommand(),
		},
	}
}

func tokenShowCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show credential status for an account (default: active account)",
		ArgsUsage: "[email-or-alias]",
		Action:    tokenShowAction,
	}
}

func tokenShowAction(ctx context.Context, cmd *cli.Command) error {
	application, err := setup(cmd)
	if err != nil {
		return err
	}
	service := cmd.String("service")

	accountID, err := resolveOrActive(ctx, application.Directory, service, cmd.Args().First())
	if err != nil {
		return err
	}

	token, err := application.Tokens.Get(ctx, accountID, service)
	if err != nil {
		return err
	}
	if token == nil {
		fmt.Printf("No credential stored for %s\n", accountID)
		return nil
	}

	expiry := directory.ExpiryNever
	if instant, ok := token.Expiry(); ok {
		expiry = instant.UTC().Format(time.RFC3339)
		if token.Expired(time.Now()) {
			expiry += " (expired)"
		}
	}
	fmt.Printf("Account:  %s\nExpires:  %s\nRefresh:  %v\n", accountID, expiry, token.RefreshToken != "")
	return nil
}

func tokenSetCommand() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "Store a credential for an account (default: active account)",
		ArgsUsage: "[email-or-alias]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "access-token",
				Usage:    "access credential",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "refresh-token",
				Usage: "refresh material, if any",
			},
			&cli.DurationFlag{
				Name:  "expires-in",
				Usage: "lifetime from now (omit for a non-expiring credential)",
			},
		},
		Action: tokenSetAction,
	}
}

func tokenSetAction(ctx context.Context, cmd *cli.Command) error {
	application, err := setup(cmd)
	if err != nil {
		return err
	}
	service := cmd.String("service")

	accountID, err := resolveOrActive(ctx, application.Directory, service, cmd.Args().First())
	if err != nil {
		return err
	}

	token := tokenstore.Token{
		AccessToken:  cmd.String("access-token"),
		RefreshToken: cmd.String("refresh-token"),
	}
	if d := cmd.Duration("expires-in"); d > 0 {
		token.ExpiresAt = time.Now().Add(d).UnixMilli()
	}

	if err := application.Tokens.Set(ctx, accountID, service, token); err != nil {
		return err
	}
	if err := application.Directory.TouchLastUsed(ctx, accountID, service, time.Now()); err != nil {
		return err
	}

	fmt.Printf("Credential stored for %s\n", accountID)
	return nil
}

func tokenDeleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete the stored credential for an account (default: active account)",
		ArgsUsage: "[email-or-alias]",
		Action:    tokenDeleteAction,
	}
}

func tokenDeleteAction(ctx context.Context, cmd *cli.Command) error {
	application, err := setup(cmd)
	if err != nil {
		return err
	}
	service := cmd.String("service")

	accountID, err := resolveOrActive(ctx, application.Directory, service, cmd.Args().First())
	if err != nil {
		return err
	}

	if err := application.Tokens.Delete(ctx, accountID, service); err != nil {
		return err
	}
	fmt.Printf("Credential deleted for %s\n", accountID)
	return nil
}

// resolveOrActive resolves ref against the directory, falling back to the
// active account when no reference is given.
func resolveOrActive(ctx context.Context, dir *directory.Directory, service, ref string) (string, error) {
	if ref != "" {
		accountID, err := dir.ResolveAccount(ctx, service, ref)
		if err != nil {
			return "", err
		}
		if accountID == "" {
			return "", fmt.Errorf("%w: %q for service %s", directory.ErrAccountNotFound, ref, service)
		}
		return accountID, nil
	}

	active, err := dir.ActiveAccount(ctx, service)
	if err != nil {
		return "", err
	}
	if active == "" {
		return "", fmt.Errorf("no active account for service %s", service)
	}
	return active, nil
}
