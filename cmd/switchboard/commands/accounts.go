package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/florianilch/switchboard/internal/directory"
)

func accountsCommand() *cli.Command {
	return &cli.Command{
		Name:  "accounts",
		Usage: "Manage linked accounts for a service",
		Commands: []*cli.Command{
			accountsListCommand(),
			accountsSwitchCommand(),
			accountsRemoveCommand(),
			accountsCurrentCommand(),
			accountsAliasCommand(),
		},
	}
}

func accountsListCommand() *cli.Command {
	return &cli.Command{
		Name:   "list",
		Usage:  "List linked accounts",
		Action: accountsListAction,
	}
}

func accountsListAction(ctx context.Context, cmd *cli.Command) error {
	application, err := setup(cmd)
	if err != nil {
		return err
	}
	service := cmd.String("service")

	listings, err := application.Directory.Listing(ctx, service)
	if err != nil {
		return fmt.Errorf("listing accounts for %s: %w", service, err)
	}
	if len(listings) == 0 {
		fmt.Printf("No accounts linked for service %q\n", service)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "\tEMAIL\tALIAS\tADDED\tLAST USED\tEXPIRES")
	for _, l := range listings {
		marker := ""
		if l.Active {
			marker = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			marker, l.Email, orDash(l.Alias), formatTime(l.AddedAt), formatTimePtr(l.LastUsedAt), l.Expiry)
	}
	return w.Flush()
}

func accountsSwitchCommand() *cli.Command {
	return &cli.Command{
		Name:      "switch",
		Usage:     "Switch the active account, re-authenticating only if needed",
		ArgsUsage: "[email-or-alias]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "alias",
				Usage: "friendly name to assign to the resulting account",
			},
		},
		Action: accountsSwitchAction,
	}
}

func accountsSwitchAction(ctx context.Context, cmd *cli.Command) error {
	application, err := setup(cmd)
	if err != nil {
		return err
	}
	service := cmd.String("service")

	result, err := application.Switcher.Switch(ctx, service, cmd.Args().First(), cmd.String("alias"))
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "account switched",
		"service", service, "email", result.Email, "new", result.IsNew, "linked", result.LinkedAccounts)
	if result.IsNew {
		fmt.Printf("Linked and activated %s (%d account(s) linked)\n", result.Email, result.LinkedAccounts)
	} else {
		fmt.Printf("Activated %s\n", result.Email)
	}
	return nil
}

func accountsRemoveCommand() *cli.Command {
	return &cli.Command{
		Name:      "remove",
		Usage:     "Unlink an account and delete its stored credential",
		ArgsUsage: "<email-or-alias>",
		Action:    accountsRemoveAction,
	}
}

func accountsRemoveAction(ctx context.Context, cmd *cli.Command) error {
	ref := cmd.Args().First()
	if ref == "" {
		return fmt.Errorf("account reference required")
	}

	application, err := setup(cmd)
	if err != nil {
		return err
	}
	service := cmd.String("service")

	result, err := application.Switcher.Remove(ctx, service, ref)
	if err != nil {
		return err
	}

	fmt.Printf("Removed %s (%d account(s) remaining)\n", result.Email, result.LinkedAccounts)
	return nil
}

func accountsCurrentCommand() *cli.Command {
	return &cli.Command{
		Name:   "current",
		Usage:  "Show the active account",
		Action: accountsCurrentAction,
	}
}

func accountsCurrentAction(ctx context.Context, cmd *cli.Command) error {
	application, err := setup(cmd)
	if err != nil {
		return err
	}
	service := cmd.String("service")

	current, err := application.Switcher.Current(ctx, service)
	if err != nil {
		return err
	}
	if current == "" {
		fmt.Printf("No active account for service %q\n", service)
		return nil
	}
	fmt.Println(current)
	return nil
}

func accountsAliasCommand() *cli.Command {
	return &cli.Command{
		Name:      "alias",
		Usage:     "Assign a friendly name to a linked account",
		ArgsUsage: "<email-or-alias> <new-alias>",
		Action:    accountsAliasAction,
	}
}

func accountsAliasAction(ctx context.Context, cmd *cli.Command) error {
	ref, alias := cmd.Args().Get(0), cmd.Args().Get(1)
	if ref == "" || alias == "" {
		return fmt.Errorf("usage: accounts alias <email-or-alias> <new-alias>")
	}

	application, err := setup(cmd)
	if err != nil {
		return err
	}
	service := cmd.String("service")

	accountID, err := application.Directory.ResolveAccount(ctx, service, ref)
	if err != nil {
		return err
	}
	if accountID == "" {
		return fmt.Errorf("%w: %q for service %s", directory.ErrAccountNotFound, ref, service)
	}

	// Read-modify-write: SetAccountInfo replaces the whole record
	info, err := application.Directory.AccountInfo(ctx, accountID, service)
	if err != nil {
		return err
	}
	if info == nil {
		info = &directory.AccountInfo{Email: accountID, AddedAt: time.Now()}
	}
	info.Alias = alias
	if err := application.Directory.SetAccountInfo(ctx, accountID, service, *info); err != nil {
		return err
	}

	fmt.Printf("Alias %q assigned to %s\n", alias, accountID)
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return formatTime(*t)
}
