package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/florianilch/switchboard/internal/switcher"
)

// promptAuthenticator satisfies the switcher's re-authentication capability
// by asking for the account email on the terminal. The browser-based
// authorization flow itself lives outside this binary; the prompt stands in
// for its final "which account did the user authorize" answer.
type promptAuthenticator struct {
	in  *os.File
	out io.Writer
}

// Compile-time check to ensure promptAuthenticator implements switcher.Authenticator
var _ switcher.Authenticator = (*promptAuthenticator)(nil)

func newPromptAuthenticator() *promptAuthenticator {
	return &promptAuthenticator{
		in:  os.Stdin,
		out: os.Stderr,
	}
}

// IdentifyCurrentAccount asks which account the service currently has signed in.
func (p *promptAuthenticator) IdentifyCurrentAccount(ctx context.Context) (string, error) {
	return p.prompt(ctx, "Enter the email of the currently signed-in account: ")
}

// AuthenticateNewAccount asks for the email the authorization flow resolved to.
func (p *promptAuthenticator) AuthenticateNewAccount(ctx context.Context) (string, error) {
	return p.prompt(ctx, "Complete authorization in your browser, then enter the account email: ")
}

func (p *promptAuthenticator) prompt(ctx context.Context, message string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !term.IsTerminal(int(p.in.Fd())) {
		return "", fmt.Errorf("interactive authentication requires a terminal")
	}

	fmt.Fprint(p.out, message)
	line, err := bufio.NewReader(p.in).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading email: %w", err)
	}

	email := strings.TrimSpace(line)
	if email == "" {
		return "", fmt.Errorf("no email entered")
	}
	return email, nil
}
