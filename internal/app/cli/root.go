package cli

import (
	"context"
	"dashboard/internal/app"
	"dashboard/internal/services/session"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

const annotationAuth = "auth"

// ErrNotLoggedIn is returned by protected commands without a session.
var ErrNotLoggedIn = errors.New("not logged in, run `dashboard login`")

// Boot builds the application once the config path is known.
type Boot func(ctx context.Context, configPath string) (*app.App, error)

type CLI struct {
	boot Boot
	out  io.Writer

	configPath string
	app        *app.App
}

func New(boot Boot, out io.Writer) *CLI {
	return &CLI{boot: boot, out: out}
}

func (c *CLI) Command() *cobra.Command {
	root := &cobra.Command{
		Use:           "dashboard",
		Short:         "Doctor dashboard client",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.app == nil {
				a, err := c.boot(cmd.Context(), c.configPath)
				if err != nil {
					return err
				}
				c.app = a
			}

			if requiresAuth(cmd) && !c.app.Session.IsAuthenticated() {
				return ErrNotLoggedIn
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to the config file")

	root.AddCommand(
		c.loginCommand(),
		c.registerCommand(),
		c.passwordCommand(),
		protected(c.logoutCommand()),
		protected(c.whoamiCommand()),
		protected(c.dashboardCommand()),
		protected(c.appointmentsCommand()),
		protected(c.schedulesCommand()),
		protected(c.workingHoursCommand()),
		protected(c.profileCommand()),
		protected(c.specialtiesCommand()),
		protected(c.reviewsCommand()),
	)

	return root
}

// Execute runs the command line and reports the outcome on errOut. It
// returns the process exit code.
func (c *CLI) Execute(ctx context.Context, args []string, errOut io.Writer) int {
	root := c.Command()
	root.SetArgs(args)
	root.SetOut(c.out)
	root.SetErr(errOut)

	err := root.ExecuteContext(ctx)
	if c.app != nil {
		c.app.Close()
		c.app = nil
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, session.ErrUnrecoverable), errors.Is(err, ErrNotLoggedIn):
		// The session is gone; the user only needs the way back in.
		fmt.Fprintln(errOut, ErrNotLoggedIn.Error())
		return 1
	default:
		fmt.Fprintln(errOut, "error:", userMessage(err))
		return 1
	}
}

// userMessage prefers the classified login error over the wrapped chain.
func userMessage(err error) string {
	var authErr *session.AuthError
	if errors.As(err, &authErr) {
		return authErr.Error()
	}
	return err.Error()
}

func protected(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[annotationAuth] = "required"
	return cmd
}

func requiresAuth(cmd *cobra.Command) bool {
	for ; cmd != nil; cmd = cmd.Parent() {
		if cmd.Annotations[annotationAuth] == "required" {
			return true
		}
	}
	return false
}

func (c *CLI) print(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
