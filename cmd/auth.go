package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/civiclens/civiclens/core"
	"github.com/civiclens/civiclens/internal/contract"
	"github.com/civiclens/civiclens/internal/outwriter"
	"github.com/civiclens/civiclens/schema"
)

// authRun logs in or signs up the user named by the first argument.
func authRun(signup bool) func(*cobra.Command, []string) {
	return func(_ *cobra.Command, args []string) {
		creds := schema.Credentials{UserName: args[0], Password: viper.GetString("password")}
		action := "log in"
		if signup {
			action = "sign up"
		}
		if err := core.ExecuteLogin(rootCtx, cfg, newClient(), outwriter.NewOutWriter(), creds, signup, contract.GetSessionFilePath()); err != nil {
			contract.LogFatal("Cannot "+action, err)
		}
	}
}

// loginCmd saves a session for an existing user.
var loginCmd = &cobra.Command{
	Use:   "login <user>",
	Short: "Log in and save the session token.",
	Long: `Exchange a user name and password for a bearer token. The token is saved to
~/.civiclens_session.json and sent with every later request.

Examples:
  # Password from the environment
  CIVICLENS_PASSWORD=... civiclens login ana

  civiclens login ana --password ...`,
	Args:    cobra.ExactArgs(1),
	PreRunE: apiSetupWrapper,
	Run:     authRun(false),
}

// signupCmd registers a user and saves the session.
var signupCmd = &cobra.Command{
	Use:     "signup <user>",
	Short:   "Register a user and save the session token.",
	Args:    cobra.ExactArgs(1),
	PreRunE: apiSetupWrapper,
	Run:     authRun(true),
}

// logoutCmd forgets the session.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved session token.",
	Args:  cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteLogout(contract.GetSessionFilePath()); err != nil {
			contract.LogFatal("Cannot log out", err)
		}
		fmt.Println("Logged out.")
	},
}

// whoamiCmd shows the session owner.
var whoamiCmd = &cobra.Command{
	Use:     "whoami",
	Short:   "Show the user that owns the saved session.",
	Args:    cobra.NoArgs,
	PreRunE: apiSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteWhoAmI(rootCtx, cfg, newClient(), outwriter.NewOutWriter()); err != nil {
			contract.LogFatal("Cannot show current user", err)
		}
	},
}
