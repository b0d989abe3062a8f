package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to track progress",
	Long: `Signs in against the configured backend. With the static backend any
non-empty email and password are accepted and the session is kept in the
state directory until logout.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	Args:  cobra.NoArgs,
	RunE:  runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the current session",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, registerCmd} {
		c.Flags().String("email", "", "account email")
		c.Flags().String("password", "", "account password")
		_ = c.MarkFlagRequired("email")
		_ = c.MarkFlagRequired("password")
	}
	registerCmd.Flags().String("name", "", "display name (default: the part of the email before @)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
}

func credentials(cmd *cobra.Command) (email, password string, err error) {
	email, _ = cmd.Flags().GetString("email")
	password, _ = cmd.Flags().GetString("password")
	if strings.TrimSpace(email) == "" || password == "" {
		return "", "", errors.New("email and password are required")
	}
	return email, password, nil
}

func runLogin(cmd *cobra.Command, _ []string) error {
	email, password, err := credentials(cmd)
	if err != nil {
		return err
	}
	e, err := openEnv(cmd.Context(), envOptions{skipLoad: true})
	if err != nil {
		return err
	}
	defer e.Close()

	u, err := e.app.Login(cmd.Context(), email, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> via %s\n", u.Name, u.Email, describeBackend(e.cfg))
	return nil
}

func runRegister(cmd *cobra.Command, _ []string) error {
	email, password, err := credentials(cmd)
	if err != nil {
		return err
	}
	name, _ := cmd.Flags().GetString("name")
	e, err := openEnv(cmd.Context(), envOptions{skipLoad: true})
	if err != nil {
		return err
	}
	defer e.Close()

	u, err := e.app.Register(cmd.Context(), name, email, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> via %s\n", u.Name, u.Email, describeBackend(e.cfg))
	return nil
}

func runLogout(cmd *cobra.Command, _ []string) error {
	e, err := openEnv(cmd.Context(), envOptions{})
	if err != nil {
		return err
	}
	defer e.Close()

	if e.app.User() == nil {
		e.printer.Info("not logged in")
		return nil
	}
	return e.app.Logout(cmd.Context())
}
