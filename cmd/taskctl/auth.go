package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func signupCmd(c *cli) *cobra.Command {
	return authCmd(c, "signup", "Create an account and log in", true)
}

func loginCmd(c *cli) *cobra.Command {
	return authCmd(c, "login", "Log in and store the token", false)
}

func authCmd(c *cli, use, short string, signup bool) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   use + " <email>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := strings.TrimSpace(args[0])
			if password == "" {
				password = os.Getenv("TASKCTL_PASSWORD")
			}
			if password == "" {
				fmt.Fprint(out(cmd), "Password: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}

			call := c.client.Login
			if signup {
				call = c.client.Signup
			}
			token, err := call(cmd.Context(), email, password)
			if err != nil {
				return err
			}

			if err := saveCredentials(c.credPath, credentials{Server: c.server, Email: email, Token: token}); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Logged in as %s\n", email)
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (default $TASKCTL_PASSWORD or prompt)")
	return cmd
}

func logoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.creds.Token = ""
			if err := saveCredentials(c.credPath, c.creds); err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), "Logged out")
			return nil
		},
	}
}
