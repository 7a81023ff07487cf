// Command taskctl is a terminal client for the smart-tasks API.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/NathanHodgkiss447/smart-tasks/client"
	"github.com/NathanHodgkiss447/smart-tasks/tasklist"
	"github.com/spf13/cobra"
)

var Version = "dev"

const defaultServer = "http://localhost:4000"

// cli is the state shared by every command after flag parsing.
type cli struct {
	server  string
	timeout time.Duration
	tz      string

	credPath string
	creds    credentials
	client   *client.Client
	store    *tasklist.Store
	loc      *time.Location
	now      func() time.Time
}

func main() {
	if err := newRootCmd(&cli{now: time.Now}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "taskctl",
		Short:         "Manage smart-tasks from the terminal",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
	}

	root.PersistentFlags().StringVar(&c.server, "server", "", "API base URL (default from credentials, $TASKCTL_SERVER or "+defaultServer+")")
	root.PersistentFlags().DurationVar(&c.timeout, "timeout", client.DefaultTimeout, "Per-request timeout")
	root.PersistentFlags().StringVar(&c.tz, "tz", "Local", "IANA timezone for dates")

	root.AddCommand(signupCmd(c), loginCmd(c), logoutCmd(c))
	root.AddCommand(lsCmd(c), addCmd(c), showCmd(c), editCmd(c))
	root.AddCommand(doneCmd(c, true), doneCmd(c, false), rmCmd(c), moveCmd(c))
	root.AddCommand(bulkCmd(c), remindCmd(c), statsCmd(c), activityCmd(c))
	return root
}

func (c *cli) setup() error {
	if c.now == nil {
		c.now = time.Now
	}
	loc, err := time.LoadLocation(c.tz)
	if err != nil {
		return fmt.Errorf("--tz: %w", err)
	}
	c.loc = loc

	if c.credPath, err = credentialsPath(); err != nil {
		return err
	}
	if c.creds, err = loadCredentials(c.credPath); err != nil {
		return err
	}

	server := c.server
	for _, candidate := range []string{c.creds.Server, os.Getenv("TASKCTL_SERVER"), defaultServer} {
		if server != "" {
			break
		}
		server = candidate
	}
	c.server = server

	c.client = client.New(server, client.WithToken(c.creds.Token), client.WithTimeout(c.timeout))
	c.store = tasklist.New(c.client)
	return nil
}

func (c *cli) requireLogin() error {
	if c.client.Token() == "" {
		return fmt.Errorf("not logged in: run taskctl login <email>")
	}
	return nil
}

func out(cmd *cobra.Command) io.Writer { return cmd.OutOrStdout() }
