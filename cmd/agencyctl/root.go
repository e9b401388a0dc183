package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"agency-service/internal/apiclient"
	"agency-service/internal/config"
	"agency-service/internal/dashboard"
	"agency-service/internal/querycache"

	"github.com/spf13/cobra"
)

var errNotSignedIn = errors.New("not signed in, run agencyctl login")

// cli is built once per invocation in the root PersistentPreRunE.
type cli struct {
	server    string
	tokenPath string
	client    *apiclient.Client
	dash      *dashboard.Dashboard
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "agencyctl",
		Short:         "Command line dashboard for the agency service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&c.server, "server", "", "API base URL (overrides client.base_url)")

	root.AddCommand(
		c.loginCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.summaryCmd(),
		c.studentsCmd(),
		c.applicationsCmd(),
		c.universitiesCmd(),
		c.agentsCmd(),
		c.cardsCmd(),
		c.eventsCmd(),
		c.messagesCmd(),
		c.activityCmd(),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := config.LoadClient()
	if err != nil {
		return err
	}
	if c.server != "" {
		cfg.BaseURL = c.server
	}

	c.tokenPath, err = tokenPath()
	if err != nil {
		return err
	}

	c.client = apiclient.New(strings.TrimRight(cfg.BaseURL, "/"), time.Duration(cfg.TimeoutSeconds)*time.Second)
	if token, err := os.ReadFile(c.tokenPath); err == nil {
		c.client.SetToken(strings.TrimSpace(string(token)))
	}

	c.dash = dashboard.New(c.client, dashboard.PrintToasts(cmd.ErrOrStderr()),
		querycache.WithStaleTime(time.Duration(cfg.StaleSeconds)*time.Second))
	cmd.SetContext(c.dash.Context(cmd.Context()))
	return nil
}

// requireUser loads the current user and fails when the saved token is
// missing or no longer accepted.
func (c *cli) requireUser(ctx context.Context) error {
	s := c.dash.Session()
	s.Init(ctx)
	if !s.IsAuthenticated() {
		return errNotSignedIn
	}
	return nil
}

func (c *cli) saveToken() error {
	if err := os.MkdirAll(filepath.Dir(c.tokenPath), 0o700); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	return os.WriteFile(c.tokenPath, []byte(c.client.Token()), 0o600)
}

func (c *cli) forgetToken() error {
	if err := os.Remove(c.tokenPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func tokenPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config dir: %w", err)
	}
	return filepath.Join(dir, "agencyctl", "token"), nil
}
