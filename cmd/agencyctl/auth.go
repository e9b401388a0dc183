package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func (c *cli) loginCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = os.Getenv("AGENCY_PASSWORD")
			}
			s := c.dash.Session()
			if !s.Login(cmd.Context(), username, password) {
				return errors.New(s.Error())
			}
			if err := c.saveToken(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", s.User().FullName)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (default $AGENCY_PASSWORD)")
	cmd.MarkFlagRequired("username")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c.dash.Session().Logout(cmd.Context())
			if err := c.forgetToken(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.requireUser(cmd.Context()); err != nil {
				return err
			}
			u := c.dash.Session().User()
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) role=%s\n", u.FullName, u.Username, u.Role)
			return nil
		},
	}
}
