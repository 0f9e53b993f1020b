package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/skillhub/internal/client/config"
	"github.com/dmitrijs2005/skillhub/internal/common"
	"github.com/spf13/cobra"
)

type commands struct {
	cfg  *config.Config
	open Opener
}

// withSession opens a session bound to the command's context and timeout.
func (c *commands) withSession(cmd *cobra.Command, fn func(ctx context.Context, s Session) error) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if c.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.RequestTimeout)
		defer cancel()
	}

	s, closeFn, err := c.open(ctx, c.cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeFn(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return fn(ctx, s)
}

func formatTime(t time.Time) string {
	return t.Local().Format(time.RFC1123)
}

func (c *commands) loginCmd() *cobra.Command {
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "login [username|email]",
		Short: "Log in and store the session locally",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()

			var identifier string
			if len(args) == 1 {
				identifier = args[0]
			} else {
				var err error
				if identifier, err = GetSimpleText(in, "Username or email", out); err != nil {
					return err
				}
			}

			password, err := readSecret(in, out, passwordStdin)
			if err != nil {
				return err
			}

			return c.withSession(cmd, func(ctx context.Context, s Session) error {
				resp, err := s.Login(ctx, identifier, password)
				if err != nil {
					return err
				}
				p := resp.Principal
				fmt.Fprintf(out, "Logged in as %s (%s)\n", p.Username, p.Kind)
				fmt.Fprintf(out, "Access token expires:  %s\n", formatTime(resp.AccessTokenExpiresAt))
				fmt.Fprintf(out, "Refresh token expires: %s\n", formatTime(resp.RefreshTokenExpiresAt))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin instead of the terminal")
	return cmd
}

func readSecret(in *bufio.Reader, out io.Writer, fromStdin bool) (string, error) {
	if fromStdin {
		line, err := in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
	pw, err := GetPassword(out)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pw)
	return string(pw), nil
}

func (c *commands) refreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the stored refresh token for a new token pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd, func(ctx context.Context, s Session) error {
				resp, err := s.Refresh(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Session refreshed, refresh token expires %s\n", formatTime(resp.RefreshTokenExpiresAt))
				return nil
			})
		},
	}
}

func (c *commands) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Invalidate the stored refresh token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd, func(ctx context.Context, s Session) error {
				if err := s.Logout(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
				return nil
			})
		},
	}
}

func (c *commands) verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check that the stored refresh token is still valid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd, func(ctx context.Context, s Session) error {
				v, err := s.Verify(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Refresh token valid for %s (%s %s)\n", v.Username, v.PrincipalKind, v.PrincipalID)
				fmt.Fprintf(out, "Expires: %s\n", formatTime(v.ExpiryDate))
				return nil
			})
		},
	}
}

func (c *commands) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the account behind the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd, func(ctx context.Context, s Session) error {
				p, err := s.WhoAmI(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "ID:       %s\n", p.ID)
				fmt.Fprintf(out, "Kind:     %s\n", p.Kind)
				fmt.Fprintf(out, "Username: %s\n", p.Username)
				fmt.Fprintf(out, "Email:    %s\n", p.Email)
				fmt.Fprintf(out, "Roles:    %s\n", strings.Join(p.Roles, ", "))
				if p.OwnerID != "" {
					fmt.Fprintf(out, "Owner:    %s\n", p.OwnerID)
				}
				return nil
			})
		},
	}
}
