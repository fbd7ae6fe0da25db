package main

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/thegivehub/givehub-go"
)

func loginCmd(a *app) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print the issued tokens",
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := a.client.Auth.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}

			if !resp.Success() {
				a.logger.Warn("login rejected", "message", resp.String("message"))
			}

			return a.print(resp)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func registerCmd(a *app) *cobra.Command {
	var (
		data   string
		fields []string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := readBody(data, fields)
			if err != nil {
				return err
			}

			resp, err := a.client.Auth.Register(cmd.Context(), user)
			if err != nil {
				return err
			}

			return a.print(resp)
		},
	}

	addBodyFlags(cmd, &data, &fields)

	return cmd
}

func verifyCmd(a *app) *cobra.Command {
	var email, code string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Confirm an email address with a verification code",
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := a.client.Auth.VerifyEmail(cmd.Context(), email, code)
			if err != nil {
				return err
			}

			return a.print(resp)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&code, "code", "", "Verification code")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("code")

	return cmd
}

type sessionInfo struct {
	Authenticated bool   `json:"authenticated" yaml:"authenticated"`
	Expires       string `json:"expires,omitempty" yaml:"expires,omitempty"`
	ExpiresIn     string `json:"expiresIn,omitempty" yaml:"expiresIn,omitempty"`
	AccessToken   string `json:"accessToken,omitempty" yaml:"accessToken,omitempty"`
	RefreshToken  string `json:"refreshToken,omitempty" yaml:"refreshToken,omitempty"`
}

func describeSession(s givehub.Session, showTokens bool) sessionInfo {
	info := sessionInfo{Authenticated: s.Authenticated()}

	if exp, ok := s.AccessTokenExpiry(); ok {
		info.Expires = exp.UTC().Format(time.RFC3339)
		info.ExpiresIn = time.Until(exp).Round(time.Second).String()
	}

	if showTokens {
		info.AccessToken = s.AccessToken
		info.RefreshToken = s.RefreshToken
	}

	return info
}

func sessionCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect or refresh the configured tokens",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show whether a token is configured and when it expires",
		RunE: func(_ *cobra.Command, _ []string) error {
			return a.print(describeSession(a.client.Session(), false))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "refresh",
		Short: "Exchange the refresh token for a new access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.client.Session().RefreshToken == "" {
				return errors.New("no refresh token configured, use --refresh-token or GIVEHUB_REFRESH_TOKEN")
			}

			if err := a.client.Auth.RefreshAccessToken(cmd.Context()); err != nil {
				return err
			}

			return a.print(describeSession(a.client.Session(), true))
		},
	})

	return cmd
}
