package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/founders/internal/auth"
	"github.com/desertthunder/founders/internal/blob"
	"github.com/desertthunder/founders/internal/server"
	"github.com/desertthunder/founders/internal/shared"
)

// Serve runs the HTTP API until the process is interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if host := cmd.String("host"); host != "" {
		r.config.Server.Host = host
	}
	if port := int(cmd.Int("port")); port > 0 {
		r.config.Server.Port = port
	}

	authn, err := r.authenticator(cmd.StringSlice("static-token"))
	if err != nil {
		return err
	}

	dir, closeDB, err := r.openDirectory()
	if err != nil {
		return err
	}
	defer closeDB()

	store, err := blob.Open(ctx, r.config.Storage)
	if err != nil {
		r.logger.Warn("blob storage unavailable, uploads disabled", "error", err)
		store = nil
	}

	srv, err := server.New(server.Options{
		Config:        r.config,
		Directory:     dir,
		Blob:          store,
		Authenticator: authn,
		Logger:        r.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.ListenAndServe(ctx)
}

// authenticator prefers static tokens when given; otherwise the configured userinfo endpoint.
func (r *Runner) authenticator(tokens []string) (auth.Authenticator, error) {
	if len(tokens) > 0 {
		static := auth.StaticAuthenticator{}
		for _, t := range tokens {
			token, email, ok := strings.Cut(t, ":")
			if !ok || token == "" || email == "" {
				return nil, fmt.Errorf("%w: --static-token must be TOKEN:EMAIL, got %q", shared.ErrInvalidFlag, t)
			}
			static[token] = auth.Principal{Subject: "static|" + email, Email: email}
		}
		r.logger.Warn("serving with static tokens", "count", len(static))
		return static, nil
	}

	if r.config.Auth.UserInfoURL == "" {
		r.logger.Warn("auth.userinfo_url not set, every caller is anonymous")
		return nil, nil
	}
	return auth.NewUserInfoAuthenticator(r.config.Auth.UserInfoURL, &http.Client{Timeout: 10 * time.Second}), nil
}
