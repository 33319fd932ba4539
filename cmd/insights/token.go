package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/angelmondragon/mise-backend/pkg/auth"
	"github.com/angelmondragon/mise-backend/pkg/auth/session"
	"github.com/angelmondragon/mise-backend/pkg/config"
	"github.com/angelmondragon/mise-backend/pkg/logger"
	"github.com/angelmondragon/mise-backend/pkg/redis"
)

// tokenCmd mints an access token for local use. When Redis is configured the
// token's session is registered so the API's session check accepts it.
func tokenCmd() *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := uuid.Parse(userID)
			if err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}
			cfg, err := config.LoadIssuer()
			if err != nil {
				return err
			}

			jti := session.NewAccessID()
			token, err := auth.MintAccessToken(cfg.JWT, time.Now(), auth.AccessTokenPayload{UserID: caller, JTI: jti})
			if err != nil {
				return err
			}

			if cfg.Redis.Enabled() {
				client, err := redis.New(cmd.Context(), cfg.Redis, logger.Nop())
				if err != nil {
					return err
				}
				defer client.Close()
				manager, err := session.NewManager(client, auth.AccessTokenTTL(cfg.JWT))
				if err != nil {
					return err
				}
				if err := manager.Register(cmd.Context(), jti, caller); err != nil {
					return fmt.Errorf("register session: %w", err)
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "User id to mint the token for")
	_ = cmd.MarkFlagRequired("user")
	cmd.AddCommand(revokeCmd())
	return cmd
}

func revokeCmd() *cobra.Command {
	var jti string
	cmd := &cobra.Command{
		Use:   "revoke",
		Short: "Drop a token's session so the API rejects it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadIssuer()
			if err != nil {
				return err
			}
			if !cfg.Redis.Enabled() {
				return fmt.Errorf("redis is not configured; sessions are not tracked")
			}
			client, err := redis.New(cmd.Context(), cfg.Redis, logger.Nop())
			if err != nil {
				return err
			}
			defer client.Close()
			manager, err := session.NewManager(client, auth.AccessTokenTTL(cfg.JWT))
			if err != nil {
				return err
			}
			return manager.Revoke(cmd.Context(), jti)
		},
	}
	cmd.Flags().StringVar(&jti, "jti", "", "Token id (jti claim) to revoke")
	_ = cmd.MarkFlagRequired("jti")
	return cmd
}
