package cli

import (
	"fmt"
	"time"

	"cms-backend/internal/config"
	"cms-backend/pkg/jwt"

	"github.com/spf13/cobra"
)

// token in ra access token để gọi các route quản trị
//
//	cmsctl token --user 1 --email admin@cms.local
func newTokenCmd() *cobra.Command {
	var userID, email, role string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token signed with JWT_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("token: %w", err)
			}

			manager := jwt.NewManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)
			token, err := manager.GenerateAccessToken(userID, email, role)
			if err != nil {
				return fmt.Errorf("token: sign: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "1", "User id written to the claims")
	cmd.Flags().StringVar(&email, "email", "admin@cms.local", "Email written to the claims")
	cmd.Flags().StringVar(&role, "role", jwt.RoleAdmin, "Role written to the claims")
	return cmd
}
