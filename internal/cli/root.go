package cli

import (
	"fmt"
	"os"

	"cms-backend/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// NewRootCmd - cmsctl: lệnh vận hành (migrate, cấp token quản trị)
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cmsctl",
		Short: "cmsctl - operations CLI for the CMS backend",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
			logger.Init(os.Getenv("APP_ENV"))
		},
	}
	cmd.SilenceUsage = true
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newTokenCmd())
	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
