package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/pothole-patrol/api-go/backend"
	"github.com/pothole-patrol/api-go/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin access",
	Long: `Grant or revoke the admin flag on a profile.

Example:
  pothole admin grant ops@example.org`,
}

var adminGrantCmd = &cobra.Command{
	Use:   "grant [email]",
	Short: "Make a profile an admin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetAdmin(cmd.Context(), args[0], true)
	},
}

var adminRevokeCmd = &cobra.Command{
	Use:   "revoke [email]",
	Short: "Remove admin access from a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetAdmin(cmd.Context(), args[0], false)
	},
}

func init() {
	adminCmd.AddCommand(adminGrantCmd, adminRevokeCmd)
}

func runSetAdmin(ctx context.Context, email string, admin bool) error {
	if cfg.BackendDriver != "postgres" {
		return errors.New("admin requires BACKEND_DRIVER=postgres")
	}
	db, err := config.ConnectDatabase(cfg, logger)
	if err != nil {
		return err
	}
	return setAdmin(ctx, backend.NewGormStore(db), email, admin, logger)
}

func setAdmin(ctx context.Context, profiles backend.ProfileStore, email string, admin bool, log *zap.Logger) error {
	profile, err := profiles.ProfileByEmail(ctx, email)
	if errors.Is(err, backend.ErrNotFound) {
		return fmt.Errorf("no profile with email %s", email)
	}
	if err != nil {
		return err
	}
	if err := profiles.SetAdmin(ctx, profile.ID, admin); err != nil {
		return err
	}
	log.Info("admin flag updated", zap.String("email", email), zap.Bool("admin", admin))
	return nil
}
