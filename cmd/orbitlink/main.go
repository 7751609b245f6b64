package main

import (
	"fmt"
	"os"

	"github.com/bwmarrin/snowflake"
	"github.com/orbitlinklabs/orbitlink/internal/alarmconfig"
	"github.com/orbitlinklabs/orbitlink/internal/asset"
	"github.com/orbitlinklabs/orbitlink/internal/binding"
	"github.com/orbitlinklabs/orbitlink/internal/cdc"
	"github.com/orbitlinklabs/orbitlink/internal/clock"
	"github.com/orbitlinklabs/orbitlink/internal/config"
	"github.com/orbitlinklabs/orbitlink/internal/coupon"
	"github.com/orbitlinklabs/orbitlink/internal/db"
	"github.com/orbitlinklabs/orbitlink/internal/devicepackage"
	"github.com/orbitlinklabs/orbitlink/internal/devicestatus"
	"github.com/orbitlinklabs/orbitlink/internal/migration"
	"github.com/orbitlinklabs/orbitlink/internal/notification"
	"github.com/orbitlinklabs/orbitlink/internal/order"
	"github.com/orbitlinklabs/orbitlink/internal/profitsharing"
	"github.com/orbitlinklabs/orbitlink/internal/redis"
	"github.com/orbitlinklabs/orbitlink/internal/tracker"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "orbitlink",
		Short: "OrbitLink device subscription engine",
	}
	root.AddCommand(newMigrateCmd(), newRunCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log, err := zap.NewProduction()
			if err != nil {
				return err
			}
			defer log.Sync()

			gormDB, err := db.Open(cfg, log)
			if err != nil {
				return err
			}
			return migration.Run(gormDB, log)
		},
	}
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the subscription engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			fx.New(
				config.Module,
				fx.Provide(zap.NewProduction),
				fx.Provide(newSnowflakeNode),
				db.Module,
				redis.Module,
				clock.Module,
				migration.Module,

				tracker.Module,
				asset.Module,
				devicepackage.Module,
				coupon.Module,
				notification.Module,
				alarmconfig.Module,
				devicestatus.Module,
				cdc.Module,
				profitsharing.Module,
				order.Module,
				binding.Module,
			).Run()
			return nil
		},
	}
}

func newSnowflakeNode(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.SnowflakeNode)
}
