// Command roadsafety-admin runs operator tasks against the complaint database.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/roadsafety-api/internal/models"
	"github.com/noah-isme/roadsafety-api/internal/repository"
	"github.com/noah-isme/roadsafety-api/internal/service"
	"github.com/noah-isme/roadsafety-api/pkg/config"
	"github.com/noah-isme/roadsafety-api/pkg/database"
	"github.com/noah-isme/roadsafety-api/pkg/logger"
	"github.com/noah-isme/roadsafety-api/pkg/storage"
)

type operator interface {
	CreateAdmin(ctx context.Context, in service.CreateAdminInput) (*models.User, error)
	CheckUsers(ctx context.Context) (*service.UserReport, error)
	Purge(ctx context.Context) error
}

// connector builds the operator on demand so flag errors never touch the database.
type connector func() (operator, func(), error)

func main() {
	if err := newRootCmd(connectDatabase).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func connectDatabase() (operator, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		_ = logr.Sync()
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}

	files, err := storage.NewLocalStorage(cfg.Storage.UploadDir)
	if err != nil {
		_ = db.Close()
		_ = logr.Sync()
		return nil, nil, fmt.Errorf("init media storage: %w", err)
	}

	svc := service.NewMaintenanceService(
		repository.NewMaintenanceRepository(db),
		repository.NewUserRepository(db),
		files,
		logr,
	)
	cleanup := func() {
		if err := db.Close(); err != nil {
			logr.Warn("close database", zap.Error(err))
		}
		_ = logr.Sync()
	}
	return svc, cleanup, nil
}

func newRootCmd(connect connector) *cobra.Command {
	root := &cobra.Command{
		Use:           "roadsafety-admin",
		Short:         "Operator tasks against the complaint database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newCreateAdminCmd(connect),
		newCheckUsersCmd(connect),
		newPurgeCmd(connect),
	)
	return root
}

func withOperator(connect connector, cmd *cobra.Command, fn func(ctx context.Context, op operator, out io.Writer) error) error {
	op, cleanup, err := connect()
	if err != nil {
		return err
	}
	defer cleanup()
	return fn(cmd.Context(), op, cmd.OutOrStdout())
}

func newCreateAdminCmd(connect connector) *cobra.Command {
	var in service.CreateAdminInput
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a staff account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withOperator(connect, cmd, func(ctx context.Context, op operator, out io.Writer) error {
				user, err := op.CreateAdmin(ctx, in)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "admin %q created (%s)\n", user.Username, user.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&in.Username, "username", "", "admin username")
	cmd.Flags().StringVar(&in.Email, "email", "", "admin email")
	cmd.Flags().StringVar(&in.Password, "password", "", "admin password")
	return cmd
}

func newCheckUsersCmd(connect connector) *cobra.Command {
	return &cobra.Command{
		Use:   "check-users",
		Short: "Print account counts and every user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withOperator(connect, cmd, func(ctx context.Context, op operator, out io.Writer) error {
				report, err := op.CheckUsers(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "users: %d  admins: %d  contractors: %d  complaints: %d\n",
					report.Counts.Users, report.Counts.Admins, report.Counts.Contractors, report.Counts.Complaints)
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tUSERNAME\tEMAIL\tSTAFF\tACTIVE")
				for _, u := range report.Users {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%t\n", u.ID, u.Username, u.Email, u.IsStaff, u.IsActive)
				}
				return tw.Flush()
			})
		},
	}
}

func newPurgeCmd(connect connector) *cobra.Command {
	var confirm bool
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete every complaint, contractor, user and uploaded image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !confirm {
				return fmt.Errorf("refusing to purge without --yes")
			}
			return withOperator(connect, cmd, func(ctx context.Context, op operator, out io.Writer) error {
				if err := op.Purge(ctx); err != nil {
					return err
				}
				fmt.Fprintln(out, "all complaints, assignments, notifications, contractors and users deleted")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&confirm, "yes", false, "confirm deleting all data")
	return cmd
}
