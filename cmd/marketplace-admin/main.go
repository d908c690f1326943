// Package main is the entry point for the marketplace admin CLI.
// It provides administrative commands that bypass the HTTP API, such as
// creating the first superuser.
package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/prn-tf/marketplace/internal/config"
	"github.com/prn-tf/marketplace/internal/logging"
	"github.com/prn-tf/marketplace/internal/migrate"
	"github.com/prn-tf/marketplace/internal/repository"
	"github.com/prn-tf/marketplace/internal/repository/factory"
	"github.com/prn-tf/marketplace/internal/service"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// passwordEnv supplies the superuser password when --password is omitted.
const passwordEnv = "MARKETPLACE_SUPERUSER_PASSWORD"

type app struct {
	configPath string
	cfg        *config.Config
	logger     zerolog.Logger
}

func main() {
	a := &app{}

	root := &cobra.Command{
		Use:           "marketplace-admin",
		Short:         "Marketplace administration commands",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.load()
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to the configuration file")

	root.AddCommand(
		a.createSuperuserCmd(),
		a.usersCmd(),
		versionCmd(),
	)

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (a *app) load() error {
	if err := config.LoadEnvFiles(); err != nil {
		return err
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logging.New(cfg.Logging)
	migrate.SetLogger(a.logger)
	return nil
}

// withRepos opens the configured database for the duration of fn.
func (a *app) withRepos(ctx context.Context, fn func(repos *factory.Repositories) error) error {
	db, err := factory.NewFactory(a.cfg.Database, a.logger).Create(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Database.Close()
	return fn(db.Repos)
}

func (a *app) createSuperuserCmd() *cobra.Command {
	var in service.CreateSuperuserInput

	cmd := &cobra.Command{
		Use:   "createsuperuser",
		Short: "Create an active superuser account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if in.Password == "" {
				in.Password = os.Getenv(passwordEnv)
			}

			return a.withRepos(cmd.Context(), func(repos *factory.Repositories) error {
				accounts := service.NewAccountService(repos.Accounts, a.cfg.Auth.BcryptCost, a.logger)
				account, err := accounts.CreateSuperuser(cmd.Context(), in)
				if err != nil {
					return fmt.Errorf("failed to create superuser: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Superuser %q created (id %s).\n", account.Username, account.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&in.Username, "username", "", "login name")
	cmd.Flags().StringVar(&in.Password, "password", "", "password (defaults to $"+passwordEnv+")")
	cmd.Flags().StringVar(&in.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&in.LastName, "last-name", "", "last name")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

func (a *app) usersCmd() *cobra.Command {
	users := &cobra.Command{
		Use:   "users",
		Short: "Inspect accounts",
	}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List accounts in join order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withRepos(cmd.Context(), func(repos *factory.Repositories) error {
				result, err := repos.Accounts.List(cmd.Context(), repository.ListOptions{Limit: limit})
				if err != nil {
					return err
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tUSERNAME\tSELLER\tACTIVE\tSUPERUSER\tJOINED")
				for _, acc := range result.Items {
					fmt.Fprintf(tw, "%s\t%s\t%t\t%t\t%t\t%s\n",
						acc.ID, acc.Username, acc.IsSeller, acc.IsActive, acc.IsSuperuser,
						acc.DateJoined.Format(time.RFC3339))
				}
				if err := tw.Flush(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d accounts\n", len(result.Items), result.Total)
				return nil
			})
		},
	}
	list.Flags().IntVar(&limit, "limit", 0, "maximum number of accounts to show (0 for all)")

	users.AddCommand(list)
	return users
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Marketplace Admin CLI\n")
			fmt.Fprintf(out, "Version: %s\n", Version)
			fmt.Fprintf(out, "Build Time: %s\n", BuildTime)
			fmt.Fprintf(out, "Git Commit: %s\n", GitCommit)
		},
	}
}
