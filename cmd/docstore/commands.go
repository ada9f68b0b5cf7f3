package main

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"docstore/internal/auth"
	"docstore/internal/config"
	"docstore/internal/database"
	"docstore/internal/database/migration"
	"docstore/internal/logger"
	"docstore/internal/repository/postgres"
	"docstore/internal/service"
	"docstore/internal/tagging"
)

func newMigrateCmd() *cobra.Command {
	var status bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			log := logger.New(cfg.Log.Level, cfg.Location())
			defer log.Sync()

			return withDB(cmd.Context(), cfg, func(db *sql.DB) error {
				if !status {
					return migration.EnsureMigrated(cmd.Context(), db, log)
				}
				states, err := migration.Status(cmd.Context(), db)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "VERSION\tFILE\tSTATE\tAPPLIED AT")
				for _, st := range states {
					applied := "-"
					if !st.AppliedAt.IsZero() {
						applied = st.AppliedAt.Format(time.RFC3339)
					}
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", st.Source.Version, st.Source.Path, st.State, applied)
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().BoolVar(&status, "status", false, "list migrations and their state instead of applying them")
	return cmd
}

func newTokenCmd() *cobra.Command {
	var (
		userID string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for a user id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if ttl <= 0 {
				ttl = cfg.Auth.TokenTTL
			}
			tokens, err := auth.NewTokens(cfg.Auth.JWTSecret, ttl)
			if err != nil {
				return err
			}
			token, err := tokens.Issue(userID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "user id (uuid) the token is issued to")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime, defaults to JWT_TTL")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newRetagCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "retag <document-id>...",
		Short: "Queue documents for tagging again",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			client := asynq.NewClient(tagging.RedisOpt(cfg.Redis))
			defer client.Close()

			return withDB(cmd.Context(), cfg, func(db *sql.DB) error {
				docs := postgres.NewDocumentPostgres(db)
				svc := service.NewDocumentService(service.Dependencies{
					Documents: docs,
					Queue:     tagging.NewClient(client, cfg.Worker.Queue),
				}, service.Options{})

				for _, id := range args {
					doc, err := docs.FindByID(cmd.Context(), id)
					if err != nil {
						return fmt.Errorf("load %s: %w", id, err)
					}
					taskID, err := svc.Retag(cmd.Context(), doc.ID, doc.OwnerID)
					if err != nil {
						return fmt.Errorf("retag %s: %w", id, err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", doc.ID, taskID)
				}
				return nil
			})
		},
	}
}

func newRunsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs <document-id>",
		Short: "Show recent tagging runs for a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			return withDB(cmd.Context(), cfg, func(db *sql.DB) error {
				runs, err := postgres.NewTaggingRunPostgres(db).ListForDocument(cmd.Context(), args[0], limit)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "FINISHED\tOUTCOME\tSTATE\tTAGS\tMESSAGE")
				for _, r := range runs {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
						r.FinishedAt.Format(time.RFC3339), r.Outcome, r.State, strings.Join(r.Tags, ","), r.Message)
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show")
	return cmd
}

func withDB(ctx context.Context, cfg *config.AppConfig, fn func(*sql.DB) error) error {
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()
	return fn(db)
}
