package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/isometry/ad-user-import/internal/attribute"
	"github.com/isometry/ad-user-import/internal/catalog"
	"github.com/isometry/ad-user-import/internal/feed"
	"github.com/isometry/ad-user-import/internal/importer"
	"github.com/isometry/ad-user-import/internal/ldap"
	"github.com/isometry/ad-user-import/internal/store"
)

func newImportCmd() *cobra.Command {
	var (
		file         string
		locale       string
		ensureSchema bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Run the import pipeline on a feed file and print the report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			if locale == "" {
				locale = cfg.Import.Locale
			}

			records, err := feed.ReadFile(file, separatorRune(cfg.Import.Separator))
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			client, err := ldap.NewClient(logger, connectionConfig(cfg))
			if err != nil {
				return fmt.Errorf("build directory client: %w", err)
			}
			defer client.Close()

			db, err := store.Connect(ctx, cfg.DB.DSN, cfg.DB.MaxConns)
			if err != nil {
				return err
			}
			st := store.New(db)
			defer st.Close()

			if ensureSchema {
				if err := st.EnsureSchema(ctx); err != nil {
					return err
				}
			}

			cat, err := catalog.New()
			if err != nil {
				return err
			}

			// Deployments with plugin attributes register their definitions
			// and listeners here; unknown attribute ids in the feed are
			// skipped.
			registry := attribute.NewRegistry()

			searcher := ldap.NewIdentitySearcher(client, searchConfig(cfg), logger)
			runner := importer.NewRunner(
				importer.NewExtractor(cfg.Import.TokenDelimiter, logger),
				importer.NewResolver(searcher, logger),
				importer.NewReconciler(st.Users, cfg.Import.AccountValidityMonths, logger),
				importer.NewReplacer(st.Assignments, st.Fields, importer.DefaultReplacePolicy()),
				importer.NewDispatcher(registry, st.Fields, cfg.Import.TokenDelimiter, logger),
				locale,
				logger,
			)

			report, err := runner.Run(ctx, records)
			if err != nil {
				logger.Error("import run aborted", zap.Error(err))
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), report.Render(cat, locale))
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "path to the feed file")
	cmd.Flags().StringVar(&locale, "locale", "", "report locale (defaults to IMPORT_LOCALE)")
	cmd.Flags().BoolVar(&ensureSchema, "ensure-schema", false, "create missing tables before the run")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
