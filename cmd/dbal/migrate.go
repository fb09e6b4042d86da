package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dbal/internal/dialect"
	"dbal/internal/diff"
	"dbal/internal/migration"
	"dbal/internal/output"
)

func newMigrateCmd(a *app) *cobra.Command {
	var (
		platformName string
		outFile      string
		rollbackFile string
		format       string
		unsafe       bool
		noDrops      bool
	)

	cmd := &cobra.Command{
		Use:   "migrate <old> <new>",
		Short: "Generate a migration from the old schema to the new one",
		Long: `Migrate generates the SQL statements that transition a database from the
old schema to the new schema for the chosen platform.

By default removed tables are renamed to a backup name instead of dropped.
Use --unsafe to drop them outright, or --no-drops to leave them untouched.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			platform, err := a.platform(platformName)
			if err != nil {
				return err
			}
			formatter, err := output.NewFormatter(format)
			if err != nil {
				return err
			}

			oldSchema, newSchema, err := loadSchemas(args[0], args[1])
			if err != nil {
				return err
			}
			printInfo(cmd, format, fmt.Sprintf("Migrating %s -> %s (%s)", args[0], args[1], platform.Name()))

			schemaDiff := diff.CompareSchemas(oldSchema, newSchema)
			printInfo(cmd, format, fmt.Sprintf("Detected changes between schemas (old: %d tables, new: %d tables)",
				len(oldSchema.Tables()), len(newSchema.Tables())))

			opts := dialect.DefaultMigrationOptions(platform.Name())
			opts.IncludeUnsafe = unsafe
			opts.IncludeDrops = !noDrops
			m := migration.NewPlanner(platform, opts, a.log).Plan(schemaDiff)

			formatted, err := formatter.FormatMigration(m)
			if err != nil {
				return fmt.Errorf("failed to format output: %w", err)
			}
			if err := writeOutput(cmd, format, outFile, formatted); err != nil {
				return err
			}

			if rollbackFile != "" {
				if err := m.SaveRollbackToFile(rollbackFile); err != nil {
					return fmt.Errorf("failed to write rollback output: %w", err)
				}
				printInfo(cmd, format, fmt.Sprintf("Rollback saved to %s", rollbackFile))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&platformName, "platform", "p", "", "Target platform: mysql or postgresql (env DBAL_PLATFORM)")
	cmd.Flags().StringVarP(&outFile, "output", "o", "", "Output file for the generated migration")
	cmd.Flags().StringVarP(&rollbackFile, "rollback-output", "r", "", "Output file for generated rollback SQL (run separately)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: sql, json or summary")
	cmd.Flags().BoolVarP(&unsafe, "unsafe", "u", false, "Drop removed tables instead of renaming them to a backup")
	cmd.Flags().BoolVar(&noDrops, "no-drops", false, "Report removed tables, sequences and views instead of dropping them")
	return cmd
}
