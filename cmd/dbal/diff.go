package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dbal/internal/diff"
	"dbal/internal/output"
)

func newDiffCmd(a *app) *cobra.Command {
	var (
		outFile       string
		format        string
		detectRenames bool
	)

	cmd := &cobra.Command{
		Use:   "diff <old> <new>",
		Short: "Compare two schemas",
		Long: `Compare two schema files and print the differences.

Schemas can be TOML (.toml), YAML (.yaml, .yml) or MySQL dumps (.sql).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			oldSchema, newSchema, err := loadSchemas(args[0], args[1])
			if err != nil {
				return err
			}

			formatter, err := output.NewFormatter(format)
			if err != nil {
				return err
			}

			opts := diff.DefaultOptions()
			opts.DetectColumnRenames = detectRenames
			schemaDiff := diff.NewComparator(opts).CompareSchemas(oldSchema, newSchema)
			a.log.With().
				Int("created", len(schemaDiff.CreatedTables)).
				Int("altered", len(schemaDiff.AlteredTables)).
				Int("dropped", len(schemaDiff.DroppedTables)).
				Logger().Debug("schemas compared")

			formatted, err := formatter.FormatDiff(schemaDiff)
			if err != nil {
				return fmt.Errorf("failed to format output: %w", err)
			}
			return writeOutput(cmd, format, outFile, formatted)
		},
	}

	cmd.Flags().StringVarP(&outFile, "output", "o", "", "Output file for the diff")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: sql, json or summary")
	cmd.Flags().BoolVar(&detectRenames, "detect-renames", true, "Report a dropped and a created column with the same definition as a rename")
	return cmd
}
