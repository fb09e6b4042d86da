package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"dbal/internal/core"
	"dbal/internal/dialect"
	"dbal/internal/parser"
)

func newValidateCmd(a *app) *cobra.Command {
	var platformName string

	cmd := &cobra.Command{
		Use:   "validate <schema>...",
		Short: "Parse and validate schema files",
		Long: `Validate parses each schema file and checks the model invariants: unique
names, existing key columns and resolvable foreign keys.

With --platform, identifiers longer than the platform allows are reported too.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var platform dialect.Platform
			if platformName != "" {
				p, err := a.platform(platformName)
				if err != nil {
					return err
				}
				platform = p
			}

			var errs []error
			for _, path := range args {
				s, err := parser.ParseFile(path)
				if err == nil && platform != nil {
					err = checkIdentifierLengths(s, platform)
				}
				if err != nil {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %v\n", path, err)
					errs = append(errs, fmt.Errorf("%s: %w", path, err))
					continue
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "OK   %s: %d tables, %d sequences, %d views\n",
					path, len(s.Tables()), len(s.Sequences()), len(s.Views()))
			}
			return errors.Join(errs...)
		},
	}

	cmd.Flags().StringVarP(&platformName, "platform", "p", "", "Also check identifier lengths for mysql or postgresql")
	return cmd
}

func checkIdentifierLengths(s *core.Schema, p dialect.Platform) error {
	limit := p.MaxIdentifierLength()
	var errs []error
	check := func(kind, name string) {
		if len(name) > limit {
			errs = append(errs, fmt.Errorf("%s %q exceeds the %s limit of %d characters", kind, name, p.Name(), limit))
		}
	}

	for _, t := range s.Tables() {
		check("table", t.Name)
		for _, c := range t.Columns() {
			check("column", c.Name)
		}
		for _, idx := range t.Indexes() {
			check("index", idx.Name)
		}
		for _, fk := range t.ForeignKeys() {
			check("foreign key", fk.Name)
		}
		for _, ck := range t.Checks() {
			check("check", ck.Name)
		}
	}
	for _, seq := range s.Sequences() {
		check("sequence", seq.Name)
	}
	for _, v := range s.Views() {
		check("view", v.Name)
	}
	return errors.Join(errs...)
}
