package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jcom-dev/zmanim/pkg/engine"
	"github.com/jcom-dev/zmanim/pkg/formula"
)

// formulasCmd represents the formulas command group
//
//nolint:gochecknoglobals // Cobra commands are typically global
var formulasCmd = &cobra.Command{
	Use:   "formulas",
	Short: "Manage and inspect formula sets",
	Long:  `Commands for listing and validating the loaded formula sets.`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		// Keep inspection output clean unless a level was asked for
		if !cmd.Flags().Changed("log-level") {
			logger.SetLevel(logrus.ErrorLevel)
		}
		return nil
	},
}

// listCmd lists all loaded formulas
//
//nolint:gochecknoglobals // Cobra commands are typically global
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all loaded formulas",
	Long:  `List all loaded formulas with their tags and references.`,
	RunE:  runFormulasList,
}

// validateCmd validates the loaded formula sets
//
//nolint:gochecknoglobals // Cobra commands are typically global
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate formula sets",
	Long: `Validate the loaded formula sets: syntax, argument ranges, reference
resolution, and reference cycles.`,
	RunE: runFormulasValidate,
}

func init() {
	formulasCmd.AddCommand(listCmd)
	formulasCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(formulasCmd)
}

func loadStore() (*formula.Store, error) {
	config, err := LoadCLIConfig(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return formula.Load(&config.Engine.Formulas)
}

func runFormulasList(_ *cobra.Command, _ []string) error {
	store, err := loadStore()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	defer func() { _ = w.Flush() }()

	fmt.Fprintf(w, "KEY\tNAME\tTAGS\tREFERENCES\n")
	for _, f := range store.All() {
		tags := make([]string, 0, len(f.Tags))
		for _, tag := range f.Tags {
			label := string(tag.Type) + ":" + tag.Key
			if tag.Negated {
				label = "!" + label
			}
			tags = append(tags, label)
		}

		refs, err := f.References()
		if err != nil {
			refs = []string{"(parse error)"}
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			f.Key, f.EnglishName, strings.Join(tags, ","), strings.Join(refs, ","))
	}
	return nil
}

func runFormulasValidate(_ *cobra.Command, _ []string) error {
	config, err := LoadCLIConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Strict startup does the whole job: parse, static checks, cycle check.
	strict := true
	config.Engine.Validation.Strict = &strict
	svc, err := engine.NewService(logger, &config.Engine)
	if err != nil {
		return err
	}
	if err := svc.Start(); err != nil {
		errs, verr := svc.ValidateAll()
		if verr == nil && len(errs) > 0 {
			keys := make([]string, 0, len(errs))
			for key := range errs {
				keys = append(keys, key)
			}
			sort.Strings(keys)

			w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
			fmt.Fprintf(w, "FORMULA\tERROR\n")
			for _, key := range keys {
				fmt.Fprintf(w, "%s\t%s\n", key, errs[key])
			}
			_ = w.Flush()
		}
		return err
	}
	defer func() { _ = svc.Stop() }()

	fmt.Printf("%d formulas validated\n", svc.Store().Len())
	return nil
}
