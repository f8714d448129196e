package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"moltscope/internal/analysis"
)

func traitsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "traits",
		Short: "Show the active trait taxonomy",
		RunE:  runTraits,
	}

	cmd.Flags().String("taxonomy", "", "taxonomy YAML file (default: built-in taxonomy)")

	return cmd
}

func runTraits(cmd *cobra.Command, _ []string) error {
	taxonomyPath, _ := cmd.Flags().GetString("taxonomy")

	tax, err := loadTaxonomy(taxonomyPath)
	if err != nil {
		return err
	}

	s := analysis.NewStyles()
	fmt.Println(s.Title.Render(fmt.Sprintf("%s (%s)", tax.Name, tax.Version)))
	for _, trait := range tax.Traits {
		fmt.Printf("  %s  %s\n",
			s.Header.Render(fmt.Sprintf("%-20s", trait.Name)),
			s.Subtle.Render(trait.Description))
	}

	return nil
}
