package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jask/pillrx/internal/config"
	"github.com/jask/pillrx/internal/database"
	"github.com/jask/pillrx/internal/database/repository"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the drug catalog used by catalog identification",
	Args:  cobra.NoArgs,
	RunE:  runCatalog,
}

func runCatalog(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(rootFlags.configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Catalog.Path), 0o755); err != nil {
		return fmt.Errorf("mkdir catalog dir: %w", err)
	}
	db, err := database.OpenCatalog(cmd.Context(), cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	defer db.Close()

	drugs, err := repository.NewDrugRepo(db).List(cmd.Context())
	if err != nil {
		return fmt.Errorf("list catalog: %w", err)
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tIMPRINT\tCOLOR\tSHAPE")
	for _, d := range drugs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.Name, d.Imprint, d.Color, d.Shape)
	}
	return w.Flush()
}
