// Package sources implements the sources command, which displays the
// configured source table.
package sources

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/newsharvest/internal/config"
	"github.com/jonesrussell/newsharvest/internal/logger"
	internalsources "github.com/jonesrussell/newsharvest/internal/sources"
)

// Command returns the sources command with its subcommands.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "Manage configured news sources",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(listCommand())
	return cmd
}

// listCommand returns the sources list subcommand.
func listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configured sources",
		RunE:  runList,
	}
}

// runList loads the source table and renders it.
func runList(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Logger.Level,
		Encoding:    cfg.Logger.Encoding,
		Development: cfg.Logger.Development,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	srcs, err := internalsources.Load(cfg.Crawl.SourceFile, log)
	if err != nil {
		return fmt.Errorf("failed to load sources: %w", err)
	}

	renderTable(srcs.GetSources())
	return nil
}

// renderTable formats and displays the sources in a table.
func renderTable(configs []internalsources.Config) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Name", "Kind", "URL", "Selector", "Schema", "Credential Env"})

	for _, src := range configs {
		url := src.BaseURL
		if src.Kind == internalsources.KindOneShot {
			url = src.APIURL
		}
		t.AppendRow(table.Row{
			src.Name,
			string(src.Kind),
			url,
			src.Selector,
			string(src.Schema),
			src.CredentialEnv,
		})
	}

	t.Render()
}
