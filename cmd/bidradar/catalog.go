// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/bidradar/internal/source"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print or export the built-in feed catalog",
	Long: `Catalog shows the feeds and portal query translations compiled into the
binary. Export it with --out, edit the copy, and point collect.feeds_file
at it to replace the built-in catalog.`,
	RunE: runCatalog,
}

func init() {
	catalogCmd.Flags().String("out", "", "write the catalog to this YAML file instead of stdout")

	rootCmd.AddCommand(catalogCmd)
}

func runCatalog(cmd *cobra.Command, args []string) error {
	cf := source.DefaultCatalogFile()

	if out, _ := cmd.Flags().GetString("out"); out != "" {
		if err := source.WriteCatalogFile(out, cf); err != nil {
			return err
		}
		fmt.Printf("wrote %d feeds to %s\n", len(cf.Feeds), out)
		return nil
	}

	data, err := yaml.Marshal(&cf)
	if err != nil {
		return fmt.Errorf("marshaling catalog: %w", err)
	}
	os.Stdout.Write(data)
	return nil
}
