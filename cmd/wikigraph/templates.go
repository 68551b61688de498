// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the infobox templates of the wiki",
	Long: `Templates reads the infobox template category of the wiki and prints
every template in it, skipping user, talk, and test pages. With --probe each
template is checked for pages that use it.`,
	RunE: runTemplates,
}

func init() {
	templatesCmd.Flags().Bool("probe", false, "check which templates are used by at least one page")
	rootCmd.AddCommand(templatesCmd)
}

func runTemplates(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := newWikiClient(cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	templates, err := client.InfoboxTemplates(ctx, os.Stderr)
	if err != nil {
		return err
	}

	probe, _ := cmd.Flags().GetBool("probe")
	unused := 0
	for _, t := range templates {
		if !probe {
			fmt.Println(t)
			continue
		}
		ok, err := client.HasPages(ctx, t)
		switch {
		case err != nil:
			fmt.Printf("%-50s error: %v\n", t, err)
		case ok:
			fmt.Printf("%-50s used\n", t)
		default:
			unused++
			fmt.Printf("%-50s unused\n", t)
		}
	}
	fmt.Fprintf(os.Stderr, "\nTotal: %d templates", len(templates))
	if probe {
		fmt.Fprintf(os.Stderr, " (%d unused)", unused)
	}
	fmt.Fprintln(os.Stderr)
	return nil
}
