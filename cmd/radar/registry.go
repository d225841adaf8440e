package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

func registryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect the offshore jurisdiction registry",
	}
	cmd.AddCommand(registryListCmd())
	return cmd
}

func registryListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered offshore jurisdictions",
		RunE: func(_ *cobra.Command, _ []string) error {
			reg, err := loadRegistry()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				headerStyle.Render("Code"),
				headerStyle.Render("Alpha-3"),
				headerStyle.Render("Name"),
				headerStyle.Render("Название"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 4),
				strings.Repeat("-", 7),
				strings.Repeat("-", 30),
				strings.Repeat("-", 30))

			for _, entry := range reg.Entries() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", entry.Code2, entry.Code3, entry.NameEN, entry.NameRU)
			}

			return nil
		},
	}
}
