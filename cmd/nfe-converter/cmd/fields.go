package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rezonia/nfe-converter/internal/catalog"
	"github.com/rezonia/nfe-converter/internal/export"
)

var itemsOnly bool

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List the extractable NF-e fields",
	Long: `List the invoice and item fields known to the converter.

Fields marked with * are selected by default. Use the ids with
'convert --header' and 'convert --items' or in the config file.`,
	RunE: runFields,
}

func init() {
	rootCmd.AddCommand(fieldsCmd)

	fieldsCmd.Flags().BoolVar(&itemsOnly, "items", false, "List item fields only")
}

// fieldRow is one catalog entry as listed by the fields command
type fieldRow struct {
	Group   string `json:"group"`
	ID      string `json:"id"`
	Label   string `json:"label"`
	Path    string `json:"path"`
	Kind    string `json:"kind"`
	Default bool   `json:"default"`
}

func runFields(cmd *cobra.Command, args []string) error {
	rows := fieldRows(defaultCatalog(), itemsOnly)

	switch outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case "csv":
		t := &export.Table{Columns: []string{"Grupo", "ID", "Rótulo", "Caminho", "Tipo", "Padrão"}}
		for _, r := range rows {
			def := ""
			if r.Default {
				def = "sim"
			}
			t.Rows = append(t.Rows, []string{r.Group, r.ID, r.Label, r.Path, r.Kind, def})
		}
		return export.WriteCSV(os.Stdout, t)
	default:
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		group := ""
		for _, r := range rows {
			if r.Group != group {
				if group != "" {
					fmt.Fprintln(w)
				}
				group = r.Group
				fmt.Fprintf(w, "%s\n", group)
			}
			mark := " "
			if r.Default {
				mark = "*"
			}
			fmt.Fprintf(w, "  %s %s\t%s\t%s\t%s\n", mark, r.ID, r.Label, r.Kind, r.Path)
		}
		return w.Flush()
	}
}

func fieldRows(cat *catalog.Catalog, itemsOnly bool) []fieldRow {
	var rows []fieldRow

	if !itemsOnly {
		defaults := toSet(cat.DefaultHeaderIDs())
		for _, c := range cat.Categories() {
			for _, f := range c.Fields {
				rows = append(rows, newFieldRow(c.Name, f, defaults))
			}
		}
	}

	defaults := toSet(cat.DefaultItemIDs())
	for _, f := range cat.ItemFields() {
		rows = append(rows, newFieldRow("Produtos", f, defaults))
	}
	return rows
}

func newFieldRow(group string, f catalog.Field, defaults map[string]bool) fieldRow {
	return fieldRow{
		Group:   group,
		ID:      f.ID,
		Label:   f.Label,
		Path:    f.Path,
		Kind:    string(f.Kind),
		Default: defaults[f.ID],
	}
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
