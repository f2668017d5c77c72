package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/donovanp007/medscribe/internal/domain/template"
)

// TemplatesResult is the CLI payload for the template listing.
type TemplatesResult struct {
	Templates []template.Definition `json:"templates"`
}

// NewTemplatesCmd creates the templates command.
func NewTemplatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the registered clinical templates",
		Args:  cobra.NoArgs,
		RunE:  runTemplates,
	}
}

func runTemplates(cmd *cobra.Command, _ []string) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}

	defs := cliCtx.Service.Templates()

	return PrintResult(cmd, TemplatesResult{Templates: defs}, func() string {
		rows := make([][]string, 0, len(defs))
		for _, def := range defs {
			rows = append(rows, []string{
				def.ID,
				def.Name,
				strconv.Itoa(len(def.Sections)),
				strings.Join(def.TriggerKeywords, ", "),
			})
		}
		table := FormatTable([]string{"ID", "NAME", "SECTIONS", "TRIGGERS"}, rows)
		return table + fmt.Sprintf("\n%d templates\n", len(defs))
	})
}
