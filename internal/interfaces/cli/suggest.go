package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/donovanp007/medscribe/pkg/types/clinical"
)

// SuggestResult is the CLI payload for a template suggestion.  Suggestion is
// nil when no template clears the confidence floor.
type SuggestResult struct {
	Suggestion *clinical.TemplateSuggestion `json:"suggestion"`
}

// NewSuggestCmd creates the suggest command.
func NewSuggestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest [file]",
		Short: "Suggest the best matching template for a transcript",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readTranscript(cmd, args)
			if err != nil {
				return err
			}
			return runSuggest(cmd, text)
		},
	}

	return cmd
}

func runSuggest(cmd *cobra.Command, text string) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}

	suggestion := cliCtx.Service.SuggestTemplate(cmd.Context(), text)

	return PrintResult(cmd, SuggestResult{Suggestion: suggestion}, func() string {
		if suggestion == nil {
			return "No template matched the transcript.\n"
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "Template:   %s\n", suggestion.TemplateID)
		if suggestion.Name != "" {
			fmt.Fprintf(&sb, "Name:       %s\n", suggestion.Name)
		}
		fmt.Fprintf(&sb, "Confidence: %.2f\n", suggestion.Confidence)
		if suggestion.Reasoning != "" {
			fmt.Fprintf(&sb, "Reasoning:  %s\n", suggestion.Reasoning)
		}
		return sb.String()
	})
}
