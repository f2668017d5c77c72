package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/donovanp007/medscribe/internal/application/scribe"
	"github.com/donovanp007/medscribe/internal/domain/template"
	"github.com/donovanp007/medscribe/pkg/errors"
	"github.com/donovanp007/medscribe/pkg/types/clinical"
)

// AnalyzeResult is the CLI payload for a completed transcript analysis.
type AnalyzeResult struct {
	TemplateID string                           `json:"template_id"`
	Result     clinical.StreamingAnalysisResult `json:"result"`
}

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	var templateID string

	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Classify a dictated transcript into template sections",
		Long: "Reads a transcript from the given file, or from stdin when no file is\n" +
			"given, runs the full streaming analysis, and prints the final snapshot:\n" +
			"section assignments, extracted entities, urgency, and suggested actions.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readTranscript(cmd, args)
			if err != nil {
				return err
			}
			return runAnalyze(cmd, templateID, text)
		},
	}

	cmd.Flags().StringVarP(&templateID, "template", "t", "",
		"template id (default: suggested from the transcript, falling back to "+scribe.DefaultTemplateID+")")

	return cmd
}

// readTranscript loads the transcript from the positional file argument or,
// absent one, from stdin.
func readTranscript(cmd *cobra.Command, args []string) (string, error) {
	var (
		raw []byte
		err error
	)
	if len(args) == 1 {
		raw, err = os.ReadFile(args[0])
		if err != nil {
			return "", errors.Wrap(err, errors.ErrCodeBadRequest, "read transcript file")
		}
	} else {
		raw, err = io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", errors.Wrap(err, errors.ErrCodeBadRequest, "read stdin")
		}
	}

	text := strings.TrimSpace(string(raw))
	if text == "" {
		return "", errors.InvalidParam("transcript is empty")
	}
	return text, nil
}

func runAnalyze(cmd *cobra.Command, templateID, text string) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	svc := cliCtx.Service

	if templateID == "" {
		if sug := svc.SuggestTemplate(ctx, text); sug != nil {
			templateID = sug.TemplateID
		} else {
			templateID = scribe.DefaultTemplateID
		}
	}

	sessionID, err := svc.CreateSession(ctx, templateID)
	if err != nil {
		return err
	}

	if _, err := svc.AddText(ctx, sessionID, text); err != nil {
		return err
	}

	// CloseSession flushes the sentence tail and returns the final snapshot.
	result, err := svc.CloseSession(ctx, sessionID)
	if err != nil {
		return err
	}

	payload := AnalyzeResult{TemplateID: templateID, Result: result}
	return PrintResult(cmd, payload, func() string {
		return renderAnalysis(templateID, findTemplate(svc.Templates(), templateID), result)
	})
}

func findTemplate(defs []template.Definition, id string) *template.Definition {
	for i := range defs {
		if defs[i].ID == id {
			return &defs[i]
		}
	}
	return nil
}

// renderAnalysis produces the human-readable report: header, sections in
// template order, entities, and suggested actions.
func renderAnalysis(templateID string, def *template.Definition, result clinical.StreamingAnalysisResult) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Template:     %s\n", templateID)
	fmt.Fprintf(&sb, "Urgency:      %s\n", result.UrgencyLevel)
	fmt.Fprintf(&sb, "Completeness: %.0f%% (%d/%d sections)\n",
		result.Completeness*100, result.PopulatedSections(), len(result.Sections))

	for _, snap := range orderedSections(def, result.Sections) {
		if !snap.Populated() {
			continue
		}
		fmt.Fprintf(&sb, "\n[%s]  (confidence %.2f)\n", snap.Title, snap.Confidence)
		for _, frag := range snap.Fragments {
			fmt.Fprintf(&sb, "  %s\n", frag)
		}
		for _, ent := range snap.Entities {
			fmt.Fprintf(&sb, "  * %s: %s\n", ent.Type, ent.Text)
		}
	}

	if len(result.SuggestedActions) > 0 {
		sb.WriteString("\nSuggested actions:\n")
		for _, action := range result.SuggestedActions {
			fmt.Fprintf(&sb, "  [%s] %s\n", action.Type, action.Text)
		}
	}

	return sb.String()
}

// orderedSections returns snapshots in template declaration order; sections
// the template does not declare come last, alphabetically.
func orderedSections(def *template.Definition, sections map[string]clinical.SectionSnapshot) []clinical.SectionSnapshot {
	out := make([]clinical.SectionSnapshot, 0, len(sections))
	seen := make(map[string]bool, len(sections))

	if def != nil {
		for _, sec := range def.Sections {
			if snap, ok := sections[sec.ID]; ok {
				out = append(out, snap)
				seen[sec.ID] = true
			}
		}
	}

	rest := make([]string, 0, len(sections))
	for id := range sections {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	for _, id := range rest {
		out = append(out, sections[id])
	}

	return out
}
