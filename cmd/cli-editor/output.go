package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/aaveggupta/cli-ai-code-editor/internal/models"
	"github.com/aaveggupta/cli-ai-code-editor/internal/pipeline"

	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func checkFormat(format string) error {
	switch format {
	case formatText, formatJSON, formatYAML:
		return nil
	}
	return fmt.Errorf("invalid output format %q: expected text, json or yaml", format)
}

// render writes v in the structured formats, or calls text for the human one.
func render(w io.Writer, format string, v any, text func(io.Writer)) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		text(w)
		return nil
	}
}

func writeResult(w io.Writer, res *pipeline.Result) {
	if res.Success {
		fmt.Fprintln(w, "Prompt executed successfully")
	} else {
		fmt.Fprintln(w, "Prompt execution failed")
	}
	if res.RequestID != "" {
		fmt.Fprintf(w, "Prompt ID: %s\n", res.RequestID)
	}
	if res.Plan != "" {
		fmt.Fprintf(w, "\nPlan:\n%s\n", res.Plan)
	}
	if len(res.Edits) > 0 {
		fmt.Fprintf(w, "\nChanges (%d/%d applied):\n", res.AppliedCount, len(res.Edits))
		for _, e := range res.Edits {
			marker := "~"
			if e.IsNewFile {
				marker = "+"
			}
			fmt.Fprintf(w, "  %s %s", marker, e.FilePath)
			if e.Description != "" {
				fmt.Fprintf(w, "  %s", e.Description)
			}
			fmt.Fprintln(w)
		}
	}
	if len(res.Errors) > 0 {
		fmt.Fprintln(w, "\nErrors:")
		for _, e := range res.Errors {
			fmt.Fprintf(w, "  - %s\n", e)
		}
	}
}

func writeHistory(w io.Writer, prompts []models.Prompt) {
	if len(prompts) == 0 {
		fmt.Fprintln(w, "No prompts yet.")
		return
	}
	for _, p := range prompts {
		fmt.Fprintf(w, "%s  %-10s  %s  %s\n",
			p.ID, p.Status, p.CreatedAt.Format("2006-01-02 15:04"), truncate(p.Prompt, 60))
	}
}

func writeDetails(w io.Writer, d *pipeline.Details) {
	p := d.Prompt
	fmt.Fprintf(w, "Prompt ID:  %s\n", p.ID)
	fmt.Fprintf(w, "Status:     %s\n", p.Status)
	fmt.Fprintf(w, "Repository: %s\n", p.TargetRepo)
	fmt.Fprintf(w, "Created:    %s\n", p.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Prompt:     %s\n", p.Prompt)
	if len(d.Changes) == 0 {
		fmt.Fprintln(w, "\nNo changes recorded.")
		return
	}
	fmt.Fprintf(w, "\nChanges (%d):\n", len(d.Changes))
	for _, c := range d.Changes {
		state := "pending"
		if c.Applied {
			state = "applied"
		}
		fmt.Fprintf(w, "  [%s] %s", state, c.FilePath)
		if c.ChangeDescription != nil {
			fmt.Fprintf(w, "  %s", *c.ChangeDescription)
		}
		fmt.Fprintln(w)
	}
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
