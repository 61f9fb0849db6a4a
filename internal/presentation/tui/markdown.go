package tui

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/eventmodel/pkg/domain"
)

// Markdown renders a slice collection for humans: one section per slice with its
// ticks, cross-referenced events, attachments and scenarios, then the actors.
func Markdown(view *domain.View) string {
	var sb strings.Builder

	title := "Slices"
	if view != nil && view.Model != "" {
		title = "Slices: " + view.Model
	}
	sb.WriteString("# " + title + "\n\n")

	if view == nil || len(view.Slices) == 0 {
		sb.WriteString("_No state views or commands on the timeline._\n")
		return sb.String()
	}

	for _, s := range view.Slices {
		writeSlice(&sb, s)
	}

	if len(view.Actors) > 0 {
		sb.WriteString("## Actors\n\n")
		sb.WriteString("| Actor | Role | Reads | Sends | Tick |\n|---|---|---|---|---|\n")
		for _, a := range view.Actors {
			fmt.Fprintf(&sb, "| %s | %s | %s | %s | %d |\n", cell(a.Name), cell(a.Role), cell(a.ReadsView), cell(a.SendsCommand), a.Tick)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func writeSlice(sb *strings.Builder, s domain.Slice) {
	kind := "State view"
	refsTitle := "Sourced from"
	if s.Kind == domain.SliceCommand {
		kind = "Command"
		refsTitle = "Produces"
	}

	fmt.Fprintf(sb, "## %s: %s\n\n", kind, s.Name)
	fmt.Fprintf(sb, "Ticks: %s\n\n", joinTicks(s.Ticks))

	if refs := s.Refs(); len(refs) > 0 {
		fmt.Fprintf(sb, "**%s**\n\n| Event | Ticks | System |\n|---|---|---|\n", refsTitle)
		for _, r := range refs {
			ticks := joinTicks(r.Ticks)
			if r.Dangling() {
				ticks = "(dangling)"
			}
			fmt.Fprintf(sb, "| %s | %s | %s |\n", cell(r.Name), ticks, cell(r.System))
		}
		sb.WriteString("\n")
	}

	if len(s.Attachments) > 0 {
		sb.WriteString("**Attachments**\n\n")
		for _, a := range s.Attachments {
			name := a.Name
			if name == "" {
				name = a.URL
			}
			fmt.Fprintf(sb, "- [%s](%s)\n", name, a.URL)
		}
		sb.WriteString("\n")
	}

	if s.Example != nil {
		sb.WriteString("**Example**\n\n")
		writeJSON(sb, s.Example)
	}

	for _, sc := range s.Scenarios {
		writeScenario(sb, sc)
	}
}

func writeScenario(sb *strings.Builder, sc domain.Scenario) {
	fmt.Fprintf(sb, "### %s _(%s)_\n\n", sc.Name, sc.Origin)
	if sc.Description != "" {
		sb.WriteString(sc.Description + "\n\n")
	}
	if sc.InitialState != nil {
		sb.WriteString("Initial state:\n\n")
		writeJSON(sb, sc.InitialState)
	}
	if len(sc.Steps) == 0 {
		sb.WriteString("_No steps._\n\n")
		return
	}

	for i, step := range sc.Steps {
		var parts []string
		if len(step.Given) > 0 {
			parts = append(parts, "**Given** "+samples(step.Given))
		}
		if step.When != nil {
			parts = append(parts, "**When** "+sample(*step.When))
		}
		if len(step.Then) > 0 {
			parts = append(parts, "**Then** "+samples(step.Then))
		}
		if len(parts) == 0 {
			parts = append(parts, "_empty_")
		}
		fmt.Fprintf(sb, "%d. %s\n", i+1, strings.Join(parts, " "))
	}
	sb.WriteString("\n")
}

func sample(s domain.Sample) string {
	if s.Tick != 0 {
		return fmt.Sprintf("`%s` @%d", s.Name, s.Tick)
	}
	return "`" + s.Name + "`"
}

func samples(ss []domain.Sample) string {
	parts := make([]string, len(ss))
	for i, s := range ss {
		parts[i] = sample(s)
	}
	return strings.Join(parts, ", ")
}

func joinTicks(ts []int) string {
	if len(ts) == 0 {
		return "-"
	}
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = strconv.Itoa(t)
	}
	return strings.Join(parts, ", ")
}

func writeJSON(sb *strings.Builder, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		data = []byte(fmt.Sprintf("%v", v))
	}
	sb.WriteString("```json\n")
	sb.Write(data)
	sb.WriteString("\n```\n\n")
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
