package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/eventmodel/pkg/domain"
)

// GraphOverlay marks slices to emphasize on the diagram.
type GraphOverlay struct {
	Highlighted []domain.SliceKey
	Focus       *domain.SliceKey
}

// GenerateMermaid produces a Mermaid flowchart of a slice collection.
// It applies semantic shapes:
// - Event: [Rectangle]
// - Command: [[Subroutine]]
// - State view: [/Parallelogram/]
// - Actor: ((Circle))
// Edges run event -> state view (sourcedFrom, labelled with ticks), command -> event
// (produces), state view -> actor (reads) and actor -> command (sends).
// Dangling references point at dotted "missing" nodes.
func GenerateMermaid(view *domain.View, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	if view == nil {
		return sb.String()
	}

	declared := make(map[string]bool)
	declare := func(id, line string) {
		if declared[id] {
			return
		}
		declared[id] = true
		sb.WriteString(line)
	}

	var edges []string
	missing := false

	for _, s := range view.Slices {
		id := sliceID(s.Kind, s.Name)
		if s.Kind == domain.SliceCommand {
			declare(id, fmt.Sprintf("    %s[[\"%s\"]]:::command\n", id, label(s.Name)))
		} else {
			declare(id, fmt.Sprintf("    %s[/\"%s\"/]:::view\n", id, label(s.Name)))
		}

		for _, ref := range s.Refs() {
			if ref.Dangling() {
				missing = true
				refID := "missing_" + sanitizeMermaidID(ref.Name)
				declare(refID, fmt.Sprintf("    %s[\"%s\"]:::missing\n", refID, label(ref.Name)))
				if s.Kind == domain.SliceCommand {
					edges = append(edges, fmt.Sprintf("    %s -.-> %s\n", id, refID))
				} else {
					edges = append(edges, fmt.Sprintf("    %s -.-> %s\n", refID, id))
				}
				continue
			}

			refID := eventID(ref.Name)
			text := label(ref.Name)
			if ref.System != "" {
				text = fmt.Sprintf("%s <br/> %s", text, label(ref.System))
			}
			declare(refID, fmt.Sprintf("    %s[\"%s\"]:::event\n", refID, text))

			if s.Kind == domain.SliceCommand {
				edges = append(edges, fmt.Sprintf("    %s --> %s\n", id, refID))
			} else {
				edges = append(edges, fmt.Sprintf("    %s -- \"%s\" --> %s\n", refID, ticks(ref.Ticks), id))
			}
		}
	}

	for _, a := range view.Actors {
		id := "actor_" + sanitizeMermaidID(a.Name)
		declare(id, fmt.Sprintf("    %s((\"%s\")):::actor\n", id, label(a.Name)))

		viewID := sliceID(domain.SliceState, a.ReadsView)
		cmdID := sliceID(domain.SliceCommand, a.SendsCommand)
		if declared[viewID] {
			edges = append(edges, fmt.Sprintf("    %s -.-> %s\n", viewID, id))
		}
		if declared[cmdID] {
			edges = append(edges, fmt.Sprintf("    %s --> %s\n", id, cmdID))
		}
	}

	seen := make(map[string]bool)
	for _, e := range edges {
		if !seen[e] {
			seen[e] = true
			sb.WriteString(e)
		}
	}

	sb.WriteString("\n    classDef event fill:#ffb74d,stroke:#e65100,color:#000;\n")
	sb.WriteString("    classDef command fill:#64b5f6,stroke:#0d47a1,color:#000;\n")
	sb.WriteString("    classDef view fill:#81c784,stroke:#1b5e20,color:#000;\n")
	sb.WriteString("    classDef actor fill:#fff59d,stroke:#f9a825,color:#000;\n")
	if missing {
		sb.WriteString("    classDef missing fill:#fff,stroke:#c62828,stroke-dasharray:4 4,color:#c62828;\n")
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text keeps contrast on light fills regardless of theme.
		sb.WriteString("    classDef highlighted fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef focus fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		styled := make(map[string]bool)
		for _, key := range overlay.Highlighted {
			id := sliceID(key.Kind, key.Name)
			if declared[id] && !styled[id] {
				styled[id] = true
				sb.WriteString(fmt.Sprintf("    class %s highlighted;\n", id))
			}
		}

		if overlay.Focus != nil {
			id := sliceID(overlay.Focus.Kind, overlay.Focus.Name)
			if declared[id] {
				sb.WriteString(fmt.Sprintf("    class %s focus;\n", id))
			}
		}
	}

	return sb.String()
}

func sliceID(kind domain.SliceKind, name string) string {
	if kind == domain.SliceCommand {
		return "cmd_" + sanitizeMermaidID(name)
	}
	return "view_" + sanitizeMermaidID(name)
}

func eventID(name string) string {
	return "evt_" + sanitizeMermaidID(name)
}

func ticks(ts []int) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = fmt.Sprintf("@%d", t)
	}
	return strings.Join(parts, ", ")
}

func label(s string) string {
	return strings.ReplaceAll(s, "\"", "#quot;")
}

func sanitizeMermaidID(id string) string {
	var sb strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	return sb.String()
}
