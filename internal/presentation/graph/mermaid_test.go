package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/eventmodel/internal/presentation/graph"
	"github.com/aretw0/eventmodel/pkg/domain"
	"github.com/aretw0/eventmodel/pkg/slices"
)

func ordersView() *domain.View {
	return slices.Build(&domain.Model{Timeline: domain.Timeline{
		domain.Command{Name: "Place Order", Tick: 1},
		domain.Event{Name: "OrderPlaced", Tick: 2, ProducedBy: &domain.ProducerKey{Command: "Place Order", Tick: 1}},
		domain.Event{Name: "OrderPlaced", Tick: 5},
		domain.StateView{Name: "Pending", Tick: 6, SourcedFrom: []string{"OrderPlaced", "OrderVoided"}},
		domain.Actor{Name: "Clerk", Tick: 7, ReadsView: "Pending", SendsCommand: "Place Order"},
	}})
}

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		view     *domain.View
		overlay  *graph.GraphOverlay
		contains []string
		excludes []string
	}{
		{
			name: "Semantic Shapes",
			view: ordersView(),
			contains: []string{
				"cmd_Place_Order[[\"Place Order\"]]:::command",
				"view_Pending[/\"Pending\"/]:::view",
				"evt_OrderPlaced[\"OrderPlaced\"]:::event",
				"actor_Clerk((\"Clerk\")):::actor",
			},
		},
		{
			name: "Edges",
			view: ordersView(),
			contains: []string{
				"cmd_Place_Order --> evt_OrderPlaced",
				"evt_OrderPlaced -- \"@2, @5\" --> view_Pending",
				"view_Pending -.-> actor_Clerk",
				"actor_Clerk --> cmd_Place_Order",
			},
		},
		{
			name: "Dangling Reference",
			view: ordersView(),
			contains: []string{
				"missing_OrderVoided[\"OrderVoided\"]:::missing",
				"missing_OrderVoided -.-> view_Pending",
				"classDef missing",
			},
		},
		{
			name: "Overlay",
			view: ordersView(),
			overlay: &graph.GraphOverlay{
				Highlighted: []domain.SliceKey{{Kind: domain.SliceState, Name: "Pending"}, {Kind: domain.SliceState, Name: "Pending"}},
				Focus:       &domain.SliceKey{Kind: domain.SliceCommand, Name: "Place Order"},
			},
			contains: []string{
				"class view_Pending highlighted;",
				"class cmd_Place_Order focus;",
			},
		},
		{
			name:     "Empty View",
			view:     &domain.View{},
			contains: []string{"graph LR"},
			excludes: []string{"classDef missing", "Overlay Styles"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := graph.GenerateMermaid(tt.view, tt.overlay)
			for _, c := range tt.contains {
				if !strings.Contains(output, c) {
					t.Errorf("expected output to contain %q, but it didn't.\nOutput:\n%s", c, output)
				}
			}
			for _, c := range tt.excludes {
				if strings.Contains(output, c) {
					t.Errorf("expected output not to contain %q.\nOutput:\n%s", c, output)
				}
			}
		})
	}
}

func TestGenerateMermaid_NodesDeclaredOnce(t *testing.T) {
	output := graph.GenerateMermaid(ordersView(), nil)
	if n := strings.Count(output, "evt_OrderPlaced[\""); n != 1 {
		t.Errorf("expected event node declared once, got %d\n%s", n, output)
	}
	if n := strings.Count(output, "view_Pending -.-> actor_Clerk"); n != 1 {
		t.Errorf("expected a single read edge, got %d", n)
	}
}

func TestGenerateMermaid_Nil(t *testing.T) {
	if got := graph.GenerateMermaid(nil, nil); got != "graph LR\n" {
		t.Errorf("unexpected output for nil view: %q", got)
	}
}
