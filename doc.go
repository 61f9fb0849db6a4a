/*
Package eventmodel builds slice views from event models.

An event model is a timeline of events, state views, actors and commands placed on
integer ticks. The engine groups the timeline into slices, one per distinct state
view or command name, and derives a Given/When/Then scenario for each slice from the
neighbouring events. Author-declared specifications are merged into the matching
slice.

# Usage

Models are read from a Loam repository by default (Markdown frontmatter, JSON or YAML
documents). A custom loader can be injected with WithLoader.

	eng, err := eventmodel.New("./models")
	if err != nil {
		log.Fatal(err)
	}

	view, err := eng.Build(ctx, "orders")
	if err != nil {
		log.Fatal(err)
	}

	for _, s := range view.Slices {
		fmt.Println(s.Kind, s.Name, s.Ticks)
	}

Built views are cached until Invalidate is called or Watch reports a change to the
model. The returned views are shared and must be treated as read-only.

# Packages

  - pkg/domain: the timeline elements and the slice view types.
  - pkg/slices: the pure slice builder.
  - pkg/ports: loader and exporter interfaces.
  - pkg/adapters: Loam, file, memory, Redis, SQLite, HTTP and MCP adapters.
  - pkg/export: artifact encoding and exporter fan-out.
*/
package eventmodel
