/*
Package domain contains the core models of an event model and of the slice view derived from it.

It defines the timeline elements an author writes (events, state views, actors and commands), the
author-declared specifications, and the deduplicated slice collection every renderer and exporter
consumes. This package is kept pure and free of external dependencies like I/O or persistence.

# Key Entities

  - Element: One typed occurrence on the timeline (Event, StateView, Actor or Command).
  - Model: The loaded description (timeline plus optional specifications).
  - Slice: The aggregate of every occurrence of one named state view or command.
  - EventRef: A named event together with every tick at which it occurs.
  - Scenario: A Given/When/Then walkthrough, either synthesized from the timeline or written by the author.
  - View: The builder output (slices plus pass-through actors).
*/
package domain
