/*
Package slices builds the slice view of an event model.

Build takes a model (timeline plus optional specifications) and produces the deduplicated,
cross-referenced, scenario-enriched slice collection consumed by every renderer and exporter.
The transform runs in four stages, each reading only the output of the previous one:

	Timeline -> aggregate -> synthesize (state / command) -> merge specifications -> View

Build is pure: it performs no I/O, never mutates its input and holds no state between calls,
so it is safe to call concurrently on independent models. Referential inconsistencies are not
errors; a sourcedFrom name with no matching event becomes an EventRef with no ticks and a
specification matching no slice is dropped.

Tie-breaks are explicit:

  - Occurrences are processed by ascending tick; equal ticks keep timeline array order.
  - A slice's Example is the first non-empty payload in that order.
  - The event preceding a state occurrence is the earliest qualifying tick, then the earliest array position.
*/
package slices
