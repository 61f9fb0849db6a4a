/*
Package ports defines the driven ports (interfaces) for the eventmodel engine.

These interfaces decouple slice building from where models come from and where
the resulting slice collections go.

# Key Interfaces

  - ModelLoader: Retrieves raw model documents (e.g., from a directory, Loam or Memory).
  - ModelParser: Turns a raw document into a domain.Model (schema validation included).
  - Watchable: Notifies about backend changes so views can be rebuilt.
  - Exporter: Publishes a built slice collection to a sink (file, Redis, SQLite).
*/
package ports
