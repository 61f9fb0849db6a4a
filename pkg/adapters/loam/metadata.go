package loam

// ModelMetadata represents an event model document stored in a Loam repository.
// It uses "mapstructure" tags to match standard Frontmatter/YAML keys.
// Timeline and specification entries stay generic; the compiler decodes them by type.
type ModelMetadata struct {
	ID             string `json:"id" mapstructure:"id"`
	Name           string `json:"name" mapstructure:"name"`
	Timeline       []any  `json:"timeline" mapstructure:"timeline"`
	Specifications []any  `json:"specifications" mapstructure:"specifications"`
}
