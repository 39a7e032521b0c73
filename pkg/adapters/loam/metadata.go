package loam

// NodeMetadata represents the header/metadata of a GenSON node document.
// It uses "mapstructure" tags to match standard Frontmatter/YAML keys.
// Text and slot fields stay untyped; they are compiled by package schema.
type NodeMetadata struct {
	ID    string `json:"id" mapstructure:"id"`
	Title any    `json:"title" mapstructure:"title"`
	Line  any    `json:"line" mapstructure:"line"`

	// Prop holds the node's inheritable properties.
	Prop map[string]any `json:"prop" mapstructure:"prop"`

	// Slot describes the children; Entry is its legacy alias.
	Slot  any `json:"slot" mapstructure:"slot"`
	Entry any `json:"entry" mapstructure:"entry"`
}
