package richtext

// Root is the top-level structure of the serialized editor content. The
// editing engine treats the blob as opaque; this package only exists to turn
// it into readable text for list previews and notification messages.
type Root struct {
	Root Node `json:"root"`
}

// Node is any node in the serialized tree.
type Node struct {
	Type     string `json:"type"`
	Version  int    `json:"version"`
	Children []Node `json:"children,omitempty"`

	// Text nodes
	Text   string `json:"text,omitempty"`
	Mode   string `json:"mode,omitempty"`
	Detail int    `json:"detail,omitempty"`

	// Block nodes
	Direction string `json:"direction,omitempty"`
	Indent    int    `json:"indent,omitempty"`
	Tag       string `json:"tag,omitempty"`

	// Lists
	ListType string `json:"listType,omitempty"` // check, bullet, number
	Start    int    `json:"start,omitempty"`
	Checked  bool   `json:"checked,omitempty"`
	Value    int    `json:"value,omitempty"`

	// Links
	URL string `json:"url,omitempty"`
}
