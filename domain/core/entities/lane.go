package entities

import "journeymap/domain/layout"

// Phase is a time lane of the journey grid
type Phase struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Order    int    `json:"order"`
	Duration string `json:"duration,omitempty"`
}

// Lane returns what the layout engine needs to size the phase
func (p Phase) Lane() layout.Lane {
	return layout.Lane{Name: p.Name, Order: p.Order}
}

// Context is a space lane of the journey grid
type Context struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Order       int    `json:"order"`
	Color       string `json:"color,omitempty"`
}

// Lane returns what the layout engine needs to size the context
func (c Context) Lane() layout.Lane {
	return layout.Lane{Name: c.Name, Description: c.Description, Order: c.Order}
}

// PhaseLanes converts phases for the layout engine
func PhaseLanes(phases []Phase) []layout.Lane {
	out := make([]layout.Lane, len(phases))
	for i, p := range phases {
		out[i] = p.Lane()
	}
	return out
}

// ContextLanes converts contexts for the layout engine
func ContextLanes(contexts []Context) []layout.Lane {
	out := make([]layout.Lane, len(contexts))
	for i, c := range contexts {
		out[i] = c.Lane()
	}
	return out
}
