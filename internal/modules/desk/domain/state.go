package domain

import "strconv"

// Field store keys. Panels are numbered from 1.
const (
	KeyMaterialName    = "material.name"
	KeyMaterialTotal   = "material.total"
	KeyMaterialCurrent = "material.current"
	KeyNotes           = "notes"
)

// Record store collections.
const (
	CollectionTodos  = "todos"
	CollectionImages = "images"
)

func SchoolNameKey(panel int) string {
	return "school." + strconv.Itoa(panel) + ".name"
}

func SchoolDateKey(panel int) string {
	return "school." + strconv.Itoa(panel) + ".date"
}

// State is the in-memory mirror of everything persisted.
type State struct {
	Schools  []SchoolTarget
	Todos    TodoList
	Material MaterialProgress
	Images   []ReviewImage
	Notes    string
}

func NewState(panels int) State {
	return State{Schools: make([]SchoolTarget, panels)}
}

// Primary is the panel that drives the reading pace.
func (s State) Primary() SchoolTarget {
	if len(s.Schools) == 0 {
		return SchoolTarget{}
	}
	return s.Schools[0]
}
