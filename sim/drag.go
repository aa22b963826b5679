package sim

// DragState is either Idle or Dragging one entity.
type DragState struct {
	dragging bool
	target   int
}

// Idle is the state with no entity under manipulation.
func Idle() DragState {
	return DragState{}
}

// Dragging is the state holding the entity with the given id.
func Dragging(id int) DragState {
	return DragState{dragging: true, target: id}
}

// Target returns the dragged entity id, if any.
func (d DragState) Target() (int, bool) {
	return d.target, d.dragging
}

func (d DragState) IsDragging() bool {
	return d.dragging
}

func (d DragState) String() string {
	if d.dragging {
		return "dragging"
	}
	return "idle"
}
