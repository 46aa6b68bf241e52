package game

// Projector computes a GameSession from an Event sequence.
type Projector struct{}

// NewProjector creates a standard projector.
func NewProjector() *Projector {
	return &Projector{}
}

// Build folds the events over a clean session. Replaying the full log must
// produce exactly the live in-memory projection.
func (p *Projector) Build(events []Event) (*GameSession, error) {
	s := NewGameSession("")
	for _, evt := range events {
		if err := evt.Apply(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}
