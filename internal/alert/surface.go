package alert

// Surface is the visual element host the manager drives. Implementations
// must keep every call quick; the manager invokes them from its control
// goroutine. Every Attach is paired with exactly one Detach.
type Surface interface {
	// Attach creates the visual element for the view. An error means the
	// platform rejected the element; the alert is still persisted.
	Attach(view View) error
	// Update re-renders an already-attached view (detail expansion).
	Update(view View)
	// Collapse plays the short dismiss animation before detach.
	Collapse(eventID string)
	// Detach destroys the visual element.
	Detach(eventID string)
}

// NopSurface discards all surface operations. Used when no UI shell is
// connected and in tests that only exercise slot bookkeeping.
type NopSurface struct{}

func (NopSurface) Attach(View) error { return nil }
func (NopSurface) Update(View)       {}
func (NopSurface) Collapse(string)   {}
func (NopSurface) Detach(string)     {}
