package services

// strategy is one way of producing a value; ok=false means "nothing here, try the next one".
type strategy[T any] struct {
	name string
	run  func() (T, bool)
}

// firstSuccessful runs strategies in order and returns the first value produced,
// along with the name of the strategy that produced it.
func firstSuccessful[T any](strategies ...strategy[T]) (T, string, bool) {
	for _, s := range strategies {
		if value, ok := s.run(); ok {
			return value, s.name, true
		}
	}

	var zero T
	return zero, "", false
}
