package repository

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithMaxFestivals bounds the number of festivals. Updates of existing
// festivals are always accepted. n <= 0 means unbounded.
func WithMaxFestivals(n int) Option {
	return func(s *MemoryStore) {
		s.maxFestivals = n
	}
}
