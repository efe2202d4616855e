package classify

// Option applies a configuration option to a Rules value under construction.
type Option func(*Rules)

// WithRejectLists sets the name prefixes of lists excluded from accounting.
// Blank names are dropped.
func WithRejectLists(names []string) Option {
	return func(r *Rules) {
		for _, name := range names {
			if name != "" {
				r.reject = append(r.reject, name)
			}
		}
	}
}

// WithFinishLists sets the exact names of lists whose entry counts as
// finished work. Blank names are dropped.
func WithFinishLists(names []string) Option {
	return func(r *Rules) {
		for _, name := range names {
			if name != "" {
				r.finish[name] = struct{}{}
			}
		}
	}
}
