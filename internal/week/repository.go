package week

// Repository stores weeks by key and creates them on first access.
type Repository struct {
	weeks map[Key]Week
}

func NewRepository() *Repository {
	return &Repository{weeks: map[Key]Week{}}
}

// RepositoryFrom copies weeks into a new repository. Callers validate first.
func RepositoryFrom(weeks map[Key]Week) *Repository {
	r := NewRepository()
	for k, w := range weeks {
		r.weeks[k] = w.Clone()
	}
	return r
}

// Get returns the stored week for k, creating an empty one the first time.
// The returned week is live: mutating it mutates the repository.
func (r *Repository) Get(k Key) Week {
	w, ok := r.weeks[k]
	if !ok {
		w = New()
		r.weeks[k] = w
	}
	return w
}

func (r *Repository) Lookup(k Key) (Week, bool) {
	w, ok := r.weeks[k]
	return w, ok
}

func (r *Repository) Put(k Key, w Week) {
	r.weeks[k] = w
}

// Len counts stored weeks, including empty ones created by viewing them.
func (r *Repository) Len() int {
	return len(r.weeks)
}

// Weeks returns a deep copy of every stored week.
func (r *Repository) Weeks() map[Key]Week {
	out := make(map[Key]Week, len(r.weeks))
	for k, w := range r.weeks {
		out[k] = w.Clone()
	}
	return out
}

// Count is the number of tasks across all weeks.
func (r *Repository) Count() int {
	n := 0
	for _, w := range r.weeks {
		n += w.Count()
	}
	return n
}
