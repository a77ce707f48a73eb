package interactions

// Index maps a user id to the item ids they interacted with, oldest first.
// It is populated through a Builder and read-only afterwards.
type Index struct {
	byUser map[string][]string
	total  int
}

// Builder accumulates interactions in insertion order.
type Builder struct {
	byUser map[string][]string
	total  int
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{byUser: make(map[string][]string)}
}

// Add appends an interaction. Empty ids are ignored.
func (b *Builder) Add(userID, itemID string) {
	if userID == "" || itemID == "" {
		return
	}
	b.byUser[userID] = append(b.byUser[userID], itemID)
	b.total++
}

// Build freezes the accumulated interactions into an Index. The builder is
// reset, so later calls to Add start a new, independent index.
func (b *Builder) Build() *Index {
	idx := &Index{byUser: b.byUser, total: b.total}
	b.byUser = make(map[string][]string)
	b.total = 0
	return idx
}

// Empty returns an index with no interactions.
func Empty() *Index {
	return &Index{byUser: map[string][]string{}}
}

// History returns the user's interactions, oldest first. The returned slice
// must not be modified.
func (x *Index) History(userID string) []string {
	if x == nil {
		return nil
	}
	return x.byUser[userID]
}

// Seed returns the user's oldest recorded interaction.
func (x *Index) Seed(userID string) (string, bool) {
	history := x.History(userID)
	if len(history) == 0 {
		return "", false
	}
	return history[0], true
}

// UserCount returns the number of users with at least one interaction.
func (x *Index) UserCount() int {
	if x == nil {
		return 0
	}
	return len(x.byUser)
}

// Total returns the number of recorded interactions.
func (x *Index) Total() int {
	if x == nil {
		return 0
	}
	return x.total
}
