package vectorstore

import (
	"github.com/sirupsen/logrus"
)

// Store owns the four factor matrices of a loaded snapshot. It is built once
// and never mutated, so it is safe for concurrent readers.
type Store struct {
	userCF      *Matrix
	itemCF      *Matrix
	userContent *Matrix
	itemContent *Matrix
	swapped     bool
}

// ShouldSwapCF reports whether the CF matrices were loaded with their roles
// reversed. The heuristic assumes the catalog is larger than the user base
// of the training window: a "user" matrix with fewer rows than the "item"
// matrix is taken as a swap. It is a heuristic, not a guarantee.
func ShouldSwapCF(userRows, itemRows int) bool {
	return userRows < itemRows
}

// New assembles a Store, correcting swapped CF matrices. The swap decision is
// logged and available through Swapped.
func New(userCF, itemCF, userContent, itemContent *Matrix, logger *logrus.Logger) *Store {
	s := &Store{
		userCF:      userCF,
		itemCF:      itemCF,
		userContent: userContent,
		itemContent: itemContent,
	}

	if ShouldSwapCF(userCF.Rows(), itemCF.Rows()) {
		s.userCF, s.itemCF = itemCF, userCF
		s.swapped = true

		if logger != nil {
			logger.WithFields(logrus.Fields{
				"declared_user_rows": userCF.Rows(),
				"declared_item_rows": itemCF.Rows(),
			}).Warn("Detected swapped CF factor matrices, auto-correcting")
		}
	}

	return s
}

// UserCF returns the user collaborative-filtering factors.
func (s *Store) UserCF() *Matrix { return s.userCF }

// ItemCF returns the item collaborative-filtering factors.
func (s *Store) ItemCF() *Matrix { return s.itemCF }

// UserContent returns the user content profiles.
func (s *Store) UserContent() *Matrix { return s.userContent }

// ItemContent returns the item content vectors.
func (s *Store) ItemContent() *Matrix { return s.itemContent }

// Swapped reports whether the CF matrices were swapped at load time.
func (s *Store) Swapped() bool { return s.swapped }

// InRange reports whether idx addresses a row of m.
func InRange(m *Matrix, idx int) bool {
	return idx >= 0 && idx < m.Rows()
}

// RowOrZero returns row idx of m, or a zero vector of fallbackWidth when idx
// is out of range. It never returns nil.
func RowOrZero(m *Matrix, idx, fallbackWidth int) []float64 {
	if InRange(m, idx) {
		return m.Row(idx)
	}
	if fallbackWidth < 0 {
		fallbackWidth = 0
	}
	return make([]float64, fallbackWidth)
}

// CommonRowCount is the number of rows two matrices can be iterated over in
// lock-step.
func CommonRowCount(a, b *Matrix) int {
	return min(a.Rows(), b.Rows())
}
