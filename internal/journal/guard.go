package journal

import "fmt"

// The collection guard enforces the shared rules of an owner's embedded
// collections: capacity over active members, key uniqueness among active
// members, and soft deletion instead of physical removal. Both Emotion
// (keyed by name) and Day (keyed by date) satisfy the member contract.
type member interface {
	memberID() string
	memberKey() string
	isActive() bool
}

// CountActive returns the number of non-tombstoned items.
func CountActive[T member](items []T) int {
	n := 0
	for _, item := range items {
		if item.isActive() {
			n++
		}
	}
	return n
}

// CheckCapacity fails when the post-mutation active count would exceed max.
func CheckCapacity(activeCount, max int) error {
	if activeCount > max {
		return fmt.Errorf("%w: %d > %d", ErrCapacityExceeded, activeCount, max)
	}
	return nil
}

// CheckUniqueness fails when the candidate's key collides with an active
// sibling other than the candidate itself. Excluding the candidate by id
// lets an update-in-place keep its own key; tombstoned siblings never
// participate.
func CheckUniqueness[T member](candidate T, siblings []T) error {
	for _, sibling := range siblings {
		if sibling.memberID() == candidate.memberID() {
			continue
		}
		if !sibling.isActive() {
			continue
		}
		if sibling.memberKey() == candidate.memberKey() {
			return fmt.Errorf("%w: %q", ErrDuplicateKey, candidate.memberKey())
		}
	}
	return nil
}
