package journal

import (
	"fmt"
	"time"
)

// ValidateDay checks a day's referential and date invariants against the
// owner's collections. Checks run in order and stop at the first failure;
// with aggregate set, every violation is collected into ValidationErrors
// so callers can report them all at once.
//
// The day itself is excluded from the date-uniqueness check by id, so an
// update keeping its own date passes.
func ValidateDay(day Day, emotions []Emotion, days []Day, now time.Time, aggregate bool) error {
	var errs ValidationErrors
	fail := func(field string, err error) {
		errs = append(errs, FieldError{Field: field, Err: err})
	}

	if len(day.Emotions) == 0 {
		fail("emotions", ErrNoEmotions)
		if !aggregate {
			return errs
		}
	}

	seen := make(map[string]bool, len(day.Emotions))
	for _, id := range day.Emotions {
		if seen[id] {
			fail("emotions", fmt.Errorf("%w: %s", ErrDuplicateEmotionRef, id))
			if !aggregate {
				return errs
			}
			continue
		}
		seen[id] = true
	}

	for _, id := range day.Emotions {
		if !ownsActiveEmotion(emotions, id) {
			fail("emotions", fmt.Errorf("%w: %s", ErrUnknownOrDeletedEmotion, id))
			if !aggregate {
				return errs
			}
		}
	}

	if err := ValidateDate(day.Date, now); err != nil {
		fail("date", err)
		if !aggregate {
			return errs
		}
	}

	if err := ValidateDescription(day.Description); err != nil {
		fail("description", err)
		if !aggregate {
			return errs
		}
	}

	if err := CheckUniqueness(day, days); err != nil {
		fail("date", err)
		if !aggregate {
			return errs
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ownsActiveEmotion reports whether id resolves to a non-tombstoned
// emotion in the owner's collection. Ids of other owners fail here by
// construction, since only the owner's own collection is consulted.
func ownsActiveEmotion(emotions []Emotion, id string) bool {
	for i := range emotions {
		if emotions[i].ID == id {
			return !emotions[i].Deleted
		}
	}
	return false
}
