package journal

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// DateLayout is the canonical day format.
const DateLayout = "2006-01-02"

// epochFloor is the earliest date a day may carry.
var epochFloor = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

var colorPattern = regexp.MustCompile(`(?i)^#([0-9a-f]{3}){1,2}$`)

// ValidateEmotionName checks the name is present and within the rune bound.
func ValidateEmotionName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name required", ErrInvalidName)
	}
	if utf8.RuneCountInString(name) > MaxEmotionName {
		return fmt.Errorf("%w: at most %d characters", ErrInvalidName, MaxEmotionName)
	}
	return nil
}

// ValidateColor checks a 3- or 6-digit hex color, case-insensitive.
func ValidateColor(color string) error {
	if !colorPattern.MatchString(color) {
		return fmt.Errorf("%w: %q", ErrInvalidColor, color)
	}
	return nil
}

// ValidateDate checks syntax, calendar validity, and the permitted window
// [2000-01-01, today]. "2023-02-30" and tomorrow both fail.
func ValidateDate(date string, now time.Time) error {
	parsed, err := time.ParseInLocation(DateLayout, date, time.UTC)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	// Reject non-canonical spellings such as "2023-2-3".
	if parsed.Format(DateLayout) != date {
		return fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	if parsed.Before(epochFloor) {
		return fmt.Errorf("%w: %s before %s", ErrInvalidDate, date, epochFloor.Format(DateLayout))
	}
	y, m, d := now.UTC().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if parsed.After(today) {
		return fmt.Errorf("%w: %s is in the future", ErrInvalidDate, date)
	}
	return nil
}

// ValidateDescription bounds the free-text day description.
func ValidateDescription(desc string) error {
	if utf8.RuneCountInString(desc) > MaxDayDescription {
		return fmt.Errorf("%w: at most %d characters", ErrDescriptionTooLong, MaxDayDescription)
	}
	return nil
}
