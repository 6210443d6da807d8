package journal

import (
	"fmt"
	"time"

	"github.com/emberlog/emberlog/internal/rbac"
)

// Owner mutations. Every operation validates the full post-mutation state
// before committing to the aggregate; on failure the aggregate is left
// untouched, so a caller that persists only on success never exposes a
// partial write.

// HasPermission reports whether the owner's role grants perm. Pure; the
// role registry is process-wide immutable configuration.
func (o *Owner) HasPermission(resolver *rbac.Resolver, perm rbac.Permission) bool {
	return resolver.HasPermission(o.Role, perm)
}

// FindEmotion returns the emotion with the given id, tombstoned or not.
func (o *Owner) FindEmotion(id string) *Emotion {
	for i := range o.Emotions {
		if o.Emotions[i].ID == id {
			return &o.Emotions[i]
		}
	}
	return nil
}

// FindActiveDay returns the owner's active day for the date, if any.
func (o *Owner) FindActiveDay(date string) *Day {
	for i := range o.Days {
		if o.Days[i].Date == date && !o.Days[i].Deleted {
			return &o.Days[i]
		}
	}
	return nil
}

func (o *Owner) findDayByDate(date string) *Day {
	for i := range o.Days {
		if o.Days[i].Date == date {
			return &o.Days[i]
		}
	}
	return nil
}

// AddEmotion validates and appends a new emotion.
func (o *Owner) AddEmotion(e Emotion, now time.Time) error {
	if err := ValidateEmotionName(e.Name); err != nil {
		return ValidationErrors{{Field: "name", Err: err}}
	}
	if err := ValidateColor(e.Color); err != nil {
		return ValidationErrors{{Field: "color", Err: err}}
	}
	if err := CheckCapacity(CountActive(o.Emotions)+1, MaxActiveEmotions); err != nil {
		return err
	}
	if err := CheckUniqueness(e, o.Emotions); err != nil {
		return err
	}
	e.Deleted = false
	e.CreatedAt = now
	e.UpdatedAt = now
	o.Emotions = append(o.Emotions, e)
	o.UpdatedAt = now
	return nil
}

// UpdateEmotion applies name/color changes to an active emotion. The full
// check set runs against the post-mutation state: renaming onto another
// active emotion's name is rejected even though the record is not new.
func (o *Owner) UpdateEmotion(id string, name, color *string, now time.Time) error {
	current := o.FindEmotion(id)
	if current == nil || current.Deleted {
		return fmt.Errorf("%w: emotion %s", ErrNotFound, id)
	}

	updated := *current
	if name != nil {
		updated.Name = *name
	}
	if color != nil {
		updated.Color = *color
	}
	if err := ValidateEmotionName(updated.Name); err != nil {
		return ValidationErrors{{Field: "name", Err: err}}
	}
	if err := ValidateColor(updated.Color); err != nil {
		return ValidationErrors{{Field: "color", Err: err}}
	}
	if err := CheckUniqueness(updated, o.Emotions); err != nil {
		return err
	}

	updated.UpdatedAt = now
	*current = updated
	o.UpdatedAt = now
	return nil
}

// SoftDeleteEmotion tombstones the emotion. Deleting twice is a no-op,
// not an error; the entry is never removed so historical day references
// keep resolving.
func (o *Owner) SoftDeleteEmotion(id string, now time.Time) error {
	e := o.FindEmotion(id)
	if e == nil {
		return fmt.Errorf("%w: emotion %s", ErrNotFound, id)
	}
	if e.softDelete(now) {
		o.UpdatedAt = now
	}
	return nil
}

// AddDay validates and appends a new day.
func (o *Owner) AddDay(d Day, now time.Time) error {
	if err := ValidateDay(d, o.Emotions, o.Days, now, true); err != nil {
		return err
	}
	d.Deleted = false
	d.CreatedAt = now
	d.UpdatedAt = now
	o.Days = append(o.Days, d)
	o.UpdatedAt = now
	return nil
}

// UpdateDay applies changes to the active day at date. Date changes keep
// the day's identity, so updating a day's date to itself passes the
// uniqueness check.
func (o *Owner) UpdateDay(date string, newDate, description *string, emotions *[]string, now time.Time) error {
	current := o.FindActiveDay(date)
	if current == nil {
		return fmt.Errorf("%w: day %s", ErrNotFound, date)
	}

	updated := *current
	if newDate != nil {
		updated.Date = *newDate
	}
	if description != nil {
		updated.Description = *description
	}
	if emotions != nil {
		updated.Emotions = append([]string(nil), (*emotions)...)
	}
	if err := ValidateDay(updated, o.Emotions, o.Days, now, true); err != nil {
		return err
	}

	updated.UpdatedAt = now
	*current = updated
	o.UpdatedAt = now
	return nil
}

// SoftDeleteDay tombstones the active day at date. A repeat delete against
// an already-tombstoned date is a no-op.
func (o *Owner) SoftDeleteDay(date string, now time.Time) error {
	if d := o.FindActiveDay(date); d != nil {
		d.softDelete(now)
		o.UpdatedAt = now
		return nil
	}
	if o.findDayByDate(date) != nil {
		return nil
	}
	return fmt.Errorf("%w: day %s", ErrNotFound, date)
}

// Validate re-checks every invariant over the whole aggregate. Used by the
// integrity scan; a healthy document returns nil.
func (o *Owner) Validate(now time.Time) error {
	var errs ValidationErrors

	if err := CheckCapacity(CountActive(o.Emotions), MaxActiveEmotions); err != nil {
		errs = append(errs, FieldError{Field: "emotions", Err: err})
	}
	for _, e := range o.Emotions {
		if e.Deleted {
			continue
		}
		if err := ValidateEmotionName(e.Name); err != nil {
			errs = append(errs, FieldError{Field: "emotions." + e.ID, Err: err})
		}
		if err := ValidateColor(e.Color); err != nil {
			errs = append(errs, FieldError{Field: "emotions." + e.ID, Err: err})
		}
		if err := CheckUniqueness(e, o.Emotions); err != nil {
			errs = append(errs, FieldError{Field: "emotions." + e.ID, Err: err})
		}
	}
	for _, d := range o.Days {
		if d.Deleted {
			continue
		}
		// Historical days may reference emotions tombstoned after the fact;
		// that is exactly what tombstones preserve. Only dangling ids are
		// violations here, unlike at mutation time.
		if len(d.Emotions) == 0 {
			errs = append(errs, FieldError{Field: "days." + d.Date, Err: ErrNoEmotions})
		}
		seen := make(map[string]bool, len(d.Emotions))
		for _, id := range d.Emotions {
			if seen[id] {
				errs = append(errs, FieldError{Field: "days." + d.Date, Err: fmt.Errorf("%w: %s", ErrDuplicateEmotionRef, id)})
			}
			seen[id] = true
			if o.FindEmotion(id) == nil {
				errs = append(errs, FieldError{Field: "days." + d.Date, Err: fmt.Errorf("%w: %s", ErrUnknownOrDeletedEmotion, id)})
			}
		}
		if err := ValidateDate(d.Date, now); err != nil {
			errs = append(errs, FieldError{Field: "days." + d.Date, Err: err})
		}
		if err := CheckUniqueness(d, o.Days); err != nil {
			errs = append(errs, FieldError{Field: "days." + d.Date, Err: err})
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
