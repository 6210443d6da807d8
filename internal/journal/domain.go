package journal

import "time"

// Collection limits enforced by the guard.
const (
	// MaxActiveEmotions bounds the active emotion count per owner.
	MaxActiveEmotions = 1000
	// MaxEmotionName bounds emotion names, in runes.
	MaxEmotionName = 16
	// MaxDayDescription bounds the free-text day description.
	MaxDayDescription = 2000
)

// Emotion is a tagged, colored label owned by exactly one journal owner.
// Names are unique among the owner's active emotions; tombstoned entries
// are kept so historical day references stay resolvable.
type Emotion struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Deleted   bool      `json:"deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Day attaches emotion references to a calendar date. References are plain
// emotion ids resolved against the owner's collection, never live links.
type Day struct {
	ID          string    `json:"id"`
	Date        string    `json:"date"` // YYYY-MM-DD
	Description string    `json:"description,omitempty"`
	Emotions    []string  `json:"emotions"`
	Deleted     bool      `json:"deleted"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Owner is the user aggregate. It exclusively owns its embedded emotion
// and day collections; Version is the monotonic stamp used for optimistic
// concurrency on persist.
type Owner struct {
	ID           string
	Email        string
	PasswordHash string
	Role         string
	Deleted      bool
	Version      int64
	Emotions     []Emotion
	Days         []Day
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Tombstone transitions on the embedded items. Active -> Deleted is
// terminal; repeating it is a no-op and reports false.

func (e *Emotion) softDelete(now time.Time) bool {
	if e.Deleted {
		return false
	}
	e.Deleted = true
	e.UpdatedAt = now
	return true
}

func (d *Day) softDelete(now time.Time) bool {
	if d.Deleted {
		return false
	}
	d.Deleted = true
	d.UpdatedAt = now
	return true
}

// guard member contract (see guard.go).

func (e Emotion) memberID() string { return e.ID }
func (e Emotion) memberKey() string { return e.Name }
func (e Emotion) isActive() bool   { return !e.Deleted }

func (d Day) memberID() string { return d.ID }
func (d Day) memberKey() string { return d.Date }
func (d Day) isActive() bool   { return !d.Deleted }
