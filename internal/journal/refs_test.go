package journal

import (
	"errors"
	"testing"
)

func refFixture() ([]Emotion, []Day) {
	emotions := []Emotion{
		{ID: "e1", Name: "Joy", Color: "#ffcc00"},
		{ID: "e2", Name: "Calm", Color: "#00ccff"},
		{ID: "e3", Name: "Anger", Color: "#cc0000", Deleted: true},
	}
	days := []Day{
		{ID: "d1", Date: "2024-03-01", Emotions: []string{"e1"}},
		{ID: "d2", Date: "2024-03-02", Emotions: []string{"e2"}, Deleted: true},
	}
	return emotions, days
}

func TestValidateDayHappyPath(t *testing.T) {
	emotions, days := refFixture()
	day := Day{ID: "d9", Date: "2024-03-10", Emotions: []string{"e1", "e2"}}
	if err := ValidateDay(day, emotions, days, testNow, false); err != nil {
		t.Fatalf("expected valid day, got %v", err)
	}
}

func TestValidateDayRequiresEmotions(t *testing.T) {
	emotions, days := refFixture()
	day := Day{ID: "d9", Date: "2024-03-10"}
	if err := ValidateDay(day, emotions, days, testNow, false); !errors.Is(err, ErrNoEmotions) {
		t.Fatalf("expected ErrNoEmotions, got %v", err)
	}
}

func TestValidateDayRejectsDuplicateRefs(t *testing.T) {
	emotions, days := refFixture()
	day := Day{ID: "d9", Date: "2024-03-10", Emotions: []string{"e1", "e1"}}
	if err := ValidateDay(day, emotions, days, testNow, false); !errors.Is(err, ErrDuplicateEmotionRef) {
		t.Fatalf("expected ErrDuplicateEmotionRef, got %v", err)
	}
}

func TestValidateDayRejectsUnknownAndTombstonedRefs(t *testing.T) {
	emotions, days := refFixture()

	day := Day{ID: "d9", Date: "2024-03-10", Emotions: []string{"missing"}}
	if err := ValidateDay(day, emotions, days, testNow, false); !errors.Is(err, ErrUnknownOrDeletedEmotion) {
		t.Fatalf("expected unknown ref to fail, got %v", err)
	}

	day.Emotions = []string{"e3"}
	if err := ValidateDay(day, emotions, days, testNow, false); !errors.Is(err, ErrUnknownOrDeletedEmotion) {
		t.Fatalf("expected tombstoned ref to fail, got %v", err)
	}
}

func TestValidateDayRejectsDuplicateDate(t *testing.T) {
	emotions, days := refFixture()
	day := Day{ID: "d9", Date: "2024-03-01", Emotions: []string{"e1"}}
	if err := ValidateDay(day, emotions, days, testNow, false); !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestValidateDayAllowsTombstonedDateReuse(t *testing.T) {
	emotions, days := refFixture()
	day := Day{ID: "d9", Date: "2024-03-02", Emotions: []string{"e1"}}
	if err := ValidateDay(day, emotions, days, testNow, false); err != nil {
		t.Fatalf("tombstoned day must not block date reuse, got %v", err)
	}
}

func TestValidateDaySelfUpdateKeepsDate(t *testing.T) {
	emotions, days := refFixture()
	day := Day{ID: "d1", Date: "2024-03-01", Emotions: []string{"e1", "e2"}}
	if err := ValidateDay(day, emotions, days, testNow, false); err != nil {
		t.Fatalf("a day updating onto its own date must pass, got %v", err)
	}
}

func TestValidateDayAggregatesViolations(t *testing.T) {
	emotions, days := refFixture()
	day := Day{ID: "d9", Date: "2023-02-30", Emotions: []string{"missing", "missing"}}

	err := ValidateDay(day, emotions, days, testNow, true)
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if len(verrs) < 3 {
		t.Fatalf("expected duplicate ref, unknown ref, and date violations, got %v", verrs)
	}
	if !errors.Is(err, ErrInvalidDate) || !errors.Is(err, ErrUnknownOrDeletedEmotion) || !errors.Is(err, ErrDuplicateEmotionRef) {
		t.Fatalf("aggregate must expose each violation, got %v", err)
	}
}
