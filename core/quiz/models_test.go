package quiz

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQuiz_IsActive(t *testing.T) {
	created := time.Date(2021, 3, 1, 10, 0, 0, 0, time.UTC)
	q := Quiz{ID: 1, CreatedAt: created}

	tests := []struct {
		name     string
		now      time.Time
		want     bool
		wantMins int
	}{
		{name: "at creation", now: created, want: true, wantMins: 15},
		{name: "before creation", now: created.Add(-time.Minute), want: true, wantMins: 16},
		{name: "mid window", now: created.Add(3*time.Minute + 30*time.Second), want: true, wantMins: 11},
		{name: "last nanosecond", now: created.Add(ActiveWindow - time.Nanosecond), want: true, wantMins: 0},
		{name: "last minute", now: created.Add(14*time.Minute + time.Second), want: true, wantMins: 0},
		{name: "at expiry", now: created.Add(ActiveWindow), want: false},
		{name: "after expiry", now: created.Add(time.Hour), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, q.IsActive(tt.now))
			assert.Equal(t, tt.wantMins, q.MinutesLeft(tt.now))
		})
	}
}

func TestQuiz_IsActive_monotonic(t *testing.T) {
	created := time.Date(2021, 3, 1, 10, 0, 0, 0, time.UTC)
	q := Quiz{CreatedAt: created}

	wasActive := true
	for d := -time.Minute; d <= 20*time.Minute; d += 7 * time.Second {
		active := q.IsActive(created.Add(d))
		if active {
			assert.True(t, wasActive, "quiz became active again at %v", d)
		}
		wasActive = active
	}
	assert.False(t, wasActive)
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "quiz1", title(1))
	assert.Equal(t, "quiz12", title(12))
}
