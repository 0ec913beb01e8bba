package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJournal_ComputeMetrics(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		words       int
		readingTime int
	}{
		{"empty", "", 0, 0},
		{"short", "Today   I walked\nby the river", 6, 1},
		{"exactly one minute", repeatWords(200), 200, 1},
		{"just over", repeatWords(201), 201, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := &Journal{Content: tt.content}
			j.ComputeMetrics()
			assert.Equal(t, tt.words, j.WordCount)
			assert.Equal(t, tt.readingTime, j.ReadingTime)
		})
	}
}

func TestJournal_MoodEmoji(t *testing.T) {
	assert.Equal(t, "🙏", (&Journal{Mood: "grateful"}).MoodEmoji())
	assert.Equal(t, "😐", (&Journal{Mood: "unknown"}).MoodEmoji())
}

func TestMoodTables_CoverEveryMood(t *testing.T) {
	for _, m := range Moods {
		_, hasEmoji := MoodEmoji[m]
		_, hasValue := MoodValue[m]
		assert.True(t, hasEmoji, m)
		assert.True(t, hasValue, m)
	}
}

func TestUser_Profile(t *testing.T) {
	u := &User{Name: "Ada", Email: "ada@example.com", Password: "hash", Role: RoleUser}
	p := u.Profile()
	assert.Equal(t, "Ada", p.Name)
	assert.NotNil(t, p.WellnessGoals)
}

func repeatWords(n int) string {
	b := make([]byte, 0, n*2)
	for i := 0; i < n; i++ {
		if i > 0 {
			b = append(b, ' ')
		}
		b = append(b, 'w')
	}
	return string(b)
}
