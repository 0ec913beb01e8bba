package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/anonto42/webapps/backend/internal/mindspace/models"
)

// ExportFilename names an admin export download.
func ExportFilename(kind, period, format string, now time.Time) string {
	return fmt.Sprintf("mindspace-%s-%s-%s.%s", kind, period, now.UTC().Format("2006-01-02"), format)
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// WriteUsersCSV writes one row per account after a header row.
func WriteUsersCSV(w io.Writer, users []models.User) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "name", "email", "role", "isActive", "currentStreak", "longestStreak", "lastLogin", "createdAt"}); err != nil {
		return err
	}
	for _, u := range users {
		created := u.CreatedAt
		row := []string{
			u.ID.Hex(),
			u.Name,
			u.Email,
			u.Role,
			strconv.FormatBool(u.IsActive),
			strconv.Itoa(u.Streak.Current),
			strconv.Itoa(u.Streak.Longest),
			formatTime(u.LastLogin),
			formatTime(&created),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJournalsCSV writes one row per entry. Tags are joined with ";".
func WriteJournalsCSV(w io.Writer, journals []models.Journal) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "user", "title", "mood", "moodIntensity", "wordCount", "isPrivate", "tags", "createdAt"}); err != nil {
		return err
	}
	for _, j := range journals {
		created := j.CreatedAt
		row := []string{
			j.ID.Hex(),
			j.User.Hex(),
			j.Title,
			j.Mood,
			strconv.Itoa(j.MoodIntensity),
			strconv.Itoa(j.WordCount),
			strconv.FormatBool(j.IsPrivate),
			strings.Join(j.Tags, ";"),
			formatTime(&created),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// RoundDiv returns round(a/b) for non-negative a, or 0 when b is 0.
func RoundDiv(a, b int64) int64 {
	if b <= 0 {
		return 0
	}
	return (2*a + b) / (2 * b)
}

// Percent returns round(part/whole*100), or 0 when whole is 0.
func Percent(part, whole int64) int64 {
	return RoundDiv(part*100, whole)
}
