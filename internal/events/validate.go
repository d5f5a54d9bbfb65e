package events

import (
	"strings"
	"unicode/utf8"

	"github.com/mmynk/outings/internal/apperr"
	"github.com/mmynk/outings/internal/models"
)

const (
	maxTitleLen   = 200
	maxCommentLen = 2000
)

// normalize trims text fields, defaults the category and checks the
// content rules shared by creation and edits.
func normalize(e *models.Event) error {
	e.Title = strings.TrimSpace(e.Title)
	e.Description = strings.TrimSpace(e.Description)
	e.Location.Text = strings.TrimSpace(e.Location.Text)
	e.Organizer = strings.TrimSpace(e.Organizer)
	e.Price = strings.TrimSpace(e.Price)
	if e.Category == "" {
		e.Category = models.CategoryOther
	}

	switch {
	case e.Title == "":
		return apperr.Invalid("title", "is required")
	case utf8.RuneCountInString(e.Title) > maxTitleLen:
		return apperr.Invalid("title", "must be at most %d characters", maxTitleLen)
	case !e.Category.Valid():
		return apperr.Invalid("category", "unknown category %q", e.Category)
	case e.Location.Text == "":
		return apperr.Invalid("location", "is required")
	case (e.Location.Lat == nil) != (e.Location.Lng == nil):
		return apperr.Invalid("location", "latitude and longitude go together")
	case e.Location.Lat != nil && (*e.Location.Lat < -90 || *e.Location.Lat > 90):
		return apperr.Invalid("location", "latitude out of range")
	case e.Location.Lng != nil && (*e.Location.Lng < -180 || *e.Location.Lng > 180):
		return apperr.Invalid("location", "longitude out of range")
	case e.Organizer == "":
		return apperr.Invalid("organizer", "is required")
	case e.Date.IsZero():
		return apperr.Invalid("date", "is required")
	case e.EndDate != nil && e.EndDate.Before(e.Date):
		return apperr.Invalid("endDate", "must not be before the start date")
	case e.MaxParticipants != nil && *e.MaxParticipants <= 0:
		return apperr.Invalid("maxParticipants", "must be positive")
	}
	if err := checkAge("ageMin", e.AgeMin); err != nil {
		return err
	}
	if err := checkAge("ageMax", e.AgeMax); err != nil {
		return err
	}
	if e.AgeMin != nil && e.AgeMax != nil && *e.AgeMin > *e.AgeMax {
		return apperr.Invalid("ageMin", "must not exceed ageMax")
	}
	return nil
}

func checkAge(field string, age *int) error {
	if age != nil && (*age < models.MinAge || *age > models.MaxAge) {
		return apperr.Invalid(field, "must be between %d and %d", models.MinAge, models.MaxAge)
	}
	return nil
}

// cleanName trims a display name and rejects blanks.
func cleanName(field, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.Invalid(field, "is required")
	}
	return name, nil
}

func sameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
