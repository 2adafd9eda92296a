package services

import (
	"testing"
	"time"

	"medisafe/models"
)

func TestCompletionPercent(t *testing.T) {
	empty := &models.UserProfile{}
	if got := completionPercent(empty); got != 0 {
		t.Errorf("empty profile = %d%%", got)
	}

	birthday := time.Date(1990, 3, 2, 0, 0, 0, 0, time.UTC)
	full := &models.UserProfile{
		FirstName:     "Ana",
		LastName:      "Cruz",
		Sex:           "female",
		Birthday:      &birthday,
		CivilStatus:   "single",
		Address:       "Somewhere 1",
		ContactNumber: "555-0100",
		ContactPerson: "Beth Cruz",
		PhotoURL:      "data:image/png;base64,AA==",
	}
	if got := completionPercent(full); got != 100 {
		t.Errorf("full profile = %d%%", got)
	}

	half := &models.UserProfile{FirstName: "Ana", LastName: "Cruz", Sex: "female"}
	if got := completionPercent(half); got != 33 {
		t.Errorf("3/9 fields = %d%%", got)
	}
}

func TestAgeAt(t *testing.T) {
	birthday := time.Date(1990, 7, 15, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		now  time.Time
		want int
	}{
		{time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC), 34}, // day before birthday
		{time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC), 35}, // on the birthday
		{time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), 35},
	}
	for _, tc := range cases {
		if got := ageAt(birthday, tc.now); got != tc.want {
			t.Errorf("ageAt(%v) = %d, want %d", tc.now, got, tc.want)
		}
	}
}
