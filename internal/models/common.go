package models

import (
	"fmt"
	"time"
)

const (
	FechaLayout = "2006-01-02"
	HoraLayout  = "15:04:05"
)

type BaseModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// NormalizeFecha приводит дату к виду YYYY-MM-DD.
func NormalizeFecha(s string) (string, error) {
	t, err := time.Parse(FechaLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid fecha %q: expected YYYY-MM-DD", s)
	}
	return t.Format(FechaLayout), nil
}

// NormalizeHora принимает HH:MM или HH:MM:SS и возвращает HH:MM:SS.
func NormalizeHora(s string) (string, error) {
	for _, layout := range []string{"15:04", HoraLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(HoraLayout), nil
		}
	}
	return "", fmt.Errorf("invalid hora %q: expected HH:MM", s)
}
