package models

import "strings"

// Habit is a user-defined daily check-in. Completion is stored per day in
// DayRecord.Habits keyed by ID.
type Habit struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Icon      string `json:"icon"`
	Color     string `json:"color"`
	CreatedAt int64  `json:"createdAt"` // unix ms
	Order     int    `json:"order"`
}

// HabitPatch updates the editable fields of a habit. Nil fields are left alone.
type HabitPatch struct {
	Name  *string
	Icon  *string
	Color *string
	Order *int
}

func (p HabitPatch) Apply(h Habit) Habit {
	if p.Name != nil {
		h.Name = strings.TrimSpace(*p.Name)
	}
	if p.Icon != nil {
		h.Icon = *p.Icon
	}
	if p.Color != nil {
		h.Color = *p.Color
	}
	if p.Order != nil {
		h.Order = *p.Order
	}
	return h
}

// DefaultHabitIcons and DefaultHabitColors are offered when creating habits.
var (
	DefaultHabitIcons  = []string{"🏃", "📚", "💧", "🧘", "💪", "🎯", "✍️", "🎨", "🎵", "💤"}
	DefaultHabitColors = []string{
		"hsl(var(--primary))",
		"hsl(142, 76%, 36%)",
		"hsl(262, 83%, 58%)",
		"hsl(24, 94%, 50%)",
		"hsl(199, 89%, 48%)",
		"hsl(340, 82%, 52%)",
	}
)
