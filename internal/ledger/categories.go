// Package ledger resolves categories and records expenses for a user.
package ledger

import (
	"strings"

	"cashgram/internal/models"
)

// Style is the display icon and color of a category.
type Style struct {
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

var styles = map[string]Style{
	models.CategoryFood:          {Icon: "🍔", Color: "#EF4444"},
	models.CategoryTransport:     {Icon: "🚗", Color: "#3B82F6"},
	models.CategoryShopping:      {Icon: "🛒", Color: "#10B981"},
	models.CategoryEntertainment: {Icon: "🎮", Color: "#8B5CF6"},
	models.CategoryHealth:        {Icon: "🏥", Color: "#F59E0B"},
	models.CategoryCommunication: {Icon: "📱", Color: "#06B6D4"},
	models.CategoryEducation:     {Icon: "📚", Color: "#6B7280"},
	models.CategoryOther:         {Icon: "💰", Color: "#64748B"},
}

var defaultStyle = Style{Icon: "💰", Color: "#64748B"}

// StyleFor returns the style for a category name, or the catch-all style.
func StyleFor(name string) Style {
	if s, ok := styles[name]; ok {
		return s
	}
	return defaultStyle
}

// DefaultCategories returns the categories every new user starts with.
func DefaultCategories() []models.Category {
	names := []string{
		models.CategoryFood,
		models.CategoryTransport,
		models.CategoryShopping,
		models.CategoryEntertainment,
		models.CategoryHealth,
		models.CategoryEducation,
		models.CategoryOther,
	}
	categories := make([]models.Category, 0, len(names))
	for _, n := range names {
		s := StyleFor(n)
		categories = append(categories, models.Category{Name: n, Icon: s.Icon, Color: s.Color})
	}
	return categories
}

// CanonicalName trims a category name, mapping blank to the catch-all.
func CanonicalName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.CategoryOther
	}
	return name
}
