package models

import "time"

// Category names the parser and the bot know about.
const (
	CategoryFood          = "Makanan"
	CategoryTransport     = "Transportasi"
	CategoryShopping      = "Belanja"
	CategoryEntertainment = "Hiburan"
	CategoryHealth        = "Kesehatan"
	CategoryCommunication = "Komunikasi"
	CategoryEducation     = "Pendidikan"
	// CategoryOther is the catch-all category.
	CategoryOther = "Lainnya"
)

// Expense represents a single spending record. Amount is in whole rupiah.
type Expense struct {
	ID          int64     `json:"id"`
	Amount      int64     `json:"amount"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	UserID      int64     `json:"userId"`
	CategoryID  int64     `json:"categoryId"`
	Category    *Category `json:"category,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CategoryName returns the joined category name or the catch-all name.
func (e Expense) CategoryName() string {
	if e.Category == nil || e.Category.Name == "" {
		return CategoryOther
	}
	return e.Category.Name
}

// Category belongs to exactly one user; names are unique per user.
type Category struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"userId"`
	Name   string `json:"name"`
	Icon   string `json:"icon"`
	Color  string `json:"color"`
}

// User represents a user account.
type User struct {
	ID           int64     `json:"id"`
	Phone        string    `json:"phone"`
	Name         string    `json:"name,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ChatSession maps an external chat identity to a user.
type ChatSession struct {
	ID        int64     `json:"id"`
	ChatID    string    `json:"chatId"`
	UserID    int64     `json:"userId"`
	Token     string    `json:"-"`
	Active    bool      `json:"active"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LoggedIn reports whether the session can authenticate bot actions.
func (s *ChatSession) LoggedIn() bool {
	return s != nil && s.Active && s.Token != ""
}

// CategoryTotal is a per-category aggregate for a period.
type CategoryTotal struct {
	CategoryID int64  `json:"categoryId"`
	Category   string `json:"category"`
	Icon       string `json:"icon"`
	Color      string `json:"color"`
	Total      int64  `json:"total"`
	Count      int    `json:"count"`
}
