package models

import "time"

// Session adalah record sesi yang sudah final — immutable setelah dibuat
// oleh transisi end di TableManager.
type Session struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	TableID         int       `gorm:"not null;index" json:"table_id"`
	GameType        string    `gorm:"type:varchar(20);not null" json:"game_type"`
	StartTime       string    `gorm:"type:varchar(8);not null" json:"start_time"` // HH:MM:SS
	EndTime         string    `gorm:"type:varchar(8);not null" json:"end_time"`
	DurationMinutes float64   `gorm:"not null" json:"duration"` // 1 desimal
	Amount          float64   `gorm:"type:decimal(10,2);not null" json:"amount"`
	Rate            float64   `gorm:"not null" json:"rate"`
	StaffUser       string    `gorm:"type:varchar(50)" json:"user"`
	SessionDate     string    `gorm:"type:varchar(10);not null;index" json:"date"` // YYYY-MM-DD
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
}

// SessionSummary adalah bentuk ringkas yang dipegang TableManager di memori
// (recent sessions per meja, max 3).
type SessionSummary struct {
	StartTime string  `json:"start_time"`
	EndTime   string  `json:"end_time"`
	Duration  float64 `json:"duration"`
	Amount    float64 `json:"amount"`
	Date      string  `json:"date"`
	User      string  `json:"user"`
	GameType  string  `json:"game_type"`
	Rate      float64 `json:"rate"`
}
