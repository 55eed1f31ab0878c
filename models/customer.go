package models

import (
	"time"
)

// Customer menyimpan saldo kumulatif pelanggan. Phone adalah natural key.
type Customer struct {
	ID             uint    `gorm:"primaryKey" json:"id"`
	Name           string  `gorm:"type:varchar(100);not null;index" json:"name"`
	Phone          string  `gorm:"type:varchar(20);unique;not null" json:"phone"`
	TotalAmount    float64 `gorm:"type:decimal(10,2);not null;default:0.00" json:"total_amount"`
	TotalMinutes   float64 `gorm:"not null;default:0" json:"total_minutes"`
	SnookerAmount  float64 `gorm:"type:decimal(10,2);not null;default:0.00" json:"snooker_amount"`
	SnookerMinutes float64 `gorm:"not null;default:0" json:"snooker_minutes"`
	PoolAmount     float64 `gorm:"type:decimal(10,2);not null;default:0.00" json:"pool_amount"`
	PoolMinutes    float64 `gorm:"not null;default:0" json:"pool_minutes"`

	// Saldo "hari ini" — di-nol-kan secara lazy pada write pertama di hari baru.
	TodayAmount  float64 `gorm:"type:decimal(10,2);not null;default:0.00" json:"today_amount"`
	TodayMinutes float64 `gorm:"not null;default:0" json:"today_minutes"`

	// Snapshot sesi terakhir yang dibebankan ke customer ini.
	LastSessionAmount  float64    `gorm:"type:decimal(10,2);not null;default:0.00" json:"last_session_amount"`
	LastSessionMinutes float64    `gorm:"not null;default:0" json:"last_session_minutes"`
	LastSessionTime    *time.Time `json:"last_session_time,omitempty"`

	LastUpdatedDate string    `gorm:"type:varchar(10)" json:"last_updated_date"` // YYYY-MM-DD
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null" json:"updated_at"`
}
