package models

import "time"

// Table statuses
const (
	TableIdle    = "idle"
	TableRunning = "running"
	TablePaused  = "paused"
)

// Game types
const (
	GameSnooker = "snooker"
	GamePool    = "pool"
)

// TableState adalah state live satu meja fisik. Hanya dipegang oleh
// TableManager — elapsed_seconds dan last_update cuma berarti selama
// status != idle.
type TableState struct {
	Status           string
	Rate             float64
	ElapsedSeconds   int
	Amount           float64
	SessionStartTime string // HH:MM:SS, untuk record sesi
	LastUpdate       time.Time
	Sessions         []SessionSummary // recent, max 3, paling baru di akhir
}

// TableView adalah snapshot read-only yang dikembalikan ke caller;
// state mutable tidak pernah keluar dari TableManager.
type TableView struct {
	Status   string           `json:"status"`
	Time     string           `json:"time"` // MM:SS
	Rate     float64          `json:"rate"`
	Amount   float64          `json:"amount"`
	Sessions []SessionSummary `json:"sessions"`
}
