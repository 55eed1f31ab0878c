package services

import (
	"gorm.io/gorm"

	"github.com/h21s/table-tracker/models"
)

// SessionStore adalah port penyimpanan sesi final. TableManager hanya
// bergantung ke interface ini, bukan ke gorm langsung, supaya bisa
// dipakai test double yang deterministik.
type SessionStore interface {
	// SaveSession menulis sesi final ke storage. Return error kalau write
	// tidak terkonfirmasi — caller yang memutuskan cara melapor.
	SaveSession(tableID int, gameType string, s models.SessionSummary) error

	// RecentSessions mengambil maksimal limit sesi terakhir untuk satu meja,
	// paling baru duluan.
	RecentSessions(tableID int, gameType string, limit int) ([]models.SessionSummary, error)
}

// GormSessionStore menyimpan sesi lewat gorm (sqlite/mysql).
type GormSessionStore struct {
	DB *gorm.DB
}

func NewGormSessionStore(db *gorm.DB) *GormSessionStore {
	return &GormSessionStore{DB: db}
}

func (gs *GormSessionStore) SaveSession(tableID int, gameType string, s models.SessionSummary) error {
	record := models.Session{
		TableID:         tableID,
		GameType:        gameType,
		StartTime:       s.StartTime,
		EndTime:         s.EndTime,
		DurationMinutes: s.Duration,
		Amount:          s.Amount,
		Rate:            s.Rate,
		StaffUser:       s.User,
		SessionDate:     s.Date,
	}
	return gs.DB.Create(&record).Error
}

func (gs *GormSessionStore) RecentSessions(tableID int, gameType string, limit int) ([]models.SessionSummary, error) {
	var records []models.Session
	err := gs.DB.Where("table_id = ? AND game_type = ?", tableID, gameType).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	sessions := make([]models.SessionSummary, 0, len(records))
	for _, r := range records {
		sessions = append(sessions, models.SessionSummary{
			StartTime: r.StartTime,
			EndTime:   r.EndTime,
			Duration:  r.DurationMinutes,
			Amount:    r.Amount,
			Date:      r.SessionDate,
			User:      r.StaffUser,
			GameType:  r.GameType,
			Rate:      r.Rate,
		})
	}
	return sessions, nil
}
