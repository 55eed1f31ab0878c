package models

import "time"

// Transaction types
const (
	TxTypeSession = "session"
	TxTypeCredit  = "credit"
	TxTypeDebit   = "debit"
)

// Transaction adalah audit trail append-only. Tidak pernah di-update;
// hanya ikut terhapus kalau customer-nya dihapus (cascade).
type Transaction struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	CustomerID      uint      `gorm:"not null;index" json:"customer_id"`
	Customer        Customer  `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE" json:"-"`
	Amount          float64   `gorm:"type:decimal(10,2);not null" json:"amount"`
	TransactionType string    `gorm:"type:varchar(20);not null" json:"transaction_type"`
	GameType        string    `gorm:"type:varchar(20)" json:"game_type,omitempty"`
	Description     string    `gorm:"type:varchar(255)" json:"description"`
	StaffUser       string    `gorm:"type:varchar(50)" json:"staff_user"`
	CreatedAt       time.Time `gorm:"not null;index" json:"created_at"`
}
