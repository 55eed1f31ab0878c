package services

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/h21s/table-tracker/models"
)

var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrDuplicatePhone   = errors.New("phone number already registered")
	ErrNegativeValue    = errors.New("amount and minutes must be non-negative")
)

// CustomerLedger menangani saldo customer dan audit trail transaksi.
// Semua posting read-modify-write diserialisasi lewat mutex supaya dua
// posting bersamaan ke customer yang sama tidak saling menimpa.
type CustomerLedger struct {
	DB *gorm.DB
	mu sync.Mutex
}

func NewCustomerLedger(db *gorm.DB) *CustomerLedger {
	return &CustomerLedger{DB: db}
}

// SplitResult melaporkan hasil posting per pemain pada split billing.
type SplitResult struct {
	CustomerID uint   `json:"customer_id"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}

// TodayStats adalah agregat harian untuk dashboard.
type TodayStats struct {
	TotalCustomers     int64   `json:"total_customers"`
	TodayTotalAmount   float64 `json:"today_total_amount"`
	TodayTotalMinutes  float64 `json:"today_total_minutes"`
	TodaySnookerAmount float64 `json:"today_snooker_amount"`
	TodayPoolAmount    float64 `json:"today_pool_amount"`
}

// TopCustomer adalah satu baris leaderboard.
type TopCustomer struct {
	Name        string  `json:"name"`
	TotalAmount float64 `json:"total_amount"`
}

// AddCustomer mendaftarkan customer baru. Phone harus unik — duplikat
// dilaporkan sebagai ErrDuplicatePhone, bukan crash.
func (cl *CustomerLedger) AddCustomer(name, phone string) (*models.Customer, error) {
	customer := models.Customer{
		Name:            name,
		Phone:           phone,
		LastUpdatedDate: time.Now().Format("2006-01-02"),
	}

	if err := cl.DB.Create(&customer).Error; err != nil {
		if isDuplicateErr(err) {
			return nil, ErrDuplicatePhone
		}
		return nil, err
	}
	return &customer, nil
}

// AddAmountToCustomer membebankan hasil sesi ke satu customer. Enam efek
// (total, sub-total game, today, snapshot sesi terakhir, tanggal update,
// baris transaksi) commit sebagai satu unit atau tidak sama sekali.
func (cl *CustomerLedger) AddAmountToCustomer(customerID uint, amount, minutes float64, description, staffUser, gameType string) error {
	if amount < 0 || minutes < 0 {
		return ErrNegativeValue
	}

	cl.mu.Lock()
	defer cl.mu.Unlock()

	today := time.Now().Format("2006-01-02")
	now := time.Now()

	tx := cl.DB.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	var customer models.Customer
	if err := tx.First(&customer, customerID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCustomerNotFound
		}
		return err
	}

	resetTodayIfNewDay(&customer, today)

	customer.TotalAmount += amount
	customer.TotalMinutes += minutes
	switch gameType {
	case models.GameSnooker:
		customer.SnookerAmount += amount
		customer.SnookerMinutes += minutes
	default:
		customer.PoolAmount += amount
		customer.PoolMinutes += minutes
	}
	customer.TodayAmount += amount
	customer.TodayMinutes += minutes
	customer.LastSessionAmount = amount
	customer.LastSessionMinutes = minutes
	customer.LastSessionTime = &now
	customer.LastUpdatedDate = today

	if err := tx.Save(&customer).Error; err != nil {
		tx.Rollback()
		return err
	}

	transaction := models.Transaction{
		CustomerID:      customerID,
		Amount:          amount,
		TransactionType: models.TxTypeSession,
		GameType:        gameType,
		Description:     description,
		StaffUser:       staffUser,
	}
	if err := tx.Create(&transaction).Error; err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

// AdjustCustomerBalance koreksi saldo manual (credit/debit). Kebijakan
// siapa yang boleh mengirim amount negatif ada di caller, bukan di sini.
func (cl *CustomerLedger) AdjustCustomerBalance(customerID uint, amount float64, transactionType, staffUser string) error {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	today := time.Now().Format("2006-01-02")

	tx := cl.DB.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	var customer models.Customer
	if err := tx.First(&customer, customerID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCustomerNotFound
		}
		return err
	}

	resetTodayIfNewDay(&customer, today)

	customer.TotalAmount += amount
	customer.TodayAmount += amount
	customer.LastUpdatedDate = today

	if err := tx.Save(&customer).Error; err != nil {
		tx.Rollback()
		return err
	}

	direction := "addition"
	if amount < 0 {
		direction = "subtraction"
	}
	transaction := models.Transaction{
		CustomerID:      customerID,
		Amount:          amount,
		TransactionType: transactionType,
		Description:     fmt.Sprintf("Manual %s by %s", direction, staffUser),
		StaffUser:       staffUser,
	}
	if err := tx.Create(&transaction).Error; err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

// SplitAssign membagi tagihan rata ke beberapa pemain. Tiap posting
// independen — TIDAK ada rollback kalau sebagian gagal; hasil per pemain
// dilaporkan apa adanya.
func (cl *CustomerLedger) SplitAssign(customerIDs []uint, perPlayerAmount, perPlayerMinutes float64, description, staffUser, gameType string) []SplitResult {
	results := make([]SplitResult, 0, len(customerIDs))
	for _, id := range customerIDs {
		err := cl.AddAmountToCustomer(id, perPlayerAmount, perPlayerMinutes, description, staffUser, gameType)
		result := SplitResult{CustomerID: id, Success: err == nil}
		if err != nil {
			result.Error = err.Error()
		}
		results = append(results, result)
	}
	return results
}

// SearchCustomers mencari berdasarkan nama atau nomor telepon.
func (cl *CustomerLedger) SearchCustomers(term string) ([]models.Customer, error) {
	var customers []models.Customer
	pattern := "%" + term + "%"
	err := cl.DB.Where("name LIKE ? OR phone LIKE ?", pattern, pattern).
		Order("name").
		Find(&customers).Error
	return customers, err
}

// GetAllCustomers mengembalikan semua customer, pembelanja terbesar duluan.
func (cl *CustomerLedger) GetAllCustomers() ([]models.Customer, error) {
	var customers []models.Customer
	err := cl.DB.Order("total_amount DESC").Find(&customers).Error
	return customers, err
}

// GetCustomerByID mengambil satu customer.
func (cl *CustomerLedger) GetCustomerByID(customerID uint) (*models.Customer, error) {
	var customer models.Customer
	if err := cl.DB.First(&customer, customerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return &customer, nil
}

// EditCustomer mengubah nama/telepon customer.
func (cl *CustomerLedger) EditCustomer(customerID uint, name, phone string) error {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	var customer models.Customer
	if err := cl.DB.First(&customer, customerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCustomerNotFound
		}
		return err
	}

	customer.Name = name
	customer.Phone = phone
	if err := cl.DB.Save(&customer).Error; err != nil {
		if isDuplicateErr(err) {
			return ErrDuplicatePhone
		}
		return err
	}
	return nil
}

// DeleteCustomer menghapus customer beserta transaksinya (cascade).
func (cl *CustomerLedger) DeleteCustomer(customerID uint) error {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	tx := cl.DB.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	var customer models.Customer
	if err := tx.First(&customer, customerID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCustomerNotFound
		}
		return err
	}

	if err := tx.Where("customer_id = ?", customerID).Delete(&models.Transaction{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Delete(&customer).Error; err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

// GetTodayStats menghitung agregat hari ini. Angka today per customer
// hanya dihitung untuk yang last_updated_date == hari ini (yang belum
// tersentuh hari ini masih membawa nilai basi — lihat kebijakan lazy reset).
func (cl *CustomerLedger) GetTodayStats() (TodayStats, error) {
	var stats TodayStats
	today := time.Now().Format("2006-01-02")

	if err := cl.DB.Model(&models.Customer{}).Count(&stats.TotalCustomers).Error; err != nil {
		return stats, err
	}

	row := cl.DB.Model(&models.Customer{}).
		Select("COALESCE(SUM(today_amount), 0), COALESCE(SUM(today_minutes), 0)").
		Where("last_updated_date = ?", today).
		Row()
	if err := row.Scan(&stats.TodayTotalAmount, &stats.TodayTotalMinutes); err != nil {
		return stats, err
	}

	for gameType, target := range map[string]*float64{
		models.GameSnooker: &stats.TodaySnookerAmount,
		models.GamePool:    &stats.TodayPoolAmount,
	} {
		row := cl.DB.Model(&models.Transaction{}).
			Select("COALESCE(SUM(amount), 0)").
			Where("DATE(created_at) = ? AND game_type = ?", today, gameType).
			Row()
		if err := row.Scan(target); err != nil {
			return stats, err
		}
	}

	return stats, nil
}

// GetTopCustomers mengembalikan n pembelanja terbesar.
func (cl *CustomerLedger) GetTopCustomers(limit int) ([]TopCustomer, error) {
	var top []TopCustomer
	err := cl.DB.Model(&models.Customer{}).
		Select("name, total_amount").
		Order("total_amount DESC").
		Limit(limit).
		Scan(&top).Error
	return top, err
}

// resetTodayIfNewDay men-nol-kan saldo "hari ini" pada write pertama di
// tanggal baru. Dipanggil di dalam transaksi, sebelum increment.
func resetTodayIfNewDay(customer *models.Customer, today string) {
	if customer.LastUpdatedDate != today {
		customer.TodayAmount = 0
		customer.TodayMinutes = 0
	}
}

func isDuplicateErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
