package services

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/h21s/table-tracker/models"
)

// setupLedgerDB membuat SQLite in-memory terpisah per test
func setupLedgerDB(t *testing.T) *gorm.DB {
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(&models.Customer{}, &models.Transaction{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func TestAddCustomerAndDuplicatePhone(t *testing.T) {
	ledger := NewCustomerLedger(setupLedgerDB(t))

	customer, err := ledger.AddCustomer("Amit Kumar", "9876543210")
	assert.NoError(t, err)
	assert.NotZero(t, customer.ID)
	assert.Equal(t, time.Now().Format("2006-01-02"), customer.LastUpdatedDate)

	_, err = ledger.AddCustomer("Other Person", "9876543210")
	assert.ErrorIs(t, err, ErrDuplicatePhone)
}

func TestAddAmountToCustomer(t *testing.T) {
	db := setupLedgerDB(t)
	ledger := NewCustomerLedger(db)

	customer, _ := ledger.AddCustomer("Priya Sharma", "9876543211")

	err := ledger.AddAmountToCustomer(customer.ID, 10.0, 2.5, "Snooker Table 1 session", "staff1", models.GameSnooker)
	assert.NoError(t, err)

	var got models.Customer
	db.First(&got, customer.ID)
	assert.Equal(t, 10.0, got.TotalAmount)
	assert.Equal(t, 2.5, got.TotalMinutes)
	assert.Equal(t, 10.0, got.SnookerAmount)
	assert.Equal(t, 2.5, got.SnookerMinutes)
	assert.Equal(t, 0.0, got.PoolAmount)
	assert.Equal(t, 10.0, got.TodayAmount)
	assert.Equal(t, 2.5, got.TodayMinutes)
	assert.Equal(t, 10.0, got.LastSessionAmount)
	assert.Equal(t, 2.5, got.LastSessionMinutes)
	assert.NotNil(t, got.LastSessionTime)

	var txs []models.Transaction
	db.Where("customer_id = ?", customer.ID).Find(&txs)
	if assert.Len(t, txs, 1) {
		assert.Equal(t, models.TxTypeSession, txs[0].TransactionType)
		assert.Equal(t, models.GameSnooker, txs[0].GameType)
		assert.Equal(t, 10.0, txs[0].Amount)
		assert.Equal(t, "staff1", txs[0].StaffUser)
	}
}

func TestAddAmountPoolSubTotals(t *testing.T) {
	db := setupLedgerDB(t)
	ledger := NewCustomerLedger(db)

	customer, _ := ledger.AddCustomer("Rahul Singh", "9876543212")
	assert.NoError(t, ledger.AddAmountToCustomer(customer.ID, 5.0, 2.0, "", "staff1", models.GamePool))

	var got models.Customer
	db.First(&got, customer.ID)
	assert.Equal(t, 5.0, got.PoolAmount)
	assert.Equal(t, 2.0, got.PoolMinutes)
	assert.Equal(t, 0.0, got.SnookerAmount)
}

func TestAddAmountPreconditions(t *testing.T) {
	ledger := NewCustomerLedger(setupLedgerDB(t))

	err := ledger.AddAmountToCustomer(999, 10.0, 2.5, "", "staff1", models.GameSnooker)
	assert.ErrorIs(t, err, ErrCustomerNotFound)

	customer, _ := ledger.AddCustomer("John Doe", "9876543213")
	err = ledger.AddAmountToCustomer(customer.ID, -1.0, 2.5, "", "staff1", models.GameSnooker)
	assert.ErrorIs(t, err, ErrNegativeValue)

	// Tidak ada transaksi tertulis dari operasi yang gagal
	var count int64
	ledger.DB.Model(&models.Transaction{}).Count(&count)
	assert.Zero(t, count)
}

func TestConcurrentPostingsNoLostUpdate(t *testing.T) {
	db := setupLedgerDB(t)
	ledger := NewCustomerLedger(db)

	customer, _ := ledger.AddCustomer("Jane Smith", "9876543214")

	var wg sync.WaitGroup
	amounts := []float64{10.0, 7.5}
	for _, a := range amounts {
		wg.Add(1)
		go func(amount float64) {
			defer wg.Done()
			assert.NoError(t, ledger.AddAmountToCustomer(customer.ID, amount, 1.0, "", "staff1", models.GamePool))
		}(a)
	}
	wg.Wait()

	var got models.Customer
	db.First(&got, customer.ID)
	assert.Equal(t, 17.5, got.TotalAmount)
	assert.Equal(t, 2.0, got.TotalMinutes)

	var count int64
	db.Model(&models.Transaction{}).Where("customer_id = ?", customer.ID).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestLazyDailyReset(t *testing.T) {
	db := setupLedgerDB(t)
	ledger := NewCustomerLedger(db)

	customer, _ := ledger.AddCustomer("Stale Customer", "9876543215")
	assert.NoError(t, ledger.AddAmountToCustomer(customer.ID, 20.0, 5.0, "", "staff1", models.GameSnooker))

	// Mundurkan tanggal update seolah posting terakhir kemarin
	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	db.Model(&models.Customer{}).Where("id = ?", customer.ID).
		Update("last_updated_date", yesterday)

	// Write pertama di hari baru: today di-nol-kan dulu baru increment
	assert.NoError(t, ledger.AddAmountToCustomer(customer.ID, 3.0, 1.0, "", "staff1", models.GameSnooker))

	var got models.Customer
	db.First(&got, customer.ID)
	assert.Equal(t, 3.0, got.TodayAmount)
	assert.Equal(t, 1.0, got.TodayMinutes)
	assert.Equal(t, 23.0, got.TotalAmount) // total kumulatif tidak ikut direset
	assert.Equal(t, time.Now().Format("2006-01-02"), got.LastUpdatedDate)

	// Write kedua di hari yang sama tidak mereset
	assert.NoError(t, ledger.AddAmountToCustomer(customer.ID, 2.0, 1.0, "", "staff1", models.GameSnooker))
	db.First(&got, customer.ID)
	assert.Equal(t, 5.0, got.TodayAmount)
}

func TestAdjustCustomerBalance(t *testing.T) {
	db := setupLedgerDB(t)
	ledger := NewCustomerLedger(db)

	customer, _ := ledger.AddCustomer("Adjust Me", "9876543216")

	assert.NoError(t, ledger.AdjustCustomerBalance(customer.ID, 50.0, models.TxTypeCredit, "admin"))
	assert.NoError(t, ledger.AdjustCustomerBalance(customer.ID, -15.0, models.TxTypeDebit, "admin"))

	var got models.Customer
	db.First(&got, customer.ID)
	assert.Equal(t, 35.0, got.TotalAmount)
	assert.Equal(t, 35.0, got.TodayAmount)

	var txs []models.Transaction
	db.Where("customer_id = ?", customer.ID).Order("id").Find(&txs)
	if assert.Len(t, txs, 2) {
		assert.Equal(t, "Manual addition by admin", txs[0].Description)
		assert.Equal(t, "Manual subtraction by admin", txs[1].Description)
		assert.Equal(t, -15.0, txs[1].Amount)
	}

	assert.ErrorIs(t, ledger.AdjustCustomerBalance(999, 5.0, models.TxTypeCredit, "admin"), ErrCustomerNotFound)
}

func TestSplitAssignPartialFailure(t *testing.T) {
	db := setupLedgerDB(t)
	ledger := NewCustomerLedger(db)

	c1, _ := ledger.AddCustomer("Player One", "9000000001")
	c2, _ := ledger.AddCustomer("Player Two", "9000000002")

	results := ledger.SplitAssign([]uint{c1.ID, 999, c2.ID}, 5.0, 10.0, "Split bill", "staff1", models.GamePool)

	assert.Len(t, results, 3)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.Contains(t, results[1].Error, "not found")
	assert.True(t, results[2].Success)

	// Yang sukses tetap terbebani — tidak ada rollback
	for _, id := range []uint{c1.ID, c2.ID} {
		var got models.Customer
		db.First(&got, id)
		assert.Equal(t, 5.0, got.TotalAmount)
		assert.Equal(t, 10.0, got.TotalMinutes)
	}

	var count int64
	db.Model(&models.Transaction{}).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestSearchAndOrdering(t *testing.T) {
	ledger := NewCustomerLedger(setupLedgerDB(t))

	big, _ := ledger.AddCustomer("Big Spender", "9000000010")
	small, _ := ledger.AddCustomer("Small Spender", "9000000011")
	ledger.AddAmountToCustomer(big.ID, 100.0, 25.0, "", "staff1", models.GameSnooker)
	ledger.AddAmountToCustomer(small.ID, 10.0, 5.0, "", "staff1", models.GamePool)

	byName, err := ledger.SearchCustomers("Big")
	assert.NoError(t, err)
	if assert.Len(t, byName, 1) {
		assert.Equal(t, "Big Spender", byName[0].Name)
	}

	byPhone, err := ledger.SearchCustomers("0000011")
	assert.NoError(t, err)
	assert.Len(t, byPhone, 1)

	all, err := ledger.GetAllCustomers()
	assert.NoError(t, err)
	if assert.Len(t, all, 2) {
		assert.Equal(t, "Big Spender", all[0].Name) // total terbesar duluan
	}

	top, err := ledger.GetTopCustomers(1)
	assert.NoError(t, err)
	if assert.Len(t, top, 1) {
		assert.Equal(t, "Big Spender", top[0].Name)
		assert.Equal(t, 100.0, top[0].TotalAmount)
	}
}

func TestTodayStats(t *testing.T) {
	ledger := NewCustomerLedger(setupLedgerDB(t))

	c1, _ := ledger.AddCustomer("Stats One", "9000000020")
	c2, _ := ledger.AddCustomer("Stats Two", "9000000021")
	ledger.AddAmountToCustomer(c1.ID, 12.0, 3.0, "", "staff1", models.GameSnooker)
	ledger.AddAmountToCustomer(c2.ID, 4.0, 2.0, "", "staff1", models.GamePool)

	stats, err := ledger.GetTodayStats()
	assert.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalCustomers)
	assert.Equal(t, 16.0, stats.TodayTotalAmount)
	assert.Equal(t, 5.0, stats.TodayTotalMinutes)
	assert.Equal(t, 12.0, stats.TodaySnookerAmount)
	assert.Equal(t, 4.0, stats.TodayPoolAmount)
}

func TestEditAndDeleteCustomer(t *testing.T) {
	db := setupLedgerDB(t)
	ledger := NewCustomerLedger(db)

	c1, _ := ledger.AddCustomer("Old Name", "9000000030")
	c2, _ := ledger.AddCustomer("Keeps Phone", "9000000031")

	assert.NoError(t, ledger.EditCustomer(c1.ID, "New Name", "9000000032"))
	got, err := ledger.GetCustomerByID(c1.ID)
	assert.NoError(t, err)
	assert.Equal(t, "New Name", got.Name)

	// Pindah ke nomor yang sudah dipakai customer lain ditolak
	assert.ErrorIs(t, ledger.EditCustomer(c1.ID, "New Name", c2.Phone), ErrDuplicatePhone)

	// Delete menghapus transaksi ikutannya
	ledger.AddAmountToCustomer(c1.ID, 5.0, 1.0, "", "staff1", models.GamePool)
	assert.NoError(t, ledger.DeleteCustomer(c1.ID))

	_, err = ledger.GetCustomerByID(c1.ID)
	assert.ErrorIs(t, err, ErrCustomerNotFound)

	var count int64
	db.Model(&models.Transaction{}).Where("customer_id = ?", c1.ID).Count(&count)
	assert.Zero(t, count)

	assert.ErrorIs(t, ledger.DeleteCustomer(c1.ID), ErrCustomerNotFound)
}
