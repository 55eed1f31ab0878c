package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SnookerTables dan PoolTables mendefinisikan set meja fisik yang fixed
// (table id -> default rate per menit). Set ini dibuat sekali saat startup.
var SnookerTables = map[int]float64{
	1: 4.0,
	2: 4.5,
	3: 4.0,
}

var PoolTables = map[int]float64{
	1: 2.0,
	2: 2.5,
	3: 2.0,
}

// AvailableRates adalah daftar rate yang boleh dipilih untuk semua meja
// (₹2.0 sampai ₹10.0 per menit).
var AvailableRates = []float64{
	2.0, 2.5, 3.0, 3.5, 4.0, 4.5, 5.0, 5.5,
	6.0, 6.5, 7.0, 7.5, 8.0, 8.5, 9.0, 9.5, 10.0,
}

// InitDB membuka koneksi database. Default SQLite; set DB_DRIVER=mysql
// plus DB_DSN untuk production.
func InitDB() (*gorm.DB, error) {
	driver := os.Getenv("DB_DRIVER")

	if driver == "mysql" {
		dsn := os.Getenv("DB_DSN")
		if dsn == "" {
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
				os.Getenv("DB_USER"), os.Getenv("DB_PASS"),
				os.Getenv("DB_HOST"), os.Getenv("DB_PORT"), os.Getenv("DB_NAME"))
		}
		return gorm.Open(mysql.Open(dsn), &gorm.Config{})
	}

	path := os.Getenv("DB_PATH")
	if path == "" {
		path = filepath.Join("data", "table_tracker.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return gorm.Open(sqlite.Open(path), &gorm.Config{})
}
