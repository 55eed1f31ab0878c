package Controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/h21s/table-tracker/controllers"
	"github.com/h21s/table-tracker/models"
	"github.com/h21s/table-tracker/services"
	"github.com/h21s/table-tracker/utils"
)

// setupTestDBForTables menggunakan SQLite in-memory khusus untuk TableController
func setupTestDBForTables(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:tables_"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(&models.Session{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func newTableManager(db *gorm.DB) *services.TableManager {
	return services.NewTableManager(
		map[int]float64{1: 4.0, 2: 4.5, 3: 4.0},
		map[int]float64{1: 2.0, 2: 2.5, 3: 2.0},
		[]float64{2.0, 2.5, 3.0, 3.5, 4.0, 4.5, 5.0},
		services.NewGormSessionStore(db),
	)
}

func setupTableRouter(manager *services.TableManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()

	// Auth palsu untuk test — isi identity seperti middleware asli
	router.Use(func(c *gin.Context) {
		c.Set("userID", uint(1))
		c.Set("username", "staff1")
		c.Set("role", "staff")
		c.Next()
	})

	tableCtrl := controllers.NewTableController(manager)
	router.GET("/tables/:game_type", tableCtrl.GetTables)
	router.POST("/tables/:game_type/:table_id/action", tableCtrl.TableAction)
	router.POST("/tables/:game_type/:table_id/rate", tableCtrl.UpdateRate)
	router.POST("/tables/:game_type/:table_id/clear-sessions", tableCtrl.ClearSessions)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, url string, payload interface{}) *httptest.ResponseRecorder {
	body, err := json.Marshal(payload)
	assert.NoError(t, err)

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(body))
	assert.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetTables(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForTables(t)
	router := setupTableRouter(newTableManager(db))

	req, err := http.NewRequest("GET", "/tables/snooker", nil)
	assert.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Tables for snooker", response["message"])

	data := response["data"].(map[string]interface{})
	tables := data["tables"].(map[string]interface{})
	assert.Len(t, tables, 3)
	assert.NotEmpty(t, data["available_rates"])

	table1 := tables["1"].(map[string]interface{})
	assert.Equal(t, "idle", table1["status"])
	assert.Equal(t, "00:00", table1["time"])
	assert.Equal(t, 4.0, table1["rate"])
}

func TestGetTablesUnknownGameType(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForTables(t)
	router := setupTableRouter(newTableManager(db))

	req, _ := http.NewRequest("GET", "/tables/billiards", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTableActionStartAndEnd(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForTables(t)
	router := setupTableRouter(newTableManager(db))

	w := postJSON(t, router, "/tables/snooker/1/action", map[string]string{"action": "start"})
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	result := response["data"].(map[string]interface{})
	assert.Equal(t, true, result["success"])
	assert.Equal(t, false, result["show_customer_popup"])

	// Start kedua ditolak
	w = postJSON(t, router, "/tables/snooker/1/action", map[string]string{"action": "start"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// End -> session final + prompt assign customer
	w = postJSON(t, router, "/tables/snooker/1/action", map[string]string{"action": "end"})
	assert.Equal(t, http.StatusOK, w.Code)

	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	result = response["data"].(map[string]interface{})
	assert.Equal(t, true, result["show_customer_popup"])
	assert.Equal(t, true, result["session_saved"])
	session := result["session_data"].(map[string]interface{})
	assert.Equal(t, "snooker", session["game_type"])
	assert.Equal(t, "staff1", session["user"])

	// Record sesi sampai ke storage
	var count int64
	db.Model(&models.Session{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestTableActionInvalidTable(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForTables(t)
	router := setupTableRouter(newTableManager(db))

	w := postJSON(t, router, "/tables/snooker/99/action", map[string]string{"action": "start"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(t, router, "/tables/snooker/abc/action", map[string]string{"action": "start"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateRateEndpoint(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForTables(t)
	manager := newTableManager(db)
	router := setupTableRouter(manager)

	// Rate di luar daftar ditolak
	w := postJSON(t, router, "/tables/pool/1/rate", map[string]float64{"rate": 9.75})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(t, router, "/tables/pool/1/rate", map[string]float64{"rate": 3.5})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3.5, manager.GetTables("pool")[1].Rate)

	// Tidak boleh ganti rate saat meja jalan
	postJSON(t, router, "/tables/pool/1/action", map[string]string{"action": "start"})
	w = postJSON(t, router, "/tables/pool/1/rate", map[string]float64{"rate": 2.5})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClearSessionsEndpoint(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForTables(t)
	manager := newTableManager(db)
	router := setupTableRouter(manager)

	postJSON(t, router, "/tables/pool/2/action", map[string]string{"action": "start"})
	postJSON(t, router, "/tables/pool/2/action", map[string]string{"action": "end"})
	assert.Len(t, manager.GetTables("pool")[2].Sessions, 1)

	w := postJSON(t, router, "/tables/pool/2/clear-sessions", map[string]string{})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, manager.GetTables("pool")[2].Sessions)

	// Storage tidak tersentuh
	var count int64
	db.Model(&models.Session{}).Count(&count)
	assert.Equal(t, int64(1), count)
}
