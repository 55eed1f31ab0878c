package services

import (
	"fmt"
	"log"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/h21s/table-tracker/models"
)

const recentSessionLimit = 3

// ActionResult adalah hasil terstruktur dari aksi meja. Error non-fatal
// (meja tidak dikenal, transisi ilegal) dilaporkan lewat Success=false,
// bukan lewat error — state tidak berubah sama sekali pada kasus itu.
type ActionResult struct {
	Success           bool                   `json:"success"`
	Message           string                 `json:"message"`
	ShowCustomerPopup bool                   `json:"show_customer_popup"`
	Session           *models.SessionSummary `json:"session_data,omitempty"`
	// SessionSaved false berarti transisi end sudah commit di memori tapi
	// record sesi TIDAK sampai ke storage — operator perlu rekonsiliasi.
	SessionSaved bool `json:"session_saved"`
}

// TableManager memegang state live semua meja (snooker + pool) dan
// menjalankan tick 1 detik di background. Semua mutasi state satu meja
// diserialisasi lewat satu mutex; write ke storage selalu di luar lock.
type TableManager struct {
	mu            sync.Mutex
	snookerTables map[int]*models.TableState
	poolTables    map[int]*models.TableState

	availableRates []float64
	store          SessionStore
	stopChan       chan struct{}

	// now bisa di-inject supaya tick bisa disimulasikan di test.
	now func() time.Time

	// onTick dipanggil setiap tick (di luar lock) dengan snapshot meja,
	// dipakai hub websocket untuk push ke client.
	onTick func(gameType string, tables map[int]models.TableView)
}

// NewTableManager membuat manager dengan set meja fixed dan memuat
// recent sessions dari storage.
func NewTableManager(snookerRates, poolRates map[int]float64, availableRates []float64, store SessionStore) *TableManager {
	tm := &TableManager{
		snookerTables:  make(map[int]*models.TableState),
		poolTables:     make(map[int]*models.TableState),
		availableRates: availableRates,
		store:          store,
		stopChan:       make(chan struct{}),
		now:            time.Now,
	}

	for id, rate := range snookerRates {
		tm.snookerTables[id] = &models.TableState{Status: models.TableIdle, Rate: rate}
	}
	for id, rate := range poolRates {
		tm.poolTables[id] = &models.TableState{Status: models.TableIdle, Rate: rate}
	}

	tm.loadRecentSessions()

	log.Printf("Table manager initialized: %d snooker, %d pool tables",
		len(tm.snookerTables), len(tm.poolTables))
	return tm
}

// SetTickCallback memasang callback snapshot per tick (misal live hub).
func (tm *TableManager) SetTickCallback(fn func(gameType string, tables map[int]models.TableView)) {
	tm.onTick = fn
}

// Start menjalankan timer 1 detik di background.
func (tm *TableManager) Start() {
	go func() {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				tm.Tick()
			case <-tm.stopChan:
				return
			}
		}
	}()
	log.Println("Table timer started")
}

// Stop menghentikan timer.
func (tm *TableManager) Stop() {
	close(tm.stopChan)
	log.Println("Table timer stopped")
}

// Tick meng-update elapsed time semua meja yang running. Dipanggil oleh
// ticker background, atau langsung dari test dengan clock simulasi.
func (tm *TableManager) Tick() {
	currentTime := tm.now()

	tm.mu.Lock()
	for _, tables := range []map[int]*models.TableState{tm.snookerTables, tm.poolTables} {
		for _, table := range tables {
			if table.Status != models.TableRunning || table.LastUpdate.IsZero() {
				continue
			}
			diff := currentTime.Sub(table.LastUpdate).Seconds()
			table.ElapsedSeconds += int(diff)
			table.LastUpdate = currentTime
			table.Amount = float64(table.ElapsedSeconds) / 60 * table.Rate
		}
	}
	tm.mu.Unlock()

	if tm.onTick != nil {
		tm.onTick(models.GameSnooker, tm.GetTables(models.GameSnooker))
		tm.onTick(models.GamePool, tm.GetTables(models.GamePool))
	}
}

// GetTables mengembalikan snapshot view semua meja untuk satu game type.
func (tm *TableManager) GetTables(gameType string) map[int]models.TableView {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	tables := tm.tableSet(gameType)
	if tables == nil {
		return nil
	}
	views := make(map[int]models.TableView, len(tables))
	for id, table := range tables {
		sessions := make([]models.SessionSummary, len(table.Sessions))
		copy(sessions, table.Sessions)
		views[id] = models.TableView{
			Status:   table.Status,
			Time:     formatElapsed(table.ElapsedSeconds),
			Rate:     table.Rate,
			Amount:   round2(table.Amount),
			Sessions: sessions,
		}
	}
	return views
}

// AvailableRates mengembalikan daftar rate yang diizinkan.
func (tm *TableManager) AvailableRates() []float64 {
	rates := make([]float64, len(tm.availableRates))
	copy(rates, tm.availableRates)
	return rates
}

// HandleTableAction menangani start/pause/end untuk satu meja.
func (tm *TableManager) HandleTableAction(gameType string, tableID int, action, username string) ActionResult {
	currentTime := tm.now()

	tm.mu.Lock()

	tables := tm.tableSet(gameType)
	if tables == nil {
		tm.mu.Unlock()
		return ActionResult{Success: false, Message: fmt.Sprintf("Invalid game type: %s", gameType)}
	}
	table, ok := tables[tableID]
	if !ok {
		tm.mu.Unlock()
		return ActionResult{Success: false, Message: fmt.Sprintf("Invalid table ID: %d", tableID)}
	}

	title := titleCase(gameType)

	switch action {
	case "start":
		switch table.Status {
		case models.TableIdle:
			table.Status = models.TableRunning
			table.ElapsedSeconds = 0
			table.Amount = 0
			table.LastUpdate = currentTime
			table.SessionStartTime = currentTime.Format("15:04:05")
			tm.mu.Unlock()
			log.Printf("Started %s table %d by %s", gameType, tableID, username)
			return ActionResult{
				Success:      true,
				Message:      fmt.Sprintf("%s Table %d started", title, tableID),
				SessionSaved: true,
			}
		case models.TablePaused:
			// Resume — elapsed sudah di-flush waktu pause, cukup reset anchor.
			table.Status = models.TableRunning
			table.LastUpdate = currentTime
			tm.mu.Unlock()
			return ActionResult{
				Success:      true,
				Message:      fmt.Sprintf("%s Table %d resumed", title, tableID),
				SessionSaved: true,
			}
		default:
			tm.mu.Unlock()
			return ActionResult{Success: false, Message: fmt.Sprintf("%s Table %d is already running", title, tableID)}
		}

	case "pause":
		if table.Status != models.TableRunning {
			tm.mu.Unlock()
			return ActionResult{Success: false, Message: fmt.Sprintf("%s Table %d is not running", title, tableID)}
		}
		// Flush elapsed time sampai sekarang, lalu bekukan.
		if !table.LastUpdate.IsZero() {
			diff := currentTime.Sub(table.LastUpdate).Seconds()
			table.ElapsedSeconds += int(diff)
			table.LastUpdate = currentTime
		}
		table.Status = models.TablePaused
		tm.mu.Unlock()
		return ActionResult{
			Success:      true,
			Message:      fmt.Sprintf("%s Table %d paused", title, tableID),
			SessionSaved: true,
		}

	case "end":
		if table.Status != models.TableRunning && table.Status != models.TablePaused {
			tm.mu.Unlock()
			return ActionResult{Success: false, Message: fmt.Sprintf("%s Table %d is not in session", title, tableID)}
		}

		// Flush terakhir hanya kalau masih running; kalau paused elapsed
		// sudah final sejak transisi pause.
		if table.Status == models.TableRunning && !table.LastUpdate.IsZero() {
			diff := currentTime.Sub(table.LastUpdate).Seconds()
			table.ElapsedSeconds += int(diff)
		}

		durationMinutes := float64(table.ElapsedSeconds) / 60
		amount := durationMinutes * table.Rate

		session := models.SessionSummary{
			StartTime: table.SessionStartTime,
			EndTime:   currentTime.Format("15:04:05"),
			Duration:  round1(durationMinutes),
			Amount:    round2(amount),
			Date:      currentTime.Format("2006-01-02"),
			User:      username,
			GameType:  gameType,
			Rate:      table.Rate,
		}

		table.Sessions = append(table.Sessions, session)
		if len(table.Sessions) > recentSessionLimit {
			table.Sessions = table.Sessions[len(table.Sessions)-recentSessionLimit:]
		}

		// Reset ke idle — transisi in-memory ini authoritative, apapun
		// hasil write ke storage di bawah.
		table.Status = models.TableIdle
		table.ElapsedSeconds = 0
		table.Amount = 0
		table.SessionStartTime = ""
		table.LastUpdate = time.Time{}

		tm.mu.Unlock()

		saved := tm.saveSession(tableID, gameType, session)

		msg := fmt.Sprintf("%s Table %d ended - %s for %.1f minutes",
			title, tableID, formatAmount(session.Amount), session.Duration)
		if !saved {
			msg += " (warning: session was not saved to storage)"
		}

		log.Printf("Ended %s table %d - %.2f for %.1f min (saved=%v)",
			gameType, tableID, session.Amount, session.Duration, saved)

		return ActionResult{
			Success:           true,
			Message:           msg,
			ShowCustomerPopup: true,
			Session:           &session,
			SessionSaved:      saved,
		}
	}

	tm.mu.Unlock()
	return ActionResult{Success: false, Message: fmt.Sprintf("Unknown action: %s", action)}
}

// UpdateTableRate mengganti rate meja. Hanya boleh saat idle dan rate
// harus anggota daftar rate yang diizinkan.
func (tm *TableManager) UpdateTableRate(gameType string, tableID int, newRate float64) ActionResult {
	if !tm.rateAllowed(newRate) {
		return ActionResult{Success: false, Message: "Invalid rate"}
	}

	tm.mu.Lock()
	defer tm.mu.Unlock()

	tables := tm.tableSet(gameType)
	if tables == nil {
		return ActionResult{Success: false, Message: fmt.Sprintf("Invalid game type: %s", gameType)}
	}
	table, ok := tables[tableID]
	if !ok {
		return ActionResult{Success: false, Message: fmt.Sprintf("Invalid table ID: %d", tableID)}
	}

	if table.Status != models.TableIdle {
		return ActionResult{Success: false, Message: "Cannot change rate while table is running"}
	}

	table.Rate = newRate
	log.Printf("Updated %s table %d rate to %.1f/min", gameType, tableID, newRate)
	return ActionResult{Success: true, Message: fmt.Sprintf("Rate updated to %s/min", formatAmount(newRate))}
}

// ClearTableSessions mengosongkan tampilan recent sessions saja —
// storage tidak tersentuh.
func (tm *TableManager) ClearTableSessions(gameType string, tableID int) ActionResult {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	tables := tm.tableSet(gameType)
	if tables == nil {
		return ActionResult{Success: false, Message: fmt.Sprintf("Invalid game type: %s", gameType)}
	}
	table, ok := tables[tableID]
	if !ok {
		return ActionResult{Success: false, Message: fmt.Sprintf("Invalid table ID: %d", tableID)}
	}

	table.Sessions = nil
	return ActionResult{Success: true, Message: "Recent sessions display cleared"}
}

// saveSession menulis sesi ke storage dengan satu kali retry langsung.
func (tm *TableManager) saveSession(tableID int, gameType string, session models.SessionSummary) bool {
	if err := tm.store.SaveSession(tableID, gameType, session); err != nil {
		log.Printf("Failed to save session for %s table %d: %v, retrying once", gameType, tableID, err)
		if err := tm.store.SaveSession(tableID, gameType, session); err != nil {
			log.Printf("Retry failed, session for %s table %d not saved: %v", gameType, tableID, err)
			return false
		}
	}
	return true
}

// loadRecentSessions memuat max 3 sesi terakhir per meja dari storage.
func (tm *TableManager) loadRecentSessions() {
	for gameType, tables := range map[string]map[int]*models.TableState{
		models.GameSnooker: tm.snookerTables,
		models.GamePool:    tm.poolTables,
	} {
		for id, table := range tables {
			sessions, err := tm.store.RecentSessions(id, gameType, recentSessionLimit)
			if err != nil {
				log.Printf("Could not load recent sessions for %s table %d: %v", gameType, id, err)
				continue
			}
			// Storage mengembalikan paling baru duluan; tampilan memegang
			// paling baru di akhir.
			for i, j := 0, len(sessions)-1; i < j; i, j = i+1, j-1 {
				sessions[i], sessions[j] = sessions[j], sessions[i]
			}
			table.Sessions = sessions
		}
	}
}

func (tm *TableManager) tableSet(gameType string) map[int]*models.TableState {
	switch gameType {
	case models.GameSnooker:
		return tm.snookerTables
	case models.GamePool:
		return tm.poolTables
	default:
		return nil
	}
}

func (tm *TableManager) rateAllowed(rate float64) bool {
	for _, r := range tm.availableRates {
		if r == rate {
			return true
		}
	}
	return false
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func formatElapsed(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func formatAmount(amount float64) string {
	return fmt.Sprintf("₹%.2f", amount)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
