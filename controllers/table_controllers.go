package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/h21s/table-tracker/live"
	"github.com/h21s/table-tracker/services"
	"github.com/h21s/table-tracker/utils"
)

type TableController struct {
	Manager *services.TableManager
}

func NewTableController(manager *services.TableManager) *TableController {
	return &TableController{Manager: manager}
}

// GetTables -> snapshot semua meja satu game type
func (tc *TableController) GetTables(c *gin.Context) {
	gameType := c.Param("game_type")

	tables := tc.Manager.GetTables(gameType)
	if tables == nil {
		utils.RespondError(c, http.StatusNotFound, ErrInvalidGameType)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Tables for "+gameType, gin.H{
		"tables":          tables,
		"available_rates": tc.Manager.AvailableRates(),
	})
}

// TableAction -> start/pause/end satu meja
func (tc *TableController) TableAction(c *gin.Context) {
	gameType := c.Param("game_type")
	tableID, err := strconv.Atoi(c.Param("table_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, ErrInvalidTableID)
		return
	}

	var req struct {
		Action string `json:"action" binding:"required"` // start, pause, end
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	username := c.GetString("username")
	result := tc.Manager.HandleTableAction(gameType, tableID, req.Action, username)

	if !result.Success {
		utils.RespondJSON(c, http.StatusBadRequest, result.Message, result)
		return
	}

	if result.Session != nil {
		live.BroadcastSessionEnded(tableID, *result.Session)
	}

	utils.InfoLogger.Printf("Table action %s on %s table %d by %s: %s",
		req.Action, gameType, tableID, username, result.Message)
	utils.RespondJSON(c, http.StatusOK, result.Message, result)
}

// UpdateRate -> ganti rate meja (hanya saat idle, rate harus terdaftar)
func (tc *TableController) UpdateRate(c *gin.Context) {
	gameType := c.Param("game_type")
	tableID, err := strconv.Atoi(c.Param("table_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, ErrInvalidTableID)
		return
	}

	var req struct {
		Rate float64 `json:"rate" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	result := tc.Manager.UpdateTableRate(gameType, tableID, req.Rate)
	if !result.Success {
		utils.RespondJSON(c, http.StatusBadRequest, result.Message, result)
		return
	}

	live.BroadcastRateUpdate(gameType, tableID, req.Rate)
	utils.RespondJSON(c, http.StatusOK, result.Message, result)
}

// ClearSessions -> reset tampilan recent sessions (storage tidak berubah)
func (tc *TableController) ClearSessions(c *gin.Context) {
	gameType := c.Param("game_type")
	tableID, err := strconv.Atoi(c.Param("table_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, ErrInvalidTableID)
		return
	}

	result := tc.Manager.ClearTableSessions(gameType, tableID)
	if !result.Success {
		utils.RespondJSON(c, http.StatusBadRequest, result.Message, result)
		return
	}

	utils.RespondJSON(c, http.StatusOK, result.Message, result)
}

var (
	ErrInvalidGameType = &CustomError{"Invalid game type"}
	ErrInvalidTableID  = &CustomError{"Invalid table ID"}
)
