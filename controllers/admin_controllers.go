package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/h21s/table-tracker/models"
	"github.com/h21s/table-tracker/services"
	"github.com/h21s/table-tracker/utils"
)

var startedAt = time.Now()

type AdminController struct {
	Ledger  *services.CustomerLedger
	Manager *services.TableManager
}

func NewAdminController(ledger *services.CustomerLedger, manager *services.TableManager) *AdminController {
	return &AdminController{Ledger: ledger, Manager: manager}
}

// GetTodayStats -> agregat hari ini untuk dashboard
func (ac *AdminController) GetTodayStats(c *gin.Context) {
	stats, err := ac.Ledger.GetTodayStats()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Today stats", stats)
}

// GetTopCustomers -> n pembelanja terbesar (default 5)
func (ac *AdminController) GetTopCustomers(c *gin.Context) {
	limit := 5
	if s := c.Query("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}

	top, err := ac.Ledger.GetTopCustomers(limit)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Top customers", top)
}

// SystemStatus -> uptime + ringkasan status meja + jumlah customer
func (ac *AdminController) SystemStatus(c *gin.Context) {
	tableCounts := map[string]int{}
	for _, gameType := range []string{models.GameSnooker, models.GamePool} {
		for _, view := range ac.Manager.GetTables(gameType) {
			tableCounts[view.Status]++
		}
	}

	stats, err := ac.Ledger.GetTodayStats()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "System status", gin.H{
		"uptime_seconds":  int(time.Since(startedAt).Seconds()),
		"tables":          tableCounts,
		"total_customers": stats.TotalCustomers,
		"today_amount":    stats.TodayTotalAmount,
	})
}
