package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/h21s/table-tracker/models"
	"github.com/h21s/table-tracker/services"
	"github.com/h21s/table-tracker/utils"
)

type CustomerController struct {
	Ledger *services.CustomerLedger
}

func NewCustomerController(ledger *services.CustomerLedger) *CustomerController {
	return &CustomerController{Ledger: ledger}
}

// SearchCustomers -> cari customer by nama atau telepon
func (cc *CustomerController) SearchCustomers(c *gin.Context) {
	term := c.Query("term")
	if len(strings.TrimSpace(term)) < 2 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("search term must be at least 2 characters"))
		return
	}

	customers, err := cc.Ledger.SearchCustomers(term)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Search results", customers)
}

// AddCustomer -> registrasi customer baru (phone unik)
func (cc *CustomerController) AddCustomer(c *gin.Context) {
	var req struct {
		Name  string `json:"name" binding:"required"`
		Phone string `json:"phone" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	name := strings.TrimSpace(req.Name)
	phone := strings.TrimSpace(req.Phone)
	if len(name) < 2 || len(phone) < 10 {
		utils.RespondError(c, http.StatusBadRequest,
			errors.New("name must be at least 2 characters and phone at least 10 digits"))
		return
	}

	customer, err := cc.Ledger.AddCustomer(name, phone)
	if err != nil {
		if errors.Is(err, services.ErrDuplicatePhone) {
			utils.RespondError(c, http.StatusConflict, err)
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("New customer registered: %s (%s)", customer.Name, customer.Phone)
	utils.RespondJSON(c, http.StatusCreated, "Customer added", customer)
}

// GetAllCustomers -> semua customer, pembelanja terbesar duluan
func (cc *CustomerController) GetAllCustomers(c *gin.Context) {
	customers, err := cc.Ledger.GetAllCustomers()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of customers", customers)
}

// AssignAmount -> bebankan hasil sesi meja ke satu customer
func (cc *CustomerController) AssignAmount(c *gin.Context) {
	var req struct {
		CustomerID  uint     `json:"customer_id" binding:"required"`
		Amount      *float64 `json:"amount" binding:"required"`
		Minutes     *float64 `json:"minutes" binding:"required"`
		Description string   `json:"description"`
		GameType    string   `json:"game_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.GameType == "" {
		req.GameType = models.GamePool
	}

	username := c.GetString("username")
	err := cc.Ledger.AddAmountToCustomer(req.CustomerID, *req.Amount, *req.Minutes,
		req.Description, username, req.GameType)
	if err != nil {
		if errors.Is(err, services.ErrCustomerNotFound) {
			utils.RespondError(c, http.StatusNotFound, err)
			return
		}
		if errors.Is(err, services.ErrNegativeValue) {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	msg := fmt.Sprintf("%s added to customer balance", utils.FormatCurrency(*req.Amount))
	utils.InfoLogger.Printf("Assigned %.2f (%d) to customer %d by %s",
		*req.Amount, int(*req.Minutes), req.CustomerID, username)
	utils.RespondJSON(c, http.StatusOK, msg, nil)
}

// AdjustBalance -> koreksi saldo manual. Amount negatif hanya untuk admin.
func (cc *CustomerController) AdjustBalance(c *gin.Context) {
	var req struct {
		CustomerID      uint     `json:"customer_id" binding:"required"`
		Amount          *float64 `json:"amount" binding:"required"`
		TransactionType string   `json:"transaction_type" binding:"required"` // credit, debit
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.TransactionType != models.TxTypeCredit && req.TransactionType != models.TxTypeDebit {
		utils.RespondError(c, http.StatusBadRequest, errors.New("transaction_type must be credit or debit"))
		return
	}

	// Pengurangan saldo hanya boleh oleh admin — kebijakan di caller,
	// ledger sendiri tidak membedakan.
	if *req.Amount < 0 && c.GetString("role") != "admin" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	username := c.GetString("username")
	err := cc.Ledger.AdjustCustomerBalance(req.CustomerID, *req.Amount, req.TransactionType, username)
	if err != nil {
		if errors.Is(err, services.ErrCustomerNotFound) {
			utils.RespondError(c, http.StatusNotFound, err)
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	action := "added to"
	if *req.Amount < 0 {
		action = "subtracted from"
	}
	msg := fmt.Sprintf("%s %s customer balance", utils.FormatCurrency(abs(*req.Amount)), action)
	utils.RespondJSON(c, http.StatusOK, msg, nil)
}

// SplitAssign -> bagi tagihan rata ke beberapa pemain. Posting per pemain
// independen; yang gagal dilaporkan, yang sudah sukses tidak di-rollback.
func (cc *CustomerController) SplitAssign(c *gin.Context) {
	var req struct {
		CustomerIDs []uint   `json:"customer_ids" binding:"required"`
		Amount      *float64 `json:"amount" binding:"required"`  // per pemain
		Minutes     *float64 `json:"minutes" binding:"required"` // per pemain
		Description string   `json:"description"`
		GameType    string   `json:"game_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if len(req.CustomerIDs) == 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("no players given"))
		return
	}
	if req.GameType == "" {
		req.GameType = models.GamePool
	}

	username := c.GetString("username")
	results := cc.Ledger.SplitAssign(req.CustomerIDs, *req.Amount, *req.Minutes,
		req.Description, username, req.GameType)

	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}

	code := http.StatusOK
	msg := fmt.Sprintf("Split bill assigned to %d players", succeeded)
	if succeeded < len(results) {
		// Partial failure — laporkan apa adanya, jangan pura-pura atomic.
		code = http.StatusMultiStatus
		msg = fmt.Sprintf("Split bill: %d of %d players charged", succeeded, len(results))
	}

	utils.InfoLogger.Printf("Split assign by %s: %d/%d players at %.2f each",
		username, succeeded, len(results), *req.Amount)
	utils.RespondJSON(c, code, msg, results)
}

// GetCustomerByID -> detail satu customer
func (cc *CustomerController) GetCustomerByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("customer_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid customer id"))
		return
	}

	customer, err := cc.Ledger.GetCustomerByID(uint(id))
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Customer detail", customer)
}

// EditCustomer -> ubah nama/telepon (admin only)
func (cc *CustomerController) EditCustomer(c *gin.Context) {
	if c.GetString("role") != "admin" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	id, err := strconv.Atoi(c.Param("customer_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid customer id"))
		return
	}

	var req struct {
		Name  string `json:"name" binding:"required"`
		Phone string `json:"phone" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := cc.Ledger.EditCustomer(uint(id), strings.TrimSpace(req.Name), strings.TrimSpace(req.Phone)); err != nil {
		switch {
		case errors.Is(err, services.ErrCustomerNotFound):
			utils.RespondError(c, http.StatusNotFound, err)
		case errors.Is(err, services.ErrDuplicatePhone):
			utils.RespondError(c, http.StatusConflict, err)
		default:
			utils.RespondError(c, http.StatusInternalServerError, err)
		}
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Customer updated", gin.H{"customer_id": id})
}

// DeleteCustomer -> hapus customer beserta transaksinya (admin only)
func (cc *CustomerController) DeleteCustomer(c *gin.Context) {
	if c.GetString("role") != "admin" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	id, err := strconv.Atoi(c.Param("customer_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid customer id"))
		return
	}

	if err := cc.Ledger.DeleteCustomer(uint(id)); err != nil {
		if errors.Is(err, services.ErrCustomerNotFound) {
			utils.RespondError(c, http.StatusNotFound, err)
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Customer %d deleted by %s", id, c.GetString("username"))
	utils.RespondJSON(c, http.StatusOK, "Customer deleted", gin.H{"customer_id": id})
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
