package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/h21s/table-tracker/controllers"
	"github.com/h21s/table-tracker/middlewares"
	"github.com/h21s/table-tracker/services"
)

func SetupRouter(db *gorm.DB, manager *services.TableManager, ledger *services.CustomerLedger) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	// Inisialisasi controller
	userCtrl := controllers.NewUserController(db)
	tableCtrl := controllers.NewTableController(manager)
	customerCtrl := controllers.NewCustomerController(ledger)
	adminCtrl := controllers.NewAdminController(ledger, manager)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Rate limiter untuk login
	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/login", userCtrl.Login)
	}

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	api := r.Group("/api")
	api.Use(middlewares.AuthMiddleware())

	api.GET("/profile", userCtrl.GetProfile)

	// TABLES
	api.GET("/tables/:game_type", tableCtrl.GetTables)
	api.POST("/tables/:game_type/:table_id/action", tableCtrl.TableAction)
	api.POST("/tables/:game_type/:table_id/rate", tableCtrl.UpdateRate)
	api.POST("/tables/:game_type/:table_id/clear-sessions", tableCtrl.ClearSessions)

	// CUSTOMERS
	api.GET("/customers/search", customerCtrl.SearchCustomers)
	api.GET("/customers/all", customerCtrl.GetAllCustomers)
	api.POST("/customers/add", customerCtrl.AddCustomer)
	api.POST("/customers/assign-amount", customerCtrl.AssignAmount)
	api.POST("/customers/adjust-balance", customerCtrl.AdjustBalance)
	api.POST("/customers/split-assign", customerCtrl.SplitAssign)
	api.GET("/customers/:customer_id", customerCtrl.GetCustomerByID)
	api.POST("/customers/:customer_id/edit", customerCtrl.EditCustomer)
	api.POST("/customers/:customer_id/delete", customerCtrl.DeleteCustomer)

	// STATS (dashboard)
	api.GET("/stats/today", adminCtrl.GetTodayStats)
	api.GET("/stats/top-customers", adminCtrl.GetTopCustomers)
	api.GET("/system/status", adminCtrl.SystemStatus)

	// USERS (admin only, dicek di controller)
	api.POST("/users/add", userCtrl.Register)
	api.GET("/users", userCtrl.GetAllUsers)
	api.POST("/users/remove", userCtrl.DeleteUser)

	// WebSocket live view — token lewat query string
	ws := r.Group("/ws")
	ws.Use(middlewares.WebSocketAuthMiddleware())
	{
		ws.GET("", controllers.LiveHandler)
	}

	return r
}
