package server

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/crowdgate/ticketline/config"
	"github.com/crowdgate/ticketline/internal/handlers"
	"github.com/crowdgate/ticketline/internal/host"
	"github.com/crowdgate/ticketline/internal/middleware"
	"github.com/crowdgate/ticketline/internal/store"
)

func Start() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %v", err)
	}

	rt, err := config.InitRuntime()
	if err != nil {
		return fmt.Errorf("failed to initialize runtime: %v", err)
	}

	r := gin.Default()

	setupRoutes(r, db, rt, store.NewGormStore(db))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return r.Run(":" + port)
}

func setupRoutes(r *gin.Engine, db *gorm.DB, rt *host.Runtime, st store.LedgerStore) {
	r.Use(middleware.DatabaseMiddleware(db))
	r.Use(middleware.RuntimeMiddleware(rt))
	r.Use(middleware.StoreMiddleware(st))

	public := r.Group("/v1")
	{
		public.POST("/register", handlers.Register)
		public.POST("/login", handlers.Login)

		eventPublic := public.Group("/events")
		{
			eventPublic.GET("", handlers.ListEvents)
			eventPublic.GET("/:address", handlers.GetEvent)
			eventPublic.GET("/:address/balances/:holder", handlers.GetBalanceOf)
			eventPublic.GET("/:address/tickets/:id", handlers.CheckTicket)
			eventPublic.GET("/:address/supply", handlers.GetSupply)
		}
	}

	protected := r.Group("/v1")
	protected.Use(middleware.JWTAuthMiddleware())
	{
		protected.POST("/codes", handlers.RegisterCode)
		protected.POST("/passes/validate", handlers.ValidateTicketPass)

		eventProtected := protected.Group("/events")
		{
			eventProtected.POST("", handlers.CreateEvent)
			eventProtected.GET("/:address/owner", handlers.GetOwner)
			eventProtected.GET("/:address/balance", handlers.GetBalance)
			eventProtected.GET("/:address/pass/:id", handlers.GenerateTicketPass)
			eventProtected.POST("/:address/mint", handlers.MintTickets)
			eventProtected.POST("/:address/transfer", handlers.TransferTickets)
			eventProtected.POST("/:address/add", handlers.AddTicket)
			eventProtected.POST("/:address/remove", handlers.RemoveTicket)
			eventProtected.POST("/:address/supply/increase", handlers.IncreaseSupply)
		}
	}
}
