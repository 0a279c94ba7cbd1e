package router

import (
	"time"

	"github.com/igor-spalenza/GesN-sub003/internal/config"
	"github.com/igor-spalenza/GesN-sub003/internal/handler"
	"github.com/igor-spalenza/GesN-sub003/internal/middleware"
	"github.com/igor-spalenza/GesN-sub003/internal/repository"
	"github.com/igor-spalenza/GesN-sub003/internal/service"
	"github.com/igor-spalenza/GesN-sub003/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// Repositories
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	hierarchyRepo := repository.NewHierarchyRepository(db)
	compositeRepo := repository.NewCompositeRepository(db)
	demandRepo := repository.NewDemandRepository(db)
	productionOrderRepo := repository.NewProductionOrderRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// Services
	authSvc := service.NewAuthService(userRepo, cfg)
	productSvc := service.NewProductService(productRepo)
	hierarchySvc := service.NewHierarchyService(hierarchyRepo)
	compositeSvc := service.NewCompositeService(compositeRepo, productRepo, hierarchyRepo)
	demandSvc := service.NewDemandService(demandRepo, productRepo, productionOrderRepo, dispatcher)
	productionOrderSvc := service.NewProductionOrderService(productionOrderRepo, productRepo, dispatcher)
	orderSvc := service.NewOrderService(orderRepo, productRepo, demandSvc)

	// Handlers
	healthH := handler.NewHealthHandler(db)
	authH := handler.NewAuthHandler(authSvc)
	productsH := handler.NewProductsHandler(productSvc)
	hierarchiesH := handler.NewHierarchiesHandler(hierarchySvc)
	compositeH := handler.NewCompositeHandler(compositeSvc)
	demandsH := handler.NewDemandsHandler(demandSvc)
	productionOrdersH := handler.NewProductionOrdersHandler(productionOrderSvc)
	ordersH := handler.NewOrdersHandler(orderSvc)

	// Public
	r.GET("/health", healthH.Check)

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: operator, planner, admin — writes need planner or admin
		read := middleware.RequireRole("operator", "planner", "admin")
		write := middleware.RequireRole("planner", "admin")
		adminOnly := middleware.RequireRole("admin")

		products := v1.Group("/products")
		{
			products.GET("", read, productsH.List)
			products.GET("/:id", read, productsH.GetByID)
			products.GET("/type/:type", read, productsH.GetByType)
			products.POST("", write, productsH.Create)
			products.PUT("/:id", write, productsH.Update)
			products.PATCH("/:id/deactivate", write, productsH.Deactivate)
			products.PATCH("/:id/reactivate", write, productsH.Reactivate)
			products.GET("/:id/group-items", read, productsH.ListGroupItems)
			products.POST("/:id/group-items", write, productsH.AddGroupItem)
			products.GET("/:id/exchange-rules", read, productsH.ListExchangeRules)
			products.POST("/:id/exchange-rules", write, productsH.AddExchangeRule)
			products.DELETE("/:id", adminOnly, productsH.Delete)
		}

		hierarchies := v1.Group("/hierarchies")
		{
			hierarchies.GET("", read, hierarchiesH.Search)
			hierarchies.GET("/active", read, hierarchiesH.ListActive)
			hierarchies.GET("/usage", read, hierarchiesH.UsageCounts)
			hierarchies.GET("/top-used", read, hierarchiesH.TopUsed)
			hierarchies.GET("/:id", read, hierarchiesH.GetByID)
			hierarchies.GET("/:id/components", read, hierarchiesH.ListComponents)
			hierarchies.POST("", write, hierarchiesH.Create)
			hierarchies.PUT("/:id", write, hierarchiesH.Update)
			hierarchies.PATCH("/:id/activate", write, hierarchiesH.Activate)
			hierarchies.PATCH("/:id/deactivate", write, hierarchiesH.Deactivate)
			hierarchies.POST("/:id/components", write, hierarchiesH.AddComponent)
			hierarchies.DELETE("/components/:componentId", write, hierarchiesH.DeactivateComponent)
			hierarchies.DELETE("/:id", adminOnly, hierarchiesH.Delete)
		}

		relations := v1.Group("/composite/relations")
		{
			relations.GET("", read, compositeH.Search)
			relations.GET("/:id", read, compositeH.GetRelation)
			relations.POST("", write, compositeH.CreateRelation)
			relations.PUT("/:id", write, compositeH.UpdateRelation)
			relations.DELETE("/:id", write, compositeH.DeleteRelation)
			relations.POST("/batch", write, compositeH.CreateBatch)
			relations.PATCH("/batch/status", write, compositeH.UpdateStatusBatch)
			relations.POST("/batch/delete", write, compositeH.DeleteBatch)
			relations.POST("/duplicate", write, compositeH.DuplicateConfiguration)
		}

		composite := v1.Group("/composite/products/:productId")
		{
			composite.GET("/relations", read, compositeH.ListByProduct)
			composite.GET("/next-assembly-order", read, compositeH.NextAssemblyOrder)
			composite.GET("/components", read, compositeH.ListComponentLinks)
			composite.GET("/validate", read, compositeH.ValidateConfiguration)
		}
		v1.POST("/composite/components", write, compositeH.AddComponentLink)
		v1.DELETE("/composite/components/:id", write, compositeH.RemoveComponentLink)

		demands := v1.Group("/demands")
		{
			demands.GET("", read, demandsH.List)
			demands.GET("/overdue", read, demandsH.ListOverdue)
			demands.GET("/due-soon", read, demandsH.ListDueSoon)
			demands.GET("/:id", read, demandsH.GetByID)
			demands.POST("", write, demandsH.Create)
			demands.POST("/:id/confirm", write, demandsH.Confirm)
			demands.POST("/:id/produced", write, demandsH.MarkAsProduced)
			demands.POST("/:id/ending", write, demandsH.MarkAsEnding)
			demands.POST("/:id/delivered", write, demandsH.MarkAsDelivered)
			demands.PATCH("/:id/production-order", write, demandsH.AttachProductionOrder)
			demands.DELETE("/:id", write, demandsH.Delete)
		}

		productionOrders := v1.Group("/production-orders")
		{
			productionOrders.GET("", read, productionOrdersH.List)
			productionOrders.GET("/overdue", read, productionOrdersH.ListOverdue)
			productionOrders.GET("/due-soon", read, productionOrdersH.ListDueSoon)
			productionOrders.GET("/efficiency", read, productionOrdersH.EfficiencyReport)
			productionOrders.GET("/:id", read, productionOrdersH.GetByID)
			productionOrders.POST("", write, productionOrdersH.Create)
			productionOrders.POST("/:id/schedule", write, productionOrdersH.Schedule)
			productionOrders.POST("/:id/start", write, productionOrdersH.Start)
			productionOrders.POST("/:id/pause", write, productionOrdersH.Pause)
			productionOrders.POST("/:id/resume", write, productionOrdersH.Resume)
			productionOrders.POST("/:id/complete", write, productionOrdersH.Complete)
			productionOrders.POST("/:id/cancel", write, productionOrdersH.Cancel)
			productionOrders.POST("/:id/fail", write, productionOrdersH.Fail)
			productionOrders.DELETE("/:id", write, productionOrdersH.Delete)
		}

		orders := v1.Group("/orders")
		{
			orders.GET("", read, ordersH.List)
			orders.GET("/:id", read, ordersH.GetByID)
			orders.POST("", write, ordersH.Create)
			orders.POST("/items/:itemId/send-to-production", write, ordersH.SendItemToProduction)
		}
	}

	return r
}
