package server

import (
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/kendall-kelly/autoparts-api/config"
	"github.com/kendall-kelly/autoparts-api/controllers"
	"github.com/kendall-kelly/autoparts-api/middleware"
	"github.com/kendall-kelly/autoparts-api/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Services are the long-lived collaborators built by main. Uploads may be
// nil when no bucket is configured.
type Services struct {
	Auth             *services.AuthService
	Google           *services.GoogleOAuthService
	Catalog          *services.CatalogService
	Orders           *services.OrderService
	ProblematicParts *services.ProblematicPartService
	Leads            *services.LeadService
	PaymentWebhooks  *services.PaymentWebhookService
	Uploads          *services.UploadService
	Notifier         *services.Notifier
}

// App is everything NewRouter needs
type App struct {
	Config   *config.Config
	DB       *gorm.DB
	Logger   *zap.Logger
	Services Services
}

// NewRouter builds the gin engine with every route of the API
func NewRouter(app App) (*gin.Engine, error) {
	binding.EnableDecoderDisallowUnknownFields = true
	useJSONFieldNames()

	requireToken, err := middleware.EnsureValidToken(app.Config, app.Logger)
	if err != nil {
		return nil, err
	}
	requireAdmin := middleware.RequireRole(middleware.RoleAdmin)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(app.Logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     app.Config.AllowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	svc := app.Services
	authController := controllers.NewAuthController(svc.Auth, svc.Google, app.Config, app.Logger)
	productController := controllers.NewProductController(svc.Catalog, app.Logger)
	orderController := controllers.NewOrderController(svc.Orders, app.Logger)
	partController := controllers.NewProblematicPartController(svc.ProblematicParts, app.Logger)
	leadController := controllers.NewLeadController(svc.Leads, app.Logger)
	paymentController := controllers.NewPaymentWebhookController(svc.PaymentWebhooks, app.Logger)
	eventsController := controllers.NewEventsController(svc.Notifier, app.Logger)

	health := &healthHandler{db: app.DB}

	api := router.Group("/api")
	{
		api.GET("/health", health.healthCheck)
		api.GET("/database/status", health.databaseStatus)

		auth := api.Group("/auth")
		{
			auth.POST("/register", authController.Register)
			auth.POST("/login", authController.Login)
			auth.POST("/verify-otp", authController.VerifyOTP)
			auth.GET("/google", authController.GoogleLogin)
			auth.GET("/google/callback", authController.GoogleCallback)
			auth.GET("/me", requireToken, authController.GetMe)
			auth.PUT("/me", requireToken, authController.UpdateMe)
		}

		api.GET("/products", productController.GetProducts)

		api.POST("/orders", orderController.CreateOrder)
		orders := api.Group("/orders", requireToken, requireAdmin)
		{
			orders.GET("", orderController.GetOrders)
			orders.GET("/:id", orderController.GetOrder)
			orders.PUT("/:id", orderController.UpdateOrder)
			orders.DELETE("/:id", orderController.DeleteOrder)
		}

		parts := api.Group("/problematic-parts", requireToken, requireAdmin)
		{
			parts.GET("", partController.List)
			parts.GET("/order/:orderId", partController.GetByOrder)
			parts.GET("/:id", partController.Get)
			parts.POST("", partController.Create)
			parts.PUT("/:id", partController.Update)
			parts.DELETE("/:id", partController.Delete)
		}

		api.GET("/webhook", leadController.VerifyWebhook)
		api.POST("/webhook", leadController.ReceiveWebhook)
		leads := api.Group("/leads", requireToken, requireAdmin)
		{
			leads.POST("/sync", leadController.SyncLeads)
			leads.GET("", leadController.ListLeads)
		}

		api.POST("/payments/webhook", paymentController.Receive)

		api.GET("/events", requireToken, requireAdmin, eventsController.Stream)
	}

	if svc.Uploads != nil {
		uploadController := controllers.NewUploadController(svc.Uploads, app.Logger)
		router.POST("/upload-single", requireToken, requireAdmin, uploadController.UploadSingle)
		router.POST("/upload-multiple", requireToken, requireAdmin, uploadController.UploadMultiple)
	} else {
		router.POST("/upload-single", requireToken, requireAdmin, storageNotConfigured)
		router.POST("/upload-multiple", requireToken, requireAdmin, storageNotConfigured)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Route not found",
			},
		})
	})

	return router, nil
}

func storageNotConfigured(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "CONFIG_ERROR",
			"message": "AWS_S3_BUCKET is not configured",
		},
	})
}

// useJSONFieldNames makes validation errors report JSON field names
func useJSONFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
}
