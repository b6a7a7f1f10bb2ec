package api

import (
	"github.com/gin-gonic/gin"

	"github.com/waterbills/waterbills/internal/api/cron"
	v1 "github.com/waterbills/waterbills/internal/api/v1"
	"github.com/waterbills/waterbills/internal/rest/middleware"
)

type Handlers struct {
	Building *v1.BuildingHandler
	Meter    *v1.MeterHandler
	Invoice  *v1.InvoiceHandler
	Payment  *v1.PaymentHandler
	Cron     *cron.BillingHandler
}

func NewRouter(handlers Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.ErrorHandler())

	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers)

	cronGroup := router.Group("/cron")
	registerCronRoutes(cronGroup, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	buildings := router.Group("/buildings")
	{
		buildings.POST("", handlers.Building.CreateBuilding)
		buildings.GET("", handlers.Building.ListBuildings)
		buildings.GET("/:id", handlers.Building.GetBuilding)
		buildings.POST("/:id/premises", handlers.Building.CreatePremise)
		buildings.GET("/:id/premises", handlers.Building.ListPremises)
		buildings.PUT("/:id/settings", handlers.Building.UpsertSettings)
		buildings.GET("/:id/usage", handlers.Building.PreviewUsage)
		buildings.POST("/:id/invoices/generate", handlers.Invoice.GenerateBuildingInvoices)
		buildings.GET("/:id/invoices", handlers.Invoice.ListBuildingInvoices)
	}

	meters := router.Group("/meters")
	{
		meters.POST("", handlers.Meter.CreateMeter)
	}

	readings := router.Group("/readings")
	{
		readings.POST("", handlers.Meter.CreateReading)
		readings.GET("", handlers.Meter.ListReadings)
	}

	invoices := router.Group("/invoices")
	{
		invoices.POST("/generate", handlers.Invoice.GenerateInvoice)
		invoices.GET("/:id", handlers.Invoice.GetInvoice)
		invoices.POST("/:id/payments", handlers.Payment.ApplyPayment)
		invoices.POST("/:id/payments/pending", handlers.Payment.RecordPendingPayment)
	}

	payments := router.Group("/payments")
	{
		payments.POST("/gateway/callback", handlers.Payment.GatewayCallback)
		payments.GET("/:id/receipt", handlers.Payment.GetReceipt)
	}
}

func registerCronRoutes(router *gin.RouterGroup, handlers Handlers) {
	billing := router.Group("/billing")
	{
		billing.POST("/generate-invoices", handlers.Cron.GenerateInvoices)
		billing.POST("/recalculate-penalties", handlers.Cron.RecalculatePenalties)
		billing.POST("/evaluate-disconnections", handlers.Cron.EvaluateDisconnections)
	}
}
