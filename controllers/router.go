package controllers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Router struct {
	DB *gorm.DB

	HealthController     *HealthController
	AuthController       *AuthController
	UsersController      *UsersController
	ValuationController  *ValuationController
	IndicatorsController *IndicatorsController
	FeedsController      *FeedsController
}

func (r Router) RegisterRoutes(router gin.IRouter) {
	//
	// Anonymous requests
	//
	router.GET("/health", r.HealthController.Status)

	router.POST("/auth/signup", r.AuthController.SignUp)
	router.POST("/auth/login", r.AuthController.Login)

	router.GET("/valuation/dcf/:ticker", r.ValuationController.GetDCF)
	router.POST("/valuation/dcf/:ticker/calculate", r.ValuationController.CalculateDCF)
	router.GET("/valuation/ai-score/:ticker", r.ValuationController.GetAIScore)
	router.POST("/valuation/ai-score/:ticker/calculate", r.ValuationController.CalculateAIScore)
	router.GET("/valuation/:ticker", r.ValuationController.GetValuation)
	router.GET("/valuation/:ticker/history", r.ValuationController.GetHistory)

	router.GET("/indicators/:ticker", r.IndicatorsController.GetIndicators)

	router.GET("/feeds/:id/items", r.FeedsController.GetItems)

	//
	// Authorized requests
	//
	authorized := router.Group("/", RequireAuth(r.DB))
	authorized.GET("/users/me", r.UsersController.GetCurrentUser)
	authorized.POST("/feeds/import", r.FeedsController.Import)
	authorized.GET("/feeds", r.FeedsController.ListFeeds)
}
