package controllers

import (
	"finboard/api"
	"finboard/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type UsersController struct {
	DB     *gorm.DB
	Logger *zap.SugaredLogger
}

func (u UsersController) GetCurrentUser(c *gin.Context) {
	user, err := models.GetUserByID(u.DB, CurrentUserID(c))
	if err != nil {
		u.Logger.Errorf("Error loading current user: %v", err)
		api.Internal(c)
		return
	}

	api.OK(c, user)
}
