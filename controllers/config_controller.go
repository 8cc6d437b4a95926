package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/membership/models"
	"github.com/cppla/membership/utils"
)

// ConfigController serves read-only point configuration to clients.
type ConfigController struct {
	rate int
}

func NewConfigController(rate int) *ConfigController { return &ConfigController{rate: rate} }

// GetPoints returns the accumulation rate and the supported membership types.
func (c *ConfigController) GetPoints(ctx *gin.Context) {
	types := make([]gin.H, 0, len(models.MembershipTypes()))
	for _, t := range models.MembershipTypes() {
		types = append(types, gin.H{"type": t, "displayName": t.DisplayName()})
	}
	utils.Success(ctx, gin.H{
		"rate":            c.rate,
		"membershipTypes": types,
	})
}
