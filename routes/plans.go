package routes

import (
	"locaspace-backend/handlers/plans"
	"locaspace-backend/middleware"

	"github.com/gin-gonic/gin"
)

func PlansRoutes(r *gin.Engine) {
	planRoutes := r.Group("/plans")
	{
		planRoutes.GET("", plans.GetPlans)
		planRoutes.GET("/:id", plans.GetPlanByID)
		planRoutes.POST("", middleware.AdminAuth(), plans.CreatePlan)
		planRoutes.PUT("/:id", middleware.AdminAuth(), plans.UpdatePlan)
		planRoutes.DELETE("/:id", middleware.AdminAuth(), plans.DeletePlan)
	}
}
