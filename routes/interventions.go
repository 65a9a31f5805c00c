package routes

import (
	"locaspace-backend/handlers/interventions"
	"locaspace-backend/middleware"

	"github.com/gin-gonic/gin"
)

func InterventionsRoutes(r *gin.Engine) {
	interventionRoutes := r.Group("/interventions")
	interventionRoutes.Use(middleware.JWTAuth())
	{
		interventionRoutes.POST("", interventions.CreateIntervention)
		interventionRoutes.GET("", interventions.GetInterventions)
		interventionRoutes.POST("/:id/payment", interventions.PayIntervention)
	}
}
