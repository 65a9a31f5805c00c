package routes

import (
	"locaspace-backend/handlers/subscriptions"
	"locaspace-backend/middleware"

	"github.com/gin-gonic/gin"
)

func SubscriptionsRoutes(r *gin.Engine) {
	subscriptionRoutes := r.Group("/user-abonnements")
	subscriptionRoutes.Use(middleware.JWTAuth())
	{
		subscriptionRoutes.POST("", subscriptions.CreateSubscription)
		subscriptionRoutes.PUT("/:userId", subscriptions.UpdateSubscription)
		subscriptionRoutes.GET("/:userId", subscriptions.GetSubscription)
		subscriptionRoutes.DELETE("/:id", subscriptions.DeleteSubscription)
		subscriptionRoutes.POST("/:userId/prestations/:kind/consume", subscriptions.ConsumePrestationHandler)
	}
}
