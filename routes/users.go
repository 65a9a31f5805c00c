package routes

import (
	"locaspace-backend/handlers/users"
	"locaspace-backend/middleware"

	"github.com/gin-gonic/gin"
)

func UsersRoutes(r *gin.Engine) {
	r.POST("/user", users.CreateUser)
	r.POST("/login", users.Login)
	r.DELETE("/user/:id", middleware.JWTAuth(), users.DeleteUser)
}
