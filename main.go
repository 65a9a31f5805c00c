package main

import (
	"context"
	"log"

	"locaspace-backend/db"
	"locaspace-backend/routes"
	"locaspace-backend/scheduler"

	"github.com/gin-gonic/gin"
)

// @title API LocaSpace Backend
// @version 1.0
// @description API de gestion locative: abonnements, plans et interventions
// @host localhost:8080
// @BasePath /
// @SecurityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Entrez le JWT avec le préfixe Bearer: Bearer <JWT>
func main() {

	gin.SetMode(gin.ReleaseMode)

	db.InitDB()

	// Le balayage des abonnements expirés appartient au cycle de vie du
	// process: démarré ici, arrêté avant la sortie
	sweeper := scheduler.NewSweeper()
	sweeper.Start(context.Background())
	defer sweeper.Stop()

	r := routes.SetupRouter()

	if err := r.Run(":8080"); err != nil {
		log.Fatal("Erreur lors du démarrage du serveur:", err)
	}
}
