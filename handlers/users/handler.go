package users

import (
	"net/http"

	"locaspace-backend/db"
	"locaspace-backend/handlers/subscriptions"
	"locaspace-backend/models"
	"locaspace-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// CreateUser inscrit un utilisateur et crée son abonnement gratuit par défaut
// @Summary Create a new user
// @Description Create a user account and its default free subscription
// @Tags users
// @Accept json
// @Produce json
// @Param user body models.User true "User information"
// @Success 201 {object} map[string]interface{} "message, email"
// @Failure 400 {object} map[string]string "error: Invalid input"
// @Failure 500 {object} map[string]string "error: Error message"
// @Router /user [post]
func CreateUser(c *gin.Context) {
	var user models.User
	if err := c.ShouldBindJSON(&user); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	user.Password = hashPassword(user.Password)
	if user.Role == "" || user.Role == models.AdminRole {
		user.Role = models.RenterRole
	}
	user.Enable = true

	if err := db.DB.Create(&user).Error; err != nil {
		utils.LogError(err, "Erreur lors de la création de l'utilisateur dans CreateUser")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Tout compte démarre sur le plan gratuit, sans date d'expiration
	plan, err := subscriptions.DefaultFreePlan()
	if err != nil {
		utils.LogErrorWithUser(user.ID, err, "Plan gratuit par défaut introuvable dans CreateUser")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Default plan is not configured"})
		return
	}
	if _, err := subscriptions.Create(models.SubscriptionCreate{UserID: user.ID, PlanID: plan.ID}); err != nil {
		utils.LogErrorWithUser(user.ID, err, "Erreur lors de la création de l'abonnement dans CreateUser")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating default subscription"})
		return
	}

	utils.LogSuccessWithUser(user.ID, "Utilisateur créé avec succès dans CreateUser")
	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"email":   user.Email,
	})
}

// Login authentifie un utilisateur et retourne un JWT
// @Summary Log a user in
// @Tags users
// @Accept json
// @Produce json
// @Param credentials body models.UserLogin true "Credentials"
// @Success 200 {object} map[string]string "token"
// @Failure 401 {object} map[string]string "error: Invalid credentials"
// @Router /login [post]
func Login(c *gin.Context) {
	var creds models.UserLogin
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	var user models.User
	if err := db.DB.First(&user, "email = ?", creds.Email).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(creds.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := utils.GenerateJWT(user, 24)
	if err != nil {
		utils.LogErrorWithUser(user.ID, err, "Erreur lors de la génération du token dans Login")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error generating token"})
		return
	}

	utils.LogSuccessWithUser(user.ID, "Connexion réussie dans Login")
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// DeleteUser supprime un compte et son abonnement (hard delete)
// @Summary Delete a user account
// @Description Delete the user and hard delete their subscription row
// @Tags users
// @Produce json
// @Param id path string true "ID of the user"
// @Security BearerAuth
// @Success 200 {object} map[string]string "message: User deleted"
// @Failure 404 {object} map[string]string "error: User not found"
// @Router /user/{id} [delete]
func DeleteUser(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var user models.User
	if err := db.DB.First(&user, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := db.DB.Where("user_id = ?", user.ID).Delete(&models.Subscription{}).Error; err != nil {
		utils.LogErrorWithUser(user.ID, err, "Erreur lors de la suppression de l'abonnement dans DeleteUser")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting subscription"})
		return
	}
	if err := db.DB.Delete(&user).Error; err != nil {
		utils.LogErrorWithUser(user.ID, err, "Erreur lors de la suppression de l'utilisateur dans DeleteUser")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting user"})
		return
	}

	utils.LogSuccessWithUser(user.ID, "Utilisateur supprimé avec succès dans DeleteUser")
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

func hashPassword(password string) string {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return string(hashedPassword)
}
