package plans

import (
	"net/http"

	"locaspace-backend/db"
	"locaspace-backend/models"
	"locaspace-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetPlans liste les plans du catalogue
// @Summary List subscription plans
// @Description Return every non-deleted plan with its benefits, ordered by rank
// @Tags plans
// @Produce json
// @Success 200 {array} models.Plan
// @Router /plans [get]
func GetPlans(c *gin.Context) {
	var plans []models.Plan
	err := db.DB.Preload("Benefits", func(tx *gorm.DB) *gorm.DB { return tx.Order("position asc") }).
		Where("status <> ?", models.PlanDeleted).
		Order("rank asc").
		Find(&plans).Error
	if err != nil {
		utils.LogError(err, "Erreur lors de la récupération des plans dans GetPlans")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching plans"})
		return
	}

	c.JSON(http.StatusOK, plans)
}

// GetPlanByID retourne un plan du catalogue
// @Summary Get a plan
// @Tags plans
// @Produce json
// @Param id path string true "ID of the plan"
// @Success 200 {object} models.Plan
// @Failure 404 {object} map[string]string "error: Plan not found"
// @Router /plans/{id} [get]
func GetPlanByID(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid plan ID"})
		return
	}

	var plan models.Plan
	if err := db.DB.Preload("Benefits").First(&plan, "id = ? AND status <> ?", id, models.PlanDeleted).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Plan not found"})
		return
	}

	c.JSON(http.StatusOK, plan)
}

// CreatePlan crée un plan (admin)
// @Summary Create a plan
// @Description Create a subscription plan with its benefit list (admin only)
// @Tags plans
// @Accept json
// @Produce json
// @Param plan body models.Plan true "Plan information"
// @Security BearerAuth
// @Success 201 {object} models.Plan
// @Failure 400 {object} map[string]string "error: Invalid input"
// @Router /plans [post]
func CreatePlan(c *gin.Context) {
	var plan models.Plan
	if err := c.ShouldBindJSON(&plan); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if plan.MonthlyPrice < 0 || plan.AnnualPrice < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Prices must be non-negative"})
		return
	}
	if plan.Status == "" {
		plan.Status = models.PlanActive
	}

	if err := db.DB.Create(&plan).Error; err != nil {
		utils.LogError(err, "Erreur lors de la création du plan dans CreatePlan")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating plan"})
		return
	}

	utils.LogSuccess("Plan créé avec succès dans CreatePlan")
	c.JSON(http.StatusCreated, plan)
}

// UpdatePlan met à jour un plan et remplace sa liste d'avantages (admin).
// Les compteurs déjà accordés aux abonnements ne sont jamais recalculés ici:
// ils ne changent qu'au prochain changement de plan.
// @Summary Update a plan
// @Tags plans
// @Accept json
// @Produce json
// @Param id path string true "ID of the plan"
// @Param plan body models.Plan true "Plan information"
// @Security BearerAuth
// @Success 200 {object} models.Plan
// @Failure 404 {object} map[string]string "error: Plan not found"
// @Router /plans/{id} [put]
func UpdatePlan(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid plan ID"})
		return
	}

	var plan models.Plan
	if err := db.DB.First(&plan, "id = ? AND status <> ?", id, models.PlanDeleted).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Plan not found"})
		return
	}

	var input models.Plan
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if input.MonthlyPrice < 0 || input.AnnualPrice < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Prices must be non-negative"})
		return
	}

	plan.Name = input.Name
	plan.Description = input.Description
	plan.MonthlyPrice = input.MonthlyPrice
	plan.AnnualPrice = input.AnnualPrice
	plan.MonthlyDurationDays = input.MonthlyDurationDays
	plan.AnnualDurationDays = input.AnnualDurationDays
	plan.Tier = input.Tier
	plan.Rank = input.Rank
	if input.Status != "" {
		plan.Status = input.Status
	}

	if err := db.DB.Save(&plan).Error; err != nil {
		utils.LogError(err, "Erreur lors de la mise à jour du plan dans UpdatePlan")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating plan"})
		return
	}

	// Remplacement complet de la liste d'avantages
	if input.Benefits != nil {
		if err := db.DB.Where("plan_id = ?", plan.ID).Delete(&models.PlanBenefit{}).Error; err != nil {
			utils.LogError(err, "Erreur lors du remplacement des avantages dans UpdatePlan")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating plan benefits"})
			return
		}
		for i := range input.Benefits {
			input.Benefits[i].ID = ""
			input.Benefits[i].PlanID = plan.ID
			input.Benefits[i].Position = i
		}
		if len(input.Benefits) > 0 {
			if err := db.DB.Create(&input.Benefits).Error; err != nil {
				utils.LogError(err, "Erreur lors de la création des avantages dans UpdatePlan")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating plan benefits"})
				return
			}
		}
		plan.Benefits = input.Benefits
	}

	utils.LogSuccess("Plan mis à jour avec succès dans UpdatePlan")
	c.JSON(http.StatusOK, plan)
}

// DeletePlan passe un plan au statut DELETED (admin). Soft delete: les
// abonnements existants gardent leurs compteurs jusqu'à leur prochain
// changement de plan.
// @Summary Delete a plan
// @Tags plans
// @Produce json
// @Param id path string true "ID of the plan"
// @Security BearerAuth
// @Success 200 {object} map[string]string "message: Plan deleted"
// @Failure 404 {object} map[string]string "error: Plan not found"
// @Router /plans/{id} [delete]
func DeletePlan(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid plan ID"})
		return
	}

	var plan models.Plan
	if err := db.DB.First(&plan, "id = ? AND status <> ?", id, models.PlanDeleted).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Plan not found"})
		return
	}

	if err := db.DB.Model(&plan).Update("status", models.PlanDeleted).Error; err != nil {
		utils.LogError(err, "Erreur lors de la suppression du plan dans DeletePlan")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting plan"})
		return
	}

	utils.LogSuccess("Plan supprimé avec succès dans DeletePlan")
	c.JSON(http.StatusOK, gin.H{"message": "Plan deleted"})
}
