// Package scheduler porte la tâche de fond qui rétrograde les abonnements
// échus sur le plan gratuit par défaut.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"locaspace-backend/db"
	"locaspace-backend/handlers/subscriptions"
	"locaspace-backend/models"
	"locaspace-backend/utils"
)

const defaultSweepInterval = time.Hour

// Sweeper exécute le balayage des abonnements expirés à intervalle fixe. Il
// appartient au cycle de vie du process: démarré par main, arrêté par Stop
// (ou l'annulation du contexte), jamais lancé en effet de bord d'import.
type Sweeper struct {
	Interval time.Duration

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// NewSweeper lit l'intervalle depuis SWEEP_INTERVAL (durée Go, ex: "1h"),
// avec une cadence horaire par défaut.
func NewSweeper() *Sweeper {
	interval := defaultSweepInterval
	if v := os.Getenv("SWEEP_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			interval = d
		} else {
			utils.LogError(err, "SWEEP_INTERVAL invalide, cadence horaire conservée")
		}
	}
	return &Sweeper{Interval: interval}
}

// Start lance la boucle de balayage dans une goroutine dédiée.
func (s *Sweeper) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)

		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := RunSweep(); err != nil {
					utils.LogError(err, "Le balayage des abonnements expirés a échoué")
				}
			}
		}
	}()
}

// Stop arrête la boucle et attend la fin du balayage en cours.
func (s *Sweeper) Stop() {
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
			<-s.done
		}
	})
}

// RunSweep rétrograde tous les abonnements actifs dont la date de fin est
// passée. Le plan gratuit par défaut manquant est une erreur de configuration
// qui avorte le run entier; une ligne en échec est loggée puis ignorée pour ne
// pas bloquer le reste du lot. Idempotent: la rétrogradation passe end_date à
// nil, donc un second run ne retrouve aucune de ces lignes.
func RunSweep() error {
	// Invariant de déploiement vérifié avant de toucher la moindre ligne
	if _, err := subscriptions.DefaultFreePlan(); err != nil {
		if errors.Is(err, subscriptions.ErrDefaultPlanMissing) {
			utils.LogError(err, "Configuration fatale: aucun plan gratuit actif, balayage annulé")
		}
		return err
	}

	var expired []models.Subscription
	err := db.DB.
		Where("status = ? AND end_date IS NOT NULL AND end_date <= ?", models.SubscriptionActive, time.Now()).
		Find(&expired).Error
	if err != nil {
		return err
	}

	if len(expired) == 0 {
		return nil
	}

	downgraded := 0
	for i := range expired {
		if err := subscriptions.DowngradeToDefault(&expired[i]); err != nil {
			utils.LogErrorWithUser(expired[i].UserID, err, "Rétrogradation impossible, ligne ignorée")
			continue
		}
		downgraded++
	}

	utils.LogSuccess(fmt.Sprintf("Balayage terminé: %d/%d abonnements rétrogradés", downgraded, len(expired)))
	return nil
}
