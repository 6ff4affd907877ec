package main

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/dharmasatrya/tripbuilder/internal/catalog"
	"github.com/dharmasatrya/tripbuilder/internal/config"
	"github.com/dharmasatrya/tripbuilder/internal/session"
)

// startScheduler keeps the catalog cache warm and sweeps expired in-memory
// drafts.
func startScheduler(cfg config.Config, cat *catalog.Service, drafts session.Store, log logrus.FieldLogger) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc(cfg.CatalogRefreshSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		snap, err := cat.Refresh(ctx)
		if err != nil {
			log.WithError(err).Warn("Catalog refresh failed")
			return
		}
		log.WithFields(logrus.Fields{
			"hotels":    len(snap.Hotels),
			"transport": len(snap.Transport),
			"services":  len(snap.Services),
		}).Debug("Catalog refreshed")
	})
	if err != nil {
		return nil, err
	}

	if mem, ok := drafts.(*session.MemoryStore); ok {
		_, err := c.AddFunc("@every 1h", func() {
			if n := mem.Sweep(); n > 0 {
				log.WithField("removed", n).Info("Expired drafts removed")
			}
		})
		if err != nil {
			return nil, err
		}
	}

	c.Start()
	log.WithField("schedule", cfg.CatalogRefreshSchedule).Info("Catalog refresh scheduled")
	return c, nil
}
