package utils

import (
	"biblio/database"
	"biblio/models"
	"fmt"
	"log"
	"time"

	"github.com/jinzhu/now"
	"github.com/robfig/cron/v3"
)

// logScheduler logs scheduler events with timestamp
func logScheduler(message string) {
	log.Printf("[RATING-SCHEDULER %s] %s", time.Now().Format(time.RFC3339), message)
}

// reconcileRatingProjections re-derives the rating projection for every book
// with comment activity since the start of the previous day. The projection is
// already maintained transactionally on each mutation; this sweep repairs
// drift after manual data fixes or restored backups.
func reconcileRatingProjections() {
	db := database.Database.Db
	since := now.BeginningOfDay().AddDate(0, 0, -1)

	var bookIDs []uint
	if err := db.Model(&models.Comment{}).Unscoped().
		Where("updated_at >= ? OR deleted_at >= ?", since, since).
		Distinct("book_id").
		Pluck("book_id", &bookIDs).Error; err != nil {
		logScheduler("Error fetching books with recent comment activity: " + err.Error())
		return
	}

	repaired := 0
	for _, id := range bookIDs {
		if err := RecalculateBookRating(db, id); err != nil {
			logScheduler("Error reconciling rating projection: " + err.Error())
			continue
		}
		repaired++
	}

	if repaired > 0 {
		logScheduler(fmt.Sprintf("Reconciled rating projection for %d book(s)", repaired))
	}
}

// StartRatingReconciler schedules the nightly projection sweep
func StartRatingReconciler(c *cron.Cron) {
	c.AddFunc("30 3 * * *", func() {
		reconcileRatingProjections()
	})
	logScheduler("Rating reconciler started - runs daily at 03:30")
}

// InitializeSchedulers initializes all background schedulers
func InitializeSchedulers() *cron.Cron {
	logScheduler("Initializing schedulers...")

	c := cron.New()
	StartRatingReconciler(c)
	c.Start()

	logScheduler("All schedulers initialized successfully")
	return c
}
