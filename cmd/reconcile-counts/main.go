// Command-line tool to recompute every job's applicantsCount from the applicants collection.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sachin-security/sachin-security-sub000/internal/config"
	"github.com/sachin-security/sachin-security-sub000/internal/controller/job"
	"github.com/sachin-security/sachin-security-sub000/internal/database"
	"github.com/sachin-security/sachin-security-sub000/internal/utilities"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	logger := utilities.NewLogger(os.Stderr, cfg.Log.Level)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Database failed to initialize: %v", err)
	}
	defer func() { _ = db.Close(context.Background()) }()

	fixes, err := job.ReconcileApplicantCounts(ctx, db, logger)
	if err != nil {
		log.Fatalf("Reconcile failed: %v", err)
	}

	if len(fixes) == 0 {
		fmt.Println("✅ All applicant counts are consistent.")
		return
	}
	for _, fix := range fixes {
		fmt.Printf("%s: %d -> %d\n", fix.JobID, fix.From, fix.To)
	}
	fmt.Printf("✅ Repaired %d job(s).\n", len(fixes))
}
