// Command-line tool to clean the database by dropping every collection the API writes to.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/sachin-security/sachin-security-sub000/internal/config"
	"github.com/sachin-security/sachin-security-sub000/internal/database"
	"github.com/sachin-security/sachin-security-sub000/internal/model"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Warning message
	fmt.Printf("⚠️ WARNING: This command will DROP %s from the %q database.\n",
		strings.Join(model.Collections, ", "), cfg.Database.Driver)
	fmt.Println("This action is irreversible. Do you want to continue? (yes/no): ")

	// Ask for confirmation
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		log.Fatalf("Failed to read input: %v", err)
	}
	input = strings.TrimSpace(strings.ToLower(input))

	if input != "yes" {
		fmt.Println("Operation cancelled.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Database failed to initialize: %v", err)
	}
	defer func() { _ = db.Close(context.Background()) }()

	if err := db.Drop(ctx, model.Collections...); err != nil {
		log.Fatalf("failed to execute drop command: %v", err)
	}

	fmt.Println("✅ All collections dropped successfully.")
}
