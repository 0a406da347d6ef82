// Command-line tool that generates an admin identity for the ADMIN_USERS setting.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/sachin-security/sachin-security-sub000/internal/model"
)

// generateRandomString creates a random hex string of length n
func generateRandomString(n int) string {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		log.Fatal(err)
	}
	return hex.EncodeToString(bytes)
}

func main() {
	name := flag.String("name", "Administrator", "display name")
	role := flag.String("role", model.RoleAdmin, "role (admin or hr)")
	flag.Parse()

	if *role != model.RoleAdmin && *role != model.RoleHR {
		log.Fatalf("unknown role %q", *role)
	}

	username := "admin_" + generateRandomString(4)
	password := generateRandomString(8)

	// Hash the password before storing
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("failed to hash password: ", err)
	}

	entry, err := json.Marshal(model.Identity{
		UserID:      username,
		DisplayName: *name,
		Role:        *role,
		Password:    string(hashedPassword),
	})
	if err != nil {
		log.Fatal("failed to encode identity: ", err)
	}

	// Print credentials (only show plain password here!)
	fmt.Println("Admin credentials generated successfully!")
	fmt.Println("======================================")
	fmt.Printf("Username: %s\n", username)
	fmt.Printf("Password: %s\n", password)
	fmt.Println("======================================")
	fmt.Println("Add this entry to the ADMIN_USERS array:")
	fmt.Println(string(entry))

	os.Exit(0)
}
