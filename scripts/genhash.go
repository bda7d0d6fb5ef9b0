// Command genhash prints a bcrypt hash and an INSERT statement for a user,
// for seeding accounts by hand.
//
//	go run ./scripts/genhash.go -email ana@example.com -nombre "Ana" -role admin -password secret
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"cv-tracker-backend/internal/domain"
	"cv-tracker-backend/pkg/security"
)

func main() {
	email := flag.String("email", "", "user email")
	nombre := flag.String("nombre", "", "display name")
	role := flag.String("role", domain.RoleRecruiter, "admin or recruiter")
	password := flag.String("password", "", "plain password")
	flag.Parse()

	if *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "email and password are required")
		os.Exit(2)
	}
	if *role != domain.RoleAdmin && *role != domain.RoleRecruiter {
		fmt.Fprintln(os.Stderr, "role must be admin or recruiter")
		os.Exit(2)
	}

	hash, err := security.HashPassword(*password)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	quote := func(s string) string { return "'" + strings.ReplaceAll(s, "'", "''") + "'" }
	fmt.Printf("Hash: %s\n\n", hash)
	fmt.Printf("INSERT INTO users (email, nombre, role, password_hash) VALUES (%s, %s, %s, %s);\n",
		quote(strings.ToLower(*email)), quote(*nombre), quote(*role), quote(hash))
}
