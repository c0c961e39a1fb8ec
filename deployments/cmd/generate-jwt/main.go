package main

import (
	"flag"
	"fmt"
	"os"

	"chaski/internal/shared/auth"
	"chaski/internal/shared/config"
)

func main() {
	userID := flag.String("user", "550e8400-e29b-41d4-a716-446655440000", "User ID (UUID)")
	email := flag.String("email", "test@chaski.pe", "Email address")
	role := flag.String("role", "sender", "Role (sender|courier|both|admin)")
	flag.Parse()

	cfg := config.Load()

	jwtService := auth.NewJWTService(cfg.JWT)

	token, err := jwtService.GenerateToken(*userID, *email, *role)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating JWT token: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nJWT token generated\n\n")
	fmt.Printf("User ID:   %s\n", *userID)
	fmt.Printf("Email:     %s\n", *email)
	fmt.Printf("Role:      %s\n", *role)
	fmt.Printf("\nToken:\n%s\n", token)
	fmt.Printf("\nExample curl:\n")
	fmt.Printf("curl -X POST http://localhost:3000/packages \\\n")
	fmt.Printf("  -H 'Authorization: Bearer %s' \\\n", token)
	fmt.Printf("  -H 'Content-Type: application/json' \\\n")
	fmt.Printf("  -d '{\n")
	fmt.Printf("    \"size\": \"small\",\n")
	fmt.Printf("    \"weight_kg\": 1.5,\n")
	fmt.Printf("    \"pickup_address\": \"Av. Arequipa 1234, Lima\",\n")
	fmt.Printf("    \"pickup_lat\": -12.0464,\n")
	fmt.Printf("    \"pickup_lng\": -77.0428,\n")
	fmt.Printf("    \"dropoff_address\": \"Av. El Sol 567, Cusco\",\n")
	fmt.Printf("    \"dropoff_lat\": -13.5320,\n")
	fmt.Printf("    \"dropoff_lng\": -71.9675\n")
	fmt.Printf("  }'\n\n")
}
