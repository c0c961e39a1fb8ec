package main

import (
	"flag"
	"fmt"
	"os"

	"chaski/internal/shared/auth"
	"chaski/internal/shared/config"
)

func main() {
	token := flag.String("token", "", "JWT token to verify")
	flag.Parse()

	if *token == "" {
		fmt.Fprintln(os.Stderr, "Error: -token flag is required")
		fmt.Fprintln(os.Stderr, "Usage: go run cmd/verify-jwt/main.go -token=<JWT_TOKEN>")
		os.Exit(1)
	}

	// Загружаем конфигурацию (тот же способ, что и в сервисах)
	cfg := config.Load()

	jwtService := auth.NewJWTService(cfg.JWT)

	claims, err := jwtService.ValidateToken(*token)
	if err != nil {
		fmt.Printf("token validation FAILED: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("token is valid")
	fmt.Printf("  user_id: %s\n", claims.UserID)
	fmt.Printf("  email:   %s\n", claims.Email)
	fmt.Printf("  role:    %s\n", claims.Role)
	fmt.Printf("  expires: %s\n", claims.ExpiresAt.Time)
}
