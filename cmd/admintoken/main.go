// admintoken は管理エンドポイント用のJWTを ADMIN_JWT_SECRET で発行します。
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	jwtmw "alpha_sentiment/internal/platform/jwt"
)

func main() {
	subject := flag.String("sub", "operator", "token subject")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	_ = godotenv.Load(".env")
	secret := os.Getenv(jwtmw.EnvKeyJWTSecret)
	if secret == "" {
		fmt.Fprintln(os.Stderr, jwtmw.EnvKeyJWTSecret+" is not set")
		os.Exit(1)
	}

	token, err := jwtmw.NewGenerator(secret, *ttl).GenerateToken(*subject, jwtmw.RoleAdmin)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(token)
}
