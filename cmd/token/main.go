// Command token mints a bearer token for the dashboard using JWT_SECRET.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"stock_chart/internal/app/config"
	jwtmw "stock_chart/internal/platform/jwt"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	envFile := flag.String("env", ".env", "path to the dotenv file")
	subject := flag.String("sub", "dashboard", "token subject")
	flag.Parse()

	cfg, err := config.Load(*configPath, *envFile)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	g, err := jwtmw.NewGenerator(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		slog.Error("failed to create generator", "error", err)
		os.Exit(1)
	}
	tok, err := g.GenerateToken(*subject)
	if err != nil {
		slog.Error("failed to sign token", "error", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
