package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/panyam/connectus/cmd/connectus/commands"
)

func main() {
	// Optional .env for local development; absence is fine.
	if _, err := os.Stat(".env"); err == nil {
		godotenv.Load(".env")
	}
	commands.Execute()
}
