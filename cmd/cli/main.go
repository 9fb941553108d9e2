package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/sceneforge/sceneforge/cmd/cli/commands"
)

func main() {
	// Load environment variables from .env file if present
	_ = godotenv.Load()

	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
