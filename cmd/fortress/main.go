package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/fortresslabs/fortress/cmd/fortress/cmd"
)

func main() {
	// .env carries telegram credentials in development; absence is fine.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
