package main

import (
	"github.com/joho/godotenv"

	"cashflow-engine/cmd"
)

func main() {
	// Optional .env; absence is fine.
	_ = godotenv.Load()

	cmd.Execute()
}
