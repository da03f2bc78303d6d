package main

import (
	"github.com/joho/godotenv"
)

func main() {
	// Optional .env for local runs; real deployments set the environment.
	_ = godotenv.Load()
	execute()
}
