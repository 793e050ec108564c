package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"gocausal/cmd"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
