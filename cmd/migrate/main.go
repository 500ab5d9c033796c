// Command migrate applies the schema without starting the server. Useful in
// deploy pipelines where migration runs as its own step.
package main

import (
	"log"

	"github.com/techieroshan/studentsupport/config"
	"github.com/techieroshan/studentsupport/database"
)

func main() {
	cfg := config.LoadConfig()

	// Connect migrates as a side effect; calling it here makes the schema
	// step explicit and fails fast on a bad connection.
	if _, err := database.Connect(cfg); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("Schema is up to date")
}
