package main

import (
	"log"

	"github.com/MrSnakeDoc/fleetview/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		log.Fatalf("❌ fleetview failed to initialize: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("❌ fleetview failed to start: %v", err)
	}
}
