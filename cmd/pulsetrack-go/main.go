package main

import (
	"log"

	"github.com/VelourMedia/pulsetrack-go/internal/application/startup"
)

func main() {
	if err := startup.Initialize(); err != nil {
		log.Fatalf("pulsetrack failed to start: %v", err)
	}

	log.Println("pulsetrack shut down cleanly")
}
