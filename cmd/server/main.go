package main

import (
	"log"

	"foodgram/internal/transport/http"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := http.Run(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
