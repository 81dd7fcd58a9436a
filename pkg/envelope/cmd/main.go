package main

import (
	"fmt"
	"log"

	"github.com/dmitrymomot/twofactor/pkg/envelope"
)

func main() {
	// Generate base64-encoded master key material for environment variables
	encoded, err := envelope.GenerateEncodedKeyMaterial()
	if err != nil {
		log.Fatalf("Failed to generate key material: %v", err)
	}

	fmt.Printf("Generated key material (for TOTP_ENCRYPTION_KEY env var): \n———\n%s\n———\n", encoded)
}
