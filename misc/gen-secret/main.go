package main

import (
	"crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"log"
)

// Prints a random value suitable for JWT_SECRET.
func main() {
	n := flag.Int("bytes", 32, "number of random bytes")
	flag.Parse()
	if *n < 16 {
		log.Fatal("use at least 16 bytes")
	}

	buf := make([]byte, *n)
	if _, err := rand.Read(buf); err != nil {
		log.Fatalf("Failed to read random bytes: %v", err)
	}
	fmt.Println(base64.RawURLEncoding.EncodeToString(buf))
}
