// Command genkey prints a random signing key suitable for AUTH_SIGNING_KEY.
package main

import (
	"crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"log"
)

func main() {
	size := flag.Int("bytes", 32, "key length in bytes before base64 encoding")
	flag.Parse()

	if *size < 32 {
		log.Fatalf("key must be at least 32 bytes, got %d", *size)
	}

	key := make([]byte, *size)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("reading random bytes: %v", err)
	}
	fmt.Println(base64.StdEncoding.EncodeToString(key))
}
