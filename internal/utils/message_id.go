package utils

import (
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// GenerateMessageID creates an RFC 5322 message id for outbound mail
func GenerateMessageID(domain string) string {
	id, err := gonanoid.Generate(idAlphabet, 12)
	if err != nil {
		panic(err)
	}
	if domain == "" {
		domain = "localhost"
	}

	localPart := fmt.Sprintf("%d.%s", time.Now().UnixMicro(), id)
	return fmt.Sprintf("<%s@%s>", localPart, domain)
}

func GenerateThreadID() string {
	id, err := gonanoid.Generate(idAlphabet, 16)
	if err != nil {
		panic(err)
	}
	return "thr_" + id
}
