package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"
)

var (
	// Counter for sequential IDs
	idCounter uint64
)

// GenerateID generates a unique ID
func GenerateID() string {
	count := atomic.AddUint64(&idCounter, 1)

	// Combine timestamp with counter for uniqueness
	timestamp := time.Now().UnixNano()
	return fmt.Sprintf("%x-%x", timestamp, count)
}

// GenerateWorkspaceID generates a scratch-directory name unique across
// concurrent evaluations (8 random bytes hex-encoded, counter fallback).
func GenerateWorkspaceID() string {
	b := make([]byte, 8)
	_, err := rand.Read(b)
	if err != nil {
		return "ws-" + GenerateID()
	}
	return "ws-" + hex.EncodeToString(b)
}
