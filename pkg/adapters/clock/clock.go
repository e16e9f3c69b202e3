// Package clock provides the production Clock: system time, UUID
// identifiers and SHA-256 content hashing.
package clock

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// SystemClock implements ports.Clock with the real time source.
type SystemClock struct{}

// NewSystemClock creates the production clock.
func NewSystemClock() *SystemClock {
	return &SystemClock{}
}

// Now returns the current time.
func (c *SystemClock) Now() time.Time {
	return time.Now()
}

// NewID returns a new UUIDv4 string.
func (c *SystemClock) NewID() string {
	return uuid.New().String()
}

// Hash returns the hex-encoded SHA-256 digest of data.
func (c *SystemClock) Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
