package pkg

import (
	"math/rand"
	"time"
)

const letters = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

var src = rand.New(rand.NewSource(time.Now().UnixNano()))

// RandString returns a game code of n characters. Not safe for concurrent use;
// callers hold their own lock.
func RandString(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = letters[src.Intn(len(letters))]
	}
	return string(b)
}
