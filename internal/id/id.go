package id

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"sync/atomic"
	"time"
)

var fallbackSeq atomic.Uint64

// New returns a 32 character hex identifier. If the system random source
// fails it degrades to a time and sequence based id that is still unique
// within the process.
func New() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fallback(time.Now())
	}
	return hex.EncodeToString(b[:])
}

// Valid reports whether s looks like an id produced by New.
func Valid(s string) bool {
	if len(s) != 32 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

func fallback(now time.Time) string {
	seq := fallbackSeq.Add(1)
	var b [16]byte
	copy(b[:8], strconv.AppendInt(nil, now.UnixNano(), 16))
	copy(b[8:], strconv.AppendUint(nil, seq, 16))
	return hex.EncodeToString(b[:])
}
