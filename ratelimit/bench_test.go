package ratelimit_test

import (
	"strconv"
	"testing"
	"time"

	"github.com/jonwraymond/apiguard/ratelimit"
)

func BenchmarkAcquire(b *testing.B) {
	rl := ratelimit.New(ratelimit.Config{Limit: 1 << 30, Window: time.Hour})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = rl.Acquire("actor-1")
	}
}

func BenchmarkAcquire_ManyActors(b *testing.B) {
	rl := ratelimit.New(ratelimit.Config{Limit: 1 << 30, Window: time.Hour})
	actors := make([]string, 100)
	for i := range actors {
		actors[i] = "actor-" + strconv.Itoa(i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = rl.Acquire(actors[i%len(actors)])
	}
}

func BenchmarkCheck(b *testing.B) {
	rl := ratelimit.New(ratelimit.Config{})
	rl.Record("actor-1")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rl.Check("actor-1")
	}
}
