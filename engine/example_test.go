package engine_test

import (
	"context"
	"fmt"
	"syscall"
	"time"

	"github.com/jonwraymond/apiguard/classify"
	"github.com/jonwraymond/apiguard/engine"
)

func ExampleEngine_ExecuteWithRetry() {
	eng := engine.New(engine.Config{
		Timeout:    time.Second,
		MaxRetries: 2,
		BaseDelay:  10 * time.Millisecond,
	})
	defer eng.Close()

	calls := 0
	result := eng.ExecuteWithRetry(context.Background(), "fetch posts",
		func(ctx context.Context) (any, error) {
			calls++
			if calls == 1 {
				return nil, syscall.ECONNRESET
			}
			return "posts", nil
		})

	fmt.Println(result.Success)
	fmt.Println(result.Attempts)
	fmt.Println(result.Data)
	// Output:
	// true
	// 2
	// posts
}

func ExampleEngine_ExecuteWithRetry_nonRetryable() {
	eng := engine.New(engine.Config{MaxRetries: 3})
	defer eng.Close()

	result := eng.ExecuteWithRetry(context.Background(), "fetch posts",
		func(ctx context.Context) (any, error) {
			return nil, &classify.StatusError{StatusCode: 401}
		})

	fmt.Println(result.Success)
	fmt.Println(result.Attempts)
	fmt.Println(result.Err.Type)
	// Output:
	// false
	// 1
	// authentication
}

func ExampleDetectFailurePattern() {
	var history []*classify.ClassifiedError
	for i := 0; i < 5; i++ {
		history = append(history, classify.Classify("fetch posts", context.DeadlineExceeded))
	}

	pattern := engine.DetectFailurePattern(history)
	fmt.Println(pattern.Pattern)
	fmt.Println(pattern.Severity)
	// Output:
	// high_timeout_rate
	// high
}
