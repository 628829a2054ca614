package ratelimit_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonwraymond/apiguard/classify"
	"github.com/jonwraymond/apiguard/ratelimit"
)

func ExampleLimiter_Acquire() {
	rl := ratelimit.New(ratelimit.Config{Limit: 2, Window: time.Hour})

	fmt.Println(rl.Acquire("actor-1"))
	fmt.Println(rl.Acquire("actor-1"))
	fmt.Println(errors.Is(rl.Acquire("actor-1"), ratelimit.ErrLimited))
	// Output:
	// <nil>
	// <nil>
	// true
}

func ExampleLimiter_ExecuteWithRetry() {
	rl := ratelimit.New(ratelimit.Config{})

	calls := 0
	data, err := rl.ExecuteWithRetry(context.Background(), "fetch posts",
		func(ctx context.Context) (any, error) {
			calls++
			if calls == 1 {
				return nil, &classify.StatusError{StatusCode: 503}
			}
			return "posts", nil
		},
		ratelimit.Policy{BaseDelay: 10 * time.Millisecond},
		"actor-1",
	)

	fmt.Println(data, err)
	fmt.Println(rl.Usage("actor-1"))
	// Output:
	// posts <nil>
	// 2
}
