package transfer

import (
	"fmt"

	"github.com/pyropy/relstore/core/errs"
)

type result[T any] struct {
	index int
	value T
	err   error
}

// fanOut runs task(i) for every i in [0, n) on its own goroutine, at most
// limit at a time when limit > 0. Results arrive in completion order. The
// channel is buffered for all n results, so a caller that stops reading
// after the first failure leaves no goroutine blocked on send.
func fanOut[T any](op string, n, limit int, task func(i int) (T, error)) <-chan result[T] {
	results := make(chan result[T], n)

	var sem chan struct{}
	if limit > 0 && limit < n {
		sem = make(chan struct{}, limit)
	}

	for i := 0; i < n; i++ {
		go func(i int) {
			if sem != nil {
				sem <- struct{}{}
				defer func() { <-sem }()
			}

			results <- runTask(op, i, task)
		}(i)
	}

	return results
}

// runTask turns a panicking task into an ErrJoin result.
func runTask[T any](op string, i int, task func(i int) (T, error)) (res result[T]) {
	res.index = i

	defer func() {
		if r := recover(); r != nil {
			res.err = errs.New(op, errs.ErrJoin, fmt.Errorf("chunk %d: %v", i, r))
		}
	}()

	res.value, res.err = task(i)
	return res
}
