package workpool

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWorkerPoolExitWhenNoWork(t *testing.T) {
	numWorkers := 5
	outputs := make(chan int, numWorkers)

	worker := func(ctx context.Context) bool {
		outputs <- 1
		return false
	}
	closer := func() {
		close(outputs)
	}
	pool := NewWithClose(numWorkers, worker, closer)

	pool.Run(context.Background())
	sum := 0
	for result := range outputs {
		sum += result
	}

	assert.Equal(t, numWorkers, sum)
}

func TestWorkerPoolWithWorkToDo(t *testing.T) {
	numInputs := 100
	inputs := make(chan int, numInputs)
	outputs := make(chan int, numInputs)

	worker := func(ctx context.Context) bool {
		i, ok := <-inputs
		if !ok {
			return false
		}
		outputs <- i
		return true
	}
	pool := NewWithClose(4, worker, func() { close(outputs) })

	go func() {
		for i := 0; i < numInputs; i++ {
			inputs <- i + 1
		}
		close(inputs)
	}()

	pool.Run(context.Background())
	sum := 0
	for result := range outputs {
		sum += result
	}

	assert.Equal(t, numInputs*(numInputs+1)/2, sum)
}

func TestWorkerPoolCancel(t *testing.T) {
	var calls atomic.Int64
	worker := func(ctx context.Context) bool {
		calls.Add(1)
		<-ctx.Done()
		return true
	}
	pool := New(3, worker)

	done := make(chan struct{})
	go func() {
		pool.Run(context.Background())
		close(done)
	}()

	assert.Eventually(t, func() bool { return calls.Load() == 3 }, time.Second, 5*time.Millisecond)
	pool.Cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pool did not stop after Cancel")
	}
	assert.Equal(t, int64(3), calls.Load())
}

func TestWorkerPoolContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	New(0, func(ctx context.Context) bool {
		called = true
		return false
	}).Run(ctx)

	assert.False(t, called)
}
