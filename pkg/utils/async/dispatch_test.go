package async_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/toolforge/pkg/utils/async"
)

func TestDispatchRunsHandlerDetached(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var called atomic.Bool
	var sawCanceled atomic.Bool

	async.Dispatch(ctx, func(ctx context.Context) error {
		time.Sleep(10 * time.Millisecond)
		sawCanceled.Store(ctx.Err() != nil)
		called.Store(true)
		return nil
	})
	cancel()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), time.Second)
	defer waitCancel()
	gt.NoError(t, async.Wait(waitCtx))

	gt.Bool(t, called.Load()).True()
	gt.Bool(t, sawCanceled.Load()).False()
}

func TestDispatchSurvivesErrorAndPanic(t *testing.T) {
	ctx := context.Background()
	async.Dispatch(ctx, func(ctx context.Context) error {
		return errors.New("boom")
	})
	async.Dispatch(ctx, func(ctx context.Context) error {
		panic("unexpected")
	})

	waitCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	gt.NoError(t, async.Wait(waitCtx))
}
