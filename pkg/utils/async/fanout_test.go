package async_test

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/digione/xnatsync/pkg/utils/async"
)

func TestMap(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps input order", func(t *testing.T) {
		items := []int{5, 1, 4, 2, 3}
		got, err := async.Map(ctx, 3, items, func(ctx context.Context, n int) (string, error) {
			time.Sleep(time.Duration(n) * time.Millisecond)
			return strconv.Itoa(n), nil
		})
		gt.NoError(t, err).Required()
		gt.Equal(t, got, []string{"5", "1", "4", "2", "3"})
	})

	t.Run("respects concurrency limit", func(t *testing.T) {
		var running, peak int32
		items := make([]int, 20)

		_, err := async.Map(ctx, 2, items, func(ctx context.Context, _ int) (int, error) {
			n := atomic.AddInt32(&running, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&running, -1)
			return 0, nil
		})
		gt.NoError(t, err)
		gt.True(t, atomic.LoadInt32(&peak) <= 2)
	})

	t.Run("limit below one runs sequentially", func(t *testing.T) {
		var running, peak int32
		_, err := async.Map(ctx, 0, []int{1, 2, 3}, func(ctx context.Context, _ int) (int, error) {
			n := atomic.AddInt32(&running, 1)
			if n > atomic.LoadInt32(&peak) {
				atomic.StoreInt32(&peak, n)
			}
			atomic.AddInt32(&running, -1)
			return 0, nil
		})
		gt.NoError(t, err)
		gt.Equal(t, atomic.LoadInt32(&peak), int32(1))
	})

	t.Run("returns first error", func(t *testing.T) {
		boom := errors.New("boom")
		got, err := async.Map(ctx, 1, []int{1, 2, 3}, func(ctx context.Context, n int) (int, error) {
			if n == 2 {
				return 0, boom
			}
			return n, nil
		})
		gt.Error(t, err)
		gt.True(t, errors.Is(err, boom))
		gt.Value(t, got).Nil()
	})

	t.Run("empty input", func(t *testing.T) {
		got, err := async.Map(ctx, 4, []int{}, func(ctx context.Context, n int) (int, error) {
			return n, nil
		})
		gt.NoError(t, err)
		gt.A(t, got).Length(0)
	})
}
