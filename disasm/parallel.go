package disasm

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/artemijrodionov/sim8086/inst"
)

// decodeParallel splits data into one contiguous chunk per worker. Each
// goroutine owns its slice of the result, so no locking is needed.
func decodeParallel(ctx context.Context, data []byte, workers int, strict bool) ([]Line, error) {
	count := len(data) / InstSize
	lines := make([]Line, count)
	if workers > count {
		workers = count
	}
	perChunk := (count + workers - 1) / workers

	g, ctx := errgroup.WithContext(ctx)
	for start := 0; start < count; start += perChunk {
		end := min(start+perChunk, count)
		g.Go(func() (err error) {
			defer recoverFault(&err)
			defer guardFaults()()
			for i := start; i < end; i++ {
				if i%4096 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				offset := i * InstSize
				lines[i] = decodeAt(offset, inst.WordFromBytes(data[offset], data[offset+1]), strict)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return lines, nil
}
