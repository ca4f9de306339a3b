package email

import (
	"context"
	"sync"
)

// bulkBatchSize bounds concurrent outbound connections to a vendor.
// Batch N+1 does not start until every send in batch N has settled.
const bulkBatchSize = 10

// sendFunc dispatches one message and reports the outcome.
type sendFunc func(ctx context.Context, msg *Message) (*SendResult, error)

// sendInBatches fans messages out in fixed-size batches, joining between
// batches. Results are positioned by input index, so output order always
// matches input order regardless of completion order. A single message's
// transport failure degrades to a failure result for that element only.
func sendInBatches(ctx context.Context, msgs []*Message, send sendFunc) []*SendResult {
	results := make([]*SendResult, len(msgs))

	for start := 0; start < len(msgs); start += bulkBatchSize {
		end := start + bulkBatchSize
		if end > len(msgs) {
			end = len(msgs)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				res, err := send(ctx, msgs[idx])
				if err != nil {
					res = failure(err)
				}
				if res == nil {
					res = &SendResult{Success: false, Error: "adapter returned no result"}
				}
				results[idx] = res
			}(i)
		}
		wg.Wait()
	}

	return results
}
