package kafka

import (
	"context"

	"curator/types"
)

// CurationDispatcher publishes curation requests onto the curation
// topic, keyed by item id so re-dispatches of one item stay ordered.
type CurationDispatcher struct {
	producer *Producer
}

// NewCurationDispatcher wraps a producer bound to the curation topic.
func NewCurationDispatcher(producer *Producer) *CurationDispatcher {
	return &CurationDispatcher{producer: producer}
}

// Dispatch implements the scan worker's downstream contract.
func (d *CurationDispatcher) Dispatch(_ context.Context, req *types.CurationRequest) error {
	return d.producer.Publish(req.ItemID, req)
}
