package curation

import (
	"context"
	"log"

	"curator/kafka"
	"curator/types"
)

// NewConsumerHandler adapts the curator to the curation topic.
// Requests missing an item id or URL are poison and get marked away;
// a curation failure leaves the message unmarked so the queue
// redelivers it, which the idempotent item upsert makes safe.
func NewConsumerHandler(curator *Curator) kafka.MessageHandler {
	return &kafka.TypedMessageHandler[types.CurationRequest]{
		Validate: func(req *types.CurationRequest) bool {
			if req.ItemID == "" || req.URL == "" {
				log.Printf("Skipping curation request missing item_id or url")
				return false
			}
			return true
		},
		Process: func(ctx context.Context, req *types.CurationRequest) error {
			_, err := curator.Curate(ctx, req)
			return err
		},
		AlwaysMark: true,
	}
}
