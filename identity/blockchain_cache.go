package identity

import (
	"context"

	"github.com/ground-x/feedscore/storage"
	"github.com/ground-x/feedscore/types"
)

// StorageBlockchainCache stands in for the real consensus/chain-head
// tracker at the node's boundary (spec §1 non-goals: block production is
// outside the feeds core). It derives "now" from the storage layer's own
// last-block bookkeeping: one past the highest lastBlockIndex any feed has
// recorded so far, so BlockIndex still advances strictly with every
// applied transaction even with no real block producer attached.
type StorageBlockchainCache struct {
	storage *storage.Service
}

func NewStorageBlockchainCache(storageSvc *storage.Service) *StorageBlockchainCache {
	return &StorageBlockchainCache{storage: storageSvc}
}

func (c *StorageBlockchainCache) LastBlockIndex(ctx context.Context) (types.BlockIndex, error) {
	ro := c.storage.CreateReadOnly(ctx)
	indexes, err := ro.Reader.GetAllLastBlockIndexes(ctx)
	if err != nil {
		return 0, err
	}
	var max types.BlockIndex
	for _, at := range indexes {
		if at > max {
			max = at
		}
	}
	return max + 1, nil
}
