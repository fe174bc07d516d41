package api

import (
	"github.com/hashicorp/go-uuid"

	"github.com/ground-x/feedscore/types"
)

func newTransactionId() (types.TransactionId, error) {
	var id types.TransactionId
	b, err := uuid.GenerateRandomBytes(len(id))
	if err != nil {
		return id, err
	}
	copy(id[:], b)
	return id, nil
}
