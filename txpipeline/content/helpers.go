// Package content holds the stateless validators (spec §4.2): one file per
// payload kind. Each handler reads only from the readonly unit of work and
// the current block, and decides solely from that input — no mutable state
// observed or produced.
package content

import (
	"context"
	"strings"
	"time"

	"github.com/ground-x/feedscore/errs"
	"github.com/ground-x/feedscore/storage"
	"github.com/ground-x/feedscore/txpipeline"
	"github.com/ground-x/feedscore/types"
)

func stamp(tx txpipeline.Transaction) *txpipeline.ValidatedTransaction {
	return &txpipeline.ValidatedTransaction{Transaction: tx, ValidatedAt: time.Now()}
}

func nonBlank(addr types.Address) bool {
	return strings.TrimSpace(string(addr)) != ""
}

func validTitle(title string) bool {
	trimmed := strings.TrimSpace(title)
	return trimmed != "" && len(title) <= 100
}

func uniqueAddresses(addrs []types.Address) bool {
	seen := make(map[types.Address]struct{}, len(addrs))
	for _, a := range addrs {
		if _, exists := seen[a]; exists {
			return false
		}
		seen[a] = struct{}{}
	}
	return true
}

func requireAdmin(ctx context.Context, ro *storage.UnitOfWork, feedId types.FeedId, addr types.Address) error {
	isAdmin, err := ro.Reader.IsAdmin(ctx, feedId, addr)
	if err != nil {
		return errs.Wrap(errs.Transient, err, "check admin status")
	}
	if !isAdmin {
		return errs.New(errs.PermissionDenied, "requester is not an admin of this group")
	}
	return nil
}

func requireGroupExists(ctx context.Context, ro *storage.UnitOfWork, feedId types.FeedId) (*types.GroupFeed, error) {
	gf, err := ro.Reader.GetGroupFeed(ctx, feedId)
	if err != nil {
		return nil, errs.Wrap(errs.Transient, err, "read group feed")
	}
	if gf == nil {
		return nil, errs.New(errs.NotFound, "group feed does not exist")
	}
	return gf, nil
}

func requireNotDeleted(gf *types.GroupFeed) error {
	if gf.IsDeleted {
		return errs.New(errs.FailedPrecondition, "group has been deleted")
	}
	return nil
}
