// Package keyrotation implements the cryptographic core of the feeds
// subsystem (spec §4.4): on every group membership change it mints a fresh
// symmetric key, wraps it for each active member under their public
// encryption key, and advances the group's key generation. It is always
// invoked from inside the caller's writable unit of work so that the
// participant mutation and the resulting rotation commit atomically (spec
// §4.3 ordering requirement).
package keyrotation

import (
	"context"
	"time"

	"github.com/ground-x/feedscore/crypto/ecies"
	"github.com/ground-x/feedscore/errs"
	flog "github.com/ground-x/feedscore/log"
	"github.com/ground-x/feedscore/identity"
	"github.com/ground-x/feedscore/metrics"
	"github.com/ground-x/feedscore/storage/repo"
	"github.com/ground-x/feedscore/types"
)

var logger = flog.NewModuleLogger(flog.KeyRotation)

// DefaultMaxGroupMembers is the hard cap a rotation fails above (spec §4.4
// step 2, §6) when NewEngine is given no positive cap; the caller normally
// wires the cap from configuration at construction time.
const DefaultMaxGroupMembers = 512

type Engine struct {
	identity       identity.IdentityStore
	maxGroupMembers int
}

func NewEngine(ids identity.IdentityStore, maxGroupMembers int) *Engine {
	if maxGroupMembers <= 0 {
		maxGroupMembers = DefaultMaxGroupMembers
	}
	return &Engine{identity: ids, maxGroupMembers: maxGroupMembers}
}

// TriggerRotation executes spec §4.4 steps 1-7 against rw, the caller's
// already-open writable unit of work. joining/leaving are optional address
// deltas applied to the active member set read at step 2. now is the
// caller's notion of "current block", usually the transaction's block
// index.
func (e *Engine) TriggerRotation(
	ctx context.Context,
	rw repo.ReaderWriter,
	feedId types.FeedId,
	now types.BlockIndex,
	trigger types.RotationTrigger,
	joining *types.Address,
	leaving *types.Address,
) (result *types.KeyGeneration, err error) {
	start := time.Now()
	defer func() {
		metrics.RotationDuration.Observe(time.Since(start).Seconds())
		outcome := "success"
		if err != nil {
			outcome = errs.KindOf(err).String()
		}
		metrics.RotationsTotal.WithLabelValues(triggerLabel(trigger), outcome).Inc()
	}()

	prev, exists, err := rw.GetMaxKeyGeneration(ctx, feedId)
	if err != nil {
		return nil, errs.Wrap(errs.Transient, err, "read current key generation")
	}
	if !exists {
		return nil, errs.New(errs.NotFound, "group does not exist")
	}

	members, err := rw.GetActiveGroupMemberAddresses(ctx, feedId, now)
	if err != nil {
		return nil, errs.Wrap(errs.Transient, err, "read active members")
	}
	memberSet := applyMembershipDelta(members, joining, leaving)
	if len(memberSet) == 0 {
		return nil, errs.New(errs.FailedPrecondition, "rotation would leave no active members")
	}
	if len(memberSet) > e.maxGroupMembers {
		return nil, errs.New(errs.Capacity, "group exceeds maximum member count")
	}

	groupKey, err := ecies.GenerateGroupKey()
	if err != nil {
		return nil, errs.Wrap(errs.CryptoFailure, err, "generate group key")
	}

	newVersion := prev + 1
	wrapped := make([]types.WrappedKey, 0, len(memberSet))
	for _, addr := range memberSet {
		encKey, err := e.identity.EncryptKeyFor(ctx, addr)
		if err != nil {
			return nil, errs.Wrap(errs.CryptoFailure, err, "missing identity for "+string(addr))
		}
		ciphertext, err := ecies.Encrypt([]byte(encKey), groupKey)
		if err != nil {
			return nil, errs.Wrap(errs.CryptoFailure, err, "wrap group key for "+string(addr))
		}
		if len(ciphertext) < ecies.MinCiphertextLen {
			return nil, errs.New(errs.CryptoFailure, "malformed public key for "+string(addr))
		}
		wrapped = append(wrapped, types.WrappedKey{
			FeedId:        feedId,
			Version:       newVersion,
			MemberAddress: addr,
			Ciphertext:    ciphertext,
		})
	}

	gen := types.KeyGeneration{
		FeedId:         feedId,
		Version:        newVersion,
		ValidFromBlock: now,
		Trigger:        trigger,
		EncryptedKeys:  wrapped,
	}

	if err := rw.CreateKeyRotation(ctx, gen); err != nil {
		return nil, errs.Wrap(errs.Transient, err, "persist key rotation")
	}
	if err := rw.UpdateCurrentKeyGeneration(ctx, feedId, newVersion); err != nil {
		return nil, errs.Wrap(errs.Transient, err, "advance current key generation")
	}

	logger.Info("rotated group key", "feedId", feedId.String(), "version", newVersion, "trigger", triggerLabel(trigger), "members", len(memberSet))
	return &gen, nil
}

// applyMembershipDelta adds `joining` (if not already present) and removes
// `leaving` from the active member set read at step 2 (spec §4.4 step 2,
// §4.4 exclusion semantics).
func applyMembershipDelta(members []types.Address, joining, leaving *types.Address) []types.Address {
	out := make([]types.Address, 0, len(members)+1)
	for _, m := range members {
		if leaving != nil && m == *leaving {
			continue
		}
		out = append(out, m)
	}
	if joining != nil {
		found := false
		for _, m := range out {
			if m == *joining {
				found = true
				break
			}
		}
		if !found {
			out = append(out, *joining)
		}
	}
	return out
}

func triggerLabel(t types.RotationTrigger) string {
	switch t {
	case types.TriggerJoin:
		return "join"
	case types.TriggerLeave:
		return "leave"
	case types.TriggerBan:
		return "ban"
	case types.TriggerUnban:
		return "unban"
	case types.TriggerManual:
		return "manual"
	default:
		return "unknown"
	}
}

// InGraceWindow reports whether a message encrypted under `candidate`
// remains acceptable when the group's current generation is `current`,
// given that the rotation to `current` became valid at `validFromBlock` and
// `now` is the block the message arrives in (spec §4.4 grace window, §8
// forward validity window). graceBlocks is configuration (default 4,
// meaning a 5-block window including the rotation block itself).
func InGraceWindow(candidate, current uint32, validFromBlock, now types.BlockIndex, graceBlocks uint64) bool {
	if candidate == current {
		return true
	}
	if current == 0 || candidate != current-1 {
		return false
	}
	return uint64(now) <= uint64(validFromBlock)+graceBlocks
}
