// Package engine is the single authoritative store of the token economy. It
// composes the ledger, staking pool, crowdfunding market and carbon market
// behind one lock, checks roles, and records every committed mutation in an
// append-only change log.
package engine

import (
	"context"
	"sync"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/carbonpledge-labs/token-economy-engine/internal/carbon"
	"github.com/carbonpledge-labs/token-economy-engine/internal/crowdfunding"
	"github.com/carbonpledge-labs/token-economy-engine/internal/ledger"
	"github.com/carbonpledge-labs/token-economy-engine/internal/staking"
	"github.com/carbonpledge-labs/token-economy-engine/internal/types"
)

// Reserved ledger accounts holding value on behalf of the engine.
const (
	SystemAccountPrefix       = types.SystemAccountPrefix
	AccountStakingPool        = SystemAccountPrefix + "staking-pool"
	AccountStakingRewards     = SystemAccountPrefix + "staking-rewards"
	AccountCrowdfundingEscrow = SystemAccountPrefix + "crowdfunding-escrow"
	AccountCarbonTreasury     = SystemAccountPrefix + "carbon-treasury"
)

// Params configure a fresh engine.
type Params struct {
	MaxSupply          sdkmath.Int
	Staking            staking.Params
	CrowdfundingFeeBps uint32
	CarbonFeeBps       uint32
	FeeCollector       string
	CarbonFeeCollector string
	ChangeLogRetention int
}

// Notifier is told about committed changes while the engine still holds its
// write lock. Implementations must not block and must not call back into the
// engine.
type Notifier interface {
	Notify(entries []types.ChangeLogEntry)
}

type Option func(*Engine)

// WithClock replaces time.Now.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) { e.clock = clock }
}

func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifiers = append(e.notifiers, n) }
}

type Engine struct {
	mu    sync.RWMutex
	clock func() time.Time
	auth  types.Authorizer

	ledger       *ledger.Ledger
	staking      *staking.Pool
	crowdfunding *crowdfunding.Market
	carbon       *carbon.Market

	changes   []types.ChangeLogEntry
	nextSeq   uint64
	retention int
	notifiers []Notifier
}

func New(params Params, auth types.Authorizer, opts ...Option) (*Engine, error) {
	l, err := ledger.New(params.MaxSupply)
	if err != nil {
		return nil, err
	}
	pool, err := staking.NewPool(l, AccountStakingPool, AccountStakingRewards, params.Staking)
	if err != nil {
		return nil, err
	}
	market, err := crowdfunding.NewMarket(l, auth, AccountCrowdfundingEscrow, params.FeeCollector, params.CrowdfundingFeeBps)
	if err != nil {
		return nil, err
	}
	carbonFeeCollector := params.CarbonFeeCollector
	if carbonFeeCollector == "" {
		carbonFeeCollector = params.FeeCollector
	}
	offsets, err := carbon.NewMarket(l, auth, AccountCarbonTreasury, carbonFeeCollector, params.CarbonFeeBps)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		clock:        time.Now,
		auth:         auth,
		ledger:       l,
		staking:      pool,
		crowdfunding: market,
		carbon:       offsets,
		nextSeq:      1,
		retention:    params.ChangeLogRetention,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Subscribe registers n for all changes committed from now on.
func (e *Engine) Subscribe(n Notifier) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notifiers = append(e.notifiers, n)
}

// ChangesSince returns up to limit entries with Seq > after, oldest first. A
// limit <= 0 means no limit. Entries dropped by retention are not returned.
func (e *Engine) ChangesSince(after uint64, limit int) []types.ChangeLogEntry {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if len(e.changes) == 0 {
		return nil
	}
	first := e.changes[0].Seq
	start := 0
	if after >= first {
		start = int(after - first + 1)
	}
	if start >= len(e.changes) {
		return nil
	}
	end := len(e.changes)
	if limit > 0 && start+limit < end {
		end = start + limit
	}
	out := make([]types.ChangeLogEntry, end-start)
	copy(out, e.changes[start:end])
	return out
}

// LastSeq is the sequence number of the most recent change, 0 if none.
func (e *Engine) LastSeq() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.nextSeq - 1
}

type change struct {
	kind  types.ChangeType
	attrs map[string]string
}

func newChange(kind types.ChangeType, kv ...string) change {
	attrs := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		attrs[kv[i]] = kv[i+1]
	}
	return change{kind: kind, attrs: attrs}
}

// record appends changes to the log and notifies subscribers. Callers hold the
// write lock.
func (e *Engine) record(ctx context.Context, actor string, now time.Time, changes ...change) {
	if len(changes) == 0 {
		return
	}
	entries := make([]types.ChangeLogEntry, 0, len(changes))
	for _, c := range changes {
		entry := types.ChangeLogEntry{
			Seq:        e.nextSeq,
			Type:       c.kind,
			Timestamp:  now,
			Actor:      actor,
			Attributes: c.attrs,
		}
		e.nextSeq++
		entries = append(entries, entry)
		log.Ctx(ctx).Debug().
			Uint64("seq", entry.Seq).
			Str("type", entry.Type.String()).
			Str("actor", actor).
			Msg("change committed")
	}
	e.changes = append(e.changes, entries...)
	if e.retention > 0 && len(e.changes) > e.retention {
		e.changes = append([]types.ChangeLogEntry(nil), e.changes[len(e.changes)-e.retention:]...)
	}
	for _, n := range e.notifiers {
		n.Notify(entries)
	}
}

// begin takes the write lock and captures the operation's single timestamp.
func (e *Engine) begin() time.Time {
	e.mu.Lock()
	return e.clock()
}

func (e *Engine) end() { e.mu.Unlock() }

func (e *Engine) requireRole(caller string, roles ...types.Role) error {
	if types.HasAnyRole(e.auth, caller, roles...) {
		return nil
	}
	return types.Errorf(types.NotAuthorized, "%s lacks role %v", caller, roles)
}

// checkCaller rejects empty callers and callers posing as system accounts.
func checkCaller(accounts ...string) error {
	for _, account := range accounts {
		if account == "" {
			return types.Errorf(types.InvalidArgument, "account must be set")
		}
		if types.IsSystemAccount(account) {
			return types.Errorf(types.NotAuthorized, "account %s is reserved", account)
		}
	}
	return nil
}

func failed(ctx context.Context, op string, err error) error {
	log.Ctx(ctx).Debug().Err(err).Str("op", op).Msg("operation rejected")
	return err
}
