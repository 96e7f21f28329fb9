package models

import (
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/atomic"
)

// Store keeps the whole ledger state in process: balances, the
// append-only transaction log, snapshots, reward records, daily stats
// and tiers. Mutations on one account go through Begin/Commit so the
// read-validate-write section is exclusive per account; reads take the
// store-wide RW mutex only long enough to copy.
type Store struct {
	mu           sync.RWMutex
	balances     map[string]*Balance
	transactions map[string][]*Transaction
	snapshots    map[string]map[int64]*Snapshot
	rewards      map[string]map[string]*RewardRecord
	stats        map[string]map[string]*DailyStat
	tiers        map[string]*Tier
	audits       []*TierAudit
	sequences    map[string]uint64

	lockMu   sync.Mutex
	locks    map[string]chan struct{}
	lockWait time.Duration

	commits atomic.Uint64
}

// DefaultLockWait bounds how long Begin blocks on a busy account before
// giving up with ErrConcurrencyConflict.
const DefaultLockWait = 2 * time.Second

func NewStore(lockWait time.Duration) *Store {
	if lockWait <= 0 {
		lockWait = DefaultLockWait
	}
	return &Store{
		balances:     make(map[string]*Balance),
		transactions: make(map[string][]*Transaction),
		snapshots:    make(map[string]map[int64]*Snapshot),
		rewards:      make(map[string]map[string]*RewardRecord),
		stats:        make(map[string]map[string]*DailyStat),
		tiers:        make(map[string]*Tier),
		sequences:    make(map[string]uint64),
		locks:        make(map[string]chan struct{}),
		lockWait:     lockWait,
	}
}

func (s *Store) acquire(account string) error {
	s.lockMu.Lock()
	ch, ok := s.locks[account]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[account] = ch
	}
	s.lockMu.Unlock()

	select {
	case ch <- struct{}{}:
		return nil
	default:
	}

	timer := time.NewTimer(s.lockWait)
	defer timer.Stop()
	select {
	case ch <- struct{}{}:
		return nil
	case <-timer.C:
		return ErrConcurrencyConflict
	}
}

func (s *Store) release(account string) {
	s.lockMu.Lock()
	ch := s.locks[account]
	s.lockMu.Unlock()
	if ch != nil {
		select {
		case <-ch:
		default:
		}
	}
}

type statDelta struct {
	date   string
	amount int64
	fees   int64
	output decimal.Decimal
}

// AccountTx is the unit of work for one account. All staged writes are
// applied together on Commit or dropped on Rollback; the account's
// exclusive section is held in between.
type AccountTx struct {
	store   *Store
	account string
	balance *Balance
	txs     []*Transaction
	stat    *statDelta
	reward  *RewardRecord
	done    bool
}

// Begin opens a unit of work, taking the account's exclusive section.
// Returns ErrConcurrencyConflict if the section stays busy beyond the
// configured wait budget.
func (s *Store) Begin(account string) (*AccountTx, error) {
	if account == "" {
		return nil, &ValidationError{Field: "account", Reason: "must not be empty"}
	}
	if err := s.acquire(account); err != nil {
		return nil, err
	}

	s.mu.RLock()
	bal, ok := s.balances[account]
	var working *Balance
	if ok {
		working = bal.Clone()
	} else {
		working = &Balance{Account: account}
	}
	s.mu.RUnlock()

	return &AccountTx{store: s, account: account, balance: working}, nil
}

// Balance is the working copy; mutations to it become visible on Commit.
func (tx *AccountTx) Balance() *Balance {
	return tx.balance
}

func (tx *AccountTx) Account() string {
	return tx.account
}

func (tx *AccountTx) Append(t *Transaction) {
	tx.txs = append(tx.txs, t)
}

func (tx *AccountTx) AddStat(date string, amount, fees int64, output decimal.Decimal) {
	if tx.stat == nil {
		tx.stat = &statDelta{date: date}
	}
	tx.stat.amount += amount
	tx.stat.fees += fees
	tx.stat.output = tx.stat.output.Add(output)
}

func (tx *AccountTx) PutReward(r *RewardRecord) {
	tx.reward = r
}

// Rollback discards all staged writes and releases the account.
func (tx *AccountTx) Rollback() {
	if tx.done {
		return
	}
	tx.done = true
	tx.store.release(tx.account)
}

// Commit applies the staged balance, transactions, stat delta and reward
// record in one critical section. Nothing is applied when the reward
// record already exists.
func (tx *AccountTx) Commit() error {
	if tx.done {
		return &PersistenceError{Op: "commit", Err: errUnitClosed}
	}
	s := tx.store

	s.mu.Lock()
	if tx.reward != nil {
		if byDate, ok := s.rewards[tx.account]; ok {
			if _, dup := byDate[tx.reward.Date]; dup {
				s.mu.Unlock()
				tx.done = true
				s.release(tx.account)
				return ErrDuplicateReward
			}
		}
	}

	seq := s.sequences[tx.account]
	for _, t := range tx.txs {
		seq++
		t.Sequence = seq
		s.transactions[tx.account] = append(s.transactions[tx.account], t)
	}
	s.sequences[tx.account] = seq
	s.balances[tx.account] = tx.balance

	if tx.stat != nil {
		byDate, ok := s.stats[tx.account]
		if !ok {
			byDate = make(map[string]*DailyStat)
			s.stats[tx.account] = byDate
		}
		st, ok := byDate[tx.stat.date]
		if !ok {
			st = &DailyStat{Account: tx.account, Date: tx.stat.date}
			byDate[tx.stat.date] = st
		}
		st.AmountExchanged += tx.stat.amount
		st.FeesPaid += tx.stat.fees
		st.OutputTotal = st.OutputTotal.Add(tx.stat.output)
		st.Count++
	}

	if tx.reward != nil {
		byDate, ok := s.rewards[tx.account]
		if !ok {
			byDate = make(map[string]*RewardRecord)
			s.rewards[tx.account] = byDate
		}
		byDate[tx.reward.Date] = tx.reward
	}
	s.mu.Unlock()

	s.commits.Inc()
	tx.done = true
	s.release(tx.account)
	return nil
}

var errUnitClosed = &ValidationError{Field: "unit of work", Reason: "already committed or rolled back"}

// GetBalance returns a copy, zero-valued when the account has no ledger yet.
func (s *Store) GetBalance(account string) *Balance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if bal, ok := s.balances[account]; ok {
		return bal.Clone()
	}
	return &Balance{Account: account}
}

// ListTransactions returns a copy of the account's log, newest first,
// optionally filtered by type. limit <= 0 means no limit.
func (s *Store) ListTransactions(account string, txType TxType, limit int) []*Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	log := s.transactions[account]
	out := make([]*Transaction, 0, len(log))
	for i := len(log) - 1; i >= 0; i-- {
		if txType != "" && log[i].Type != txType {
			continue
		}
		out = append(out, log[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

func (s *Store) UpsertSnapshot(snap *Snapshot) {
	key := snap.BucketStart.UTC().Unix()
	s.mu.Lock()
	defer s.mu.Unlock()
	byBucket, ok := s.snapshots[snap.Account]
	if !ok {
		byBucket = make(map[int64]*Snapshot)
		s.snapshots[snap.Account] = byBucket
	}
	byBucket[key] = snap
}

func (s *Store) SnapshotAt(account string, bucket time.Time) *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if byBucket, ok := s.snapshots[account]; ok {
		return byBucket[bucket.UTC().Unix()]
	}
	return nil
}

// SnapshotsInRange returns the account's snapshots in [from, to),
// ordered by bucket.
func (s *Store) SnapshotsInRange(account string, from, to time.Time) []*Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotsInRangeLocked(account, from, to)
}

func (s *Store) snapshotsInRangeLocked(account string, from, to time.Time) []*Snapshot {
	var out []*Snapshot
	for key, snap := range s.snapshots[account] {
		if key >= from.UTC().Unix() && key < to.UTC().Unix() {
			out = append(out, snap)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].BucketStart.Before(out[j].BucketStart)
	})
	return out
}

// SnapshotsFor returns all snapshots of one account, ordered by bucket.
func (s *Store) SnapshotsFor(account string) []*Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Snapshot
	for _, snap := range s.snapshots[account] {
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].BucketStart.Before(out[j].BucketStart)
	})
	return out
}

func (s *Store) AccountsWithSnapshots(from, to time.Time) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for account := range s.snapshots {
		if len(s.snapshotsInRangeLocked(account, from, to)) > 0 {
			out = append(out, account)
		}
	}
	sort.Strings(out)
	return out
}

func (s *Store) AccountsWithSnapshotAt(bucket time.Time) []string {
	key := bucket.UTC().Unix()
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for account, byBucket := range s.snapshots {
		if _, ok := byBucket[key]; ok {
			out = append(out, account)
		}
	}
	sort.Strings(out)
	return out
}

// PruneSnapshots drops snapshots with buckets before the cutoff and
// returns how many were removed.
func (s *Store) PruneSnapshots(before time.Time) int {
	cutoff := before.UTC().Unix()
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for account, byBucket := range s.snapshots {
		for key := range byBucket {
			if key < cutoff {
				delete(byBucket, key)
				removed++
			}
		}
		if len(byBucket) == 0 {
			delete(s.snapshots, account)
		}
	}
	return removed
}

// ActiveAccounts lists accounts with a nonzero total holding.
func (s *Store) ActiveAccounts() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for account, bal := range s.balances {
		if bal.Total() > 0 {
			out = append(out, account)
		}
	}
	sort.Strings(out)
	return out
}

func (s *Store) GetReward(account, date string) *RewardRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if byDate, ok := s.rewards[account]; ok {
		return byDate[date]
	}
	return nil
}

func (s *Store) RewardsFor(account string) []*RewardRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*RewardRecord
	for _, r := range s.rewards[account] {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// GetDailyStat returns a copy, zero-valued when nothing was exchanged yet.
func (s *Store) GetDailyStat(account, date string) *DailyStat {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if byDate, ok := s.stats[account]; ok {
		if st, ok := byDate[date]; ok {
			return st.Clone()
		}
	}
	return &DailyStat{Account: account, Date: date}
}

func (s *Store) GetTier(account string) *Tier {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t, ok := s.tiers[account]; ok {
		cp := *t
		return &cp
	}
	return nil
}

func (s *Store) PutTier(t *Tier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tiers[t.Account] = t
}

func (s *Store) AppendAudit(a *TierAudit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audits = append(s.audits, a)
}

func (s *Store) AuditsFor(account string) []*TierAudit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*TierAudit
	for _, a := range s.audits {
		if a.Account == account {
			out = append(out, a)
		}
	}
	return out
}

func (s *Store) CountAccounts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.balances)
}

func (s *Store) CountSnapshots() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, byBucket := range s.snapshots {
		n += len(byBucket)
	}
	return n
}

func (s *Store) Commits() uint64 {
	return s.commits.Load()
}
