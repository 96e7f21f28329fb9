package models

// StorageVersion is the current persistence envelope version. Files with
// another version are rejected at load rather than guessed at.
const StorageVersion = 1

// StorageV1 is the persistence envelope for the whole store: JSON,
// zstd-compressed, written atomically by the file manager.
type StorageV1 struct {
	Version      int                        `json:"version"`
	Balances     map[string]*Balance        `json:"balances"`
	Transactions map[string][]*Transaction  `json:"transactions"`
	Snapshots    map[string][]*Snapshot     `json:"snapshots"`
	Rewards      map[string][]*RewardRecord `json:"reward_records"`
	Stats        map[string][]*DailyStat    `json:"daily_stats"`
	Tiers        map[string]*Tier           `json:"tiers"`
	Audits       []*TierAudit               `json:"tier_audits"`
	Sequences    map[string]uint64          `json:"sequences"`
}

// Export copies the full state into a persistence envelope.
func (s *Store) Export() *StorageV1 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := &StorageV1{
		Version:      StorageVersion,
		Balances:     make(map[string]*Balance, len(s.balances)),
		Transactions: make(map[string][]*Transaction, len(s.transactions)),
		Snapshots:    make(map[string][]*Snapshot, len(s.snapshots)),
		Rewards:      make(map[string][]*RewardRecord, len(s.rewards)),
		Stats:        make(map[string][]*DailyStat, len(s.stats)),
		Tiers:        make(map[string]*Tier, len(s.tiers)),
		Audits:       append([]*TierAudit(nil), s.audits...),
		Sequences:    make(map[string]uint64, len(s.sequences)),
	}
	for account, bal := range s.balances {
		out.Balances[account] = bal.Clone()
	}
	for account, log := range s.transactions {
		out.Transactions[account] = append([]*Transaction(nil), log...)
	}
	for account, byBucket := range s.snapshots {
		for _, snap := range byBucket {
			out.Snapshots[account] = append(out.Snapshots[account], snap)
		}
	}
	for account, byDate := range s.rewards {
		for _, r := range byDate {
			out.Rewards[account] = append(out.Rewards[account], r)
		}
	}
	for account, byDate := range s.stats {
		for _, st := range byDate {
			out.Stats[account] = append(out.Stats[account], st.Clone())
		}
	}
	for account, t := range s.tiers {
		cp := *t
		out.Tiers[account] = &cp
	}
	for account, seq := range s.sequences {
		out.Sequences[account] = seq
	}
	return out
}

// Import replaces the store's state with the envelope's contents.
func (s *Store) Import(storage *StorageV1) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.balances = make(map[string]*Balance, len(storage.Balances))
	for account, bal := range storage.Balances {
		s.balances[account] = bal
	}
	s.transactions = make(map[string][]*Transaction, len(storage.Transactions))
	for account, log := range storage.Transactions {
		s.transactions[account] = log
	}
	s.snapshots = make(map[string]map[int64]*Snapshot, len(storage.Snapshots))
	for account, snaps := range storage.Snapshots {
		byBucket := make(map[int64]*Snapshot, len(snaps))
		for _, snap := range snaps {
			byBucket[snap.BucketStart.UTC().Unix()] = snap
		}
		s.snapshots[account] = byBucket
	}
	s.rewards = make(map[string]map[string]*RewardRecord, len(storage.Rewards))
	for account, rewards := range storage.Rewards {
		byDate := make(map[string]*RewardRecord, len(rewards))
		for _, r := range rewards {
			byDate[r.Date] = r
		}
		s.rewards[account] = byDate
	}
	s.stats = make(map[string]map[string]*DailyStat, len(storage.Stats))
	for account, stats := range storage.Stats {
		byDate := make(map[string]*DailyStat, len(stats))
		for _, st := range stats {
			byDate[st.Date] = st
		}
		s.stats[account] = byDate
	}
	s.tiers = make(map[string]*Tier, len(storage.Tiers))
	for account, t := range storage.Tiers {
		s.tiers[account] = t
	}
	s.audits = storage.Audits
	s.sequences = make(map[string]uint64, len(storage.Sequences))
	for account, seq := range storage.Sequences {
		s.sequences[account] = seq
	}
}
