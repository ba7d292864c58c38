package services

import "sync"

// competitionLocks serializes the ledger/rank/rule pipeline per competition.
// Pipelines for different competitions run fully in parallel; two events for
// the same competition must not interleave their read-recompute-write cycle.
type competitionLocks struct {
	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

func newCompetitionLocks() *competitionLocks {
	return &competitionLocks{locks: make(map[int]*sync.Mutex)}
}

func (c *competitionLocks) get(competitionID int) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.locks[competitionID]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[competitionID] = lock
	}
	return lock
}
