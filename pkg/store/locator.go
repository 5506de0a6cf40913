package store

import "sync"

// ClusterLocator is a StoreLocator whose master designation can be
// flipped at runtime as the node's role changes.
type ClusterLocator struct {
	mu     sync.RWMutex
	master MessageStore
	stores map[string]MessageStore
}

func NewClusterLocator() *ClusterLocator {
	return &ClusterLocator{
		stores: make(map[string]MessageStore),
	}
}

// SetMaster designates ms as the authoritative local store. Passing nil
// drops the designation, which is the state of a slave acting as master.
func (l *ClusterLocator) SetMaster(ms MessageStore) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.master = ms
}

func (l *ClusterLocator) RegisterStore(brokerName string, ms MessageStore) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stores[brokerName] = ms
}

func (l *ClusterLocator) PeekMaster() MessageStore {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.master
}

func (l *ClusterLocator) StoreByBrokerName(brokerName string) MessageStore {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.stores[brokerName]
}
