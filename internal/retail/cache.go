package retail

import "sync"

// LoadCache memoizes cleaned transaction tables for the lifetime of the
// process. The key is the file path plus the column-mapping fingerprint;
// file modification time is deliberately not part of the key, so a file
// edited after its first load keeps serving the cached table. Cached tables
// are immutable after first write, so concurrent readers may share them.
type LoadCache struct {
	mu     sync.RWMutex
	tables map[string][]Transaction
}

// NewLoadCache instantiates an empty LoadCache.
func NewLoadCache() *LoadCache {
	return &LoadCache{
		tables: map[string][]Transaction{},
	}
}

// Load returns the cleaned table for path under the given mapping, reading
// and cleaning the file only on the first call for that key. Failed loads
// are not cached; a later call retries the read.
func (c *LoadCache) Load(path string, mapping ColumnMapping) ([]Transaction, error) {
	key := path + "\x00" + mapping.Fingerprint()

	c.mu.RLock()
	table, ok := c.tables[key]
	c.mu.RUnlock()
	if ok {
		return table, nil
	}

	table, err := LoadTransactions(path, mapping)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	// Another session may have loaded the same key meanwhile; keep the
	// first write so shared readers always see one table.
	if existing, ok := c.tables[key]; ok {
		table = existing
	} else {
		c.tables[key] = table
	}
	c.mu.Unlock()

	return table, nil
}

// Len reports how many distinct tables are cached.
func (c *LoadCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tables)
}
