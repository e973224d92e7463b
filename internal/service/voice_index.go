package service

import (
	"container/list"
	"sync"
	"time"
)

// Voice cache lookup results, also used as metric labels.
const (
	voiceHit     = "hit"
	voiceMiss    = "miss"
	voiceExpired = "expired"
)

type voiceEntry struct {
	key     string
	file    string
	created time.Time
}

// voiceIndex tracks generated audio files newest first. It holds at most
// capacity entries; entries older than ttl are treated as absent.
// Callers delete the files it hands back.
type voiceIndex struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	now      func() time.Time
	order    *list.List
	entries  map[string]*list.Element
}

func newVoiceIndex(capacity int, ttl time.Duration, now func() time.Time) *voiceIndex {
	if capacity <= 0 {
		capacity = 20
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if now == nil {
		now = time.Now
	}
	return &voiceIndex{capacity: capacity, ttl: ttl, now: now, order: list.New(), entries: make(map[string]*list.Element)}
}

// lookup returns the file for key and the lookup result. An expired entry is
// dropped and its file returned as stale.
func (ix *voiceIndex) lookup(key string) (file, result, stale string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	el, ok := ix.entries[key]
	if !ok {
		return "", voiceMiss, ""
	}
	entry := el.Value.(*voiceEntry)
	if ix.now().Sub(entry.created) >= ix.ttl {
		ix.removeElement(el)
		return "", voiceExpired, entry.file
	}
	return entry.file, voiceHit, ""
}

// add records file as the newest entry for key and returns the files pushed out.
func (ix *voiceIndex) add(key, file string, created time.Time) []string {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	var evicted []string
	if el, ok := ix.entries[key]; ok {
		if old := el.Value.(*voiceEntry).file; old != file {
			evicted = append(evicted, old)
		}
		ix.removeElement(el)
	}
	ix.entries[key] = ix.order.PushFront(&voiceEntry{key: key, file: file, created: created})

	for ix.order.Len() > ix.capacity {
		oldest := ix.order.Back()
		evicted = append(evicted, oldest.Value.(*voiceEntry).file)
		ix.removeElement(oldest)
	}
	return evicted
}

// remove forgets key without reporting its file.
func (ix *voiceIndex) remove(key string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if el, ok := ix.entries[key]; ok {
		ix.removeElement(el)
	}
}

// forgetFiles drops entries whose file is in files, e.g. after the directory was trimmed.
func (ix *voiceIndex) forgetFiles(files []string) {
	if len(files) == 0 {
		return
	}
	gone := make(map[string]struct{}, len(files))
	for _, f := range files {
		gone[f] = struct{}{}
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()
	for el := ix.order.Front(); el != nil; {
		next := el.Next()
		if _, ok := gone[el.Value.(*voiceEntry).file]; ok {
			ix.removeElement(el)
		}
		el = next
	}
}

// expire removes every entry past the ttl and returns their files.
func (ix *voiceIndex) expire() []string {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	now := ix.now()
	var expired []string
	// oldest entries sit at the back
	for el := ix.order.Back(); el != nil; {
		entry := el.Value.(*voiceEntry)
		if now.Sub(entry.created) < ix.ttl {
			break
		}
		prev := el.Prev()
		expired = append(expired, entry.file)
		ix.removeElement(el)
		el = prev
	}
	return expired
}

func (ix *voiceIndex) len() int {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.order.Len()
}

func (ix *voiceIndex) files() []string {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	out := make([]string, 0, ix.order.Len())
	for el := ix.order.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(*voiceEntry).file)
	}
	return out
}

func (ix *voiceIndex) removeElement(el *list.Element) {
	ix.order.Remove(el)
	delete(ix.entries, el.Value.(*voiceEntry).key)
}
