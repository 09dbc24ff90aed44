package castles

import (
	"errors"
	"expvar"
	"net/http"
	"sort"
	"strings"

	"sync"

	set "github.com/deckarep/golang-set"
	"github.com/sirupsen/logrus"
)

var log = logrus.StandardLogger()

var (
	// ErrCastleNotFound is returned when no castle has the given id
	ErrCastleNotFound = errors.New("Castle doesn't exist")

	numCastles = expvar.NewInt("num_castles")
	numVisited = expvar.NewInt("num_visited")
)

// VisitedStore is the interface you should implement to persist the visited list
type VisitedStore interface {
	ReadVisited() ([]string, error)
	WriteVisited(names []string) error
	Close()
	BackupHandleFunc(w http.ResponseWriter, req *http.Request)
	JSONDumpHandleFunc(w http.ResponseWriter, req *http.Request)
}

// Repository holds the fortification dataset and its visited state.
// It is shared by the HTTP api and every map session, all operations are
// safe for concurrent use.
type Repository struct {
	pois  map[string]*POI
	order []string

	visited      set.Set
	visitedNames []string

	store  VisitedStore
	writer *visitedWriter

	subscribers map[int]func(Change)
	nextSub     int

	sync.RWMutex
}

// NewRepository creates an empty repository persisting the visited list to store
func NewRepository(store VisitedStore) *Repository {
	r := &Repository{
		pois:        make(map[string]*POI),
		visited:     set.NewThreadUnsafeSet(),
		store:       store,
		subscribers: make(map[int]func(Change)),
	}
	r.writer = newVisitedWriter(store)
	return r
}

// Len returns the number of castles loaded
func (r *Repository) Len() int {
	r.RLock()
	defer r.RUnlock()
	return len(r.order)
}

// Get returns a snapshot of one castle
func (r *Repository) Get(id string) (POI, bool) {
	r.RLock()
	defer r.RUnlock()
	poi, ok := r.pois[id]
	if !ok {
		return POI{}, false
	}
	return *poi, true
}

// All returns a snapshot of every castle, in dataset order
func (r *Repository) All() []POI {
	r.RLock()
	defer r.RUnlock()
	res := make([]POI, 0, len(r.order))
	for _, id := range r.order {
		res = append(res, *r.pois[id])
	}
	return res
}

// Search returns the castles whose name contains the trimmed query,
// case-insensitively, sorted case-insensitively by name. An empty query
// returns the whole dataset.
func (r *Repository) Search(query string) []POI {
	searchesTotal.Inc()
	q := strings.ToLower(strings.TrimSpace(query))

	r.RLock()
	res := make([]POI, 0, len(r.order))
	for _, id := range r.order {
		poi := r.pois[id]
		if q == "" || strings.Contains(strings.ToLower(poi.Name), q) {
			res = append(res, *poi)
		}
	}
	r.RUnlock()

	sort.SliceStable(res, func(i, j int) bool {
		return strings.ToLower(res[i].Name) < strings.ToLower(res[j].Name)
	})
	return res
}

// ToggleVisited flips the visited flag of one castle and returns the new
// snapshot. The updated name list goes to the background writer, the
// in-memory flag is authoritative whether or not that write succeeds.
// Subscribers are notified before ToggleVisited returns.
func (r *Repository) ToggleVisited(id string) (POI, error) {
	r.Lock()
	poi, ok := r.pois[id]
	if !ok {
		r.Unlock()
		return POI{}, ErrCastleNotFound
	}

	poi.Visited = !poi.Visited
	if poi.Visited {
		r.visited.Add(id)
		r.addVisitedName(poi.Name)
	} else {
		r.visited.Remove(id)
		r.removeVisitedName(poi.Name)
	}
	numVisited.Set(int64(r.visited.Cardinality()))

	snapshot := *poi
	// enqueued under the lock, snapshot order follows state order; enqueue
	// never blocks so holding the lock here is fine
	r.writer.enqueue(append([]string(nil), r.visitedNames...))
	subs := make([]func(Change), 0, len(r.subscribers))
	for _, fn := range r.subscribers {
		subs = append(subs, fn)
	}
	r.Unlock()

	togglesTotal.Inc()

	change := Change{POI: snapshot, Visited: snapshot.Visited}
	for _, fn := range subs {
		fn(change)
	}
	return snapshot, nil
}

// addVisitedName keeps the list insertion ordered and deduplicated, the
// caller holds the write lock
func (r *Repository) addVisitedName(name string) {
	for _, n := range r.visitedNames {
		if n == name {
			return
		}
	}
	r.visitedNames = append(r.visitedNames, name)
}

// removeVisitedName drops the name unless another visited castle still
// bears it, the caller holds the write lock
func (r *Repository) removeVisitedName(name string) {
	still := false
	r.visited.Each(func(id interface{}) bool {
		if r.pois[id.(string)].Name == name {
			still = true
			return true
		}
		return false
	})
	if still {
		return
	}
	for i, n := range r.visitedNames {
		if n == name {
			r.visitedNames = append(r.visitedNames[:i], r.visitedNames[i+1:]...)
			return
		}
	}
}

// RestoreVisited reads the persisted name list from the store and applies it
func (r *Repository) RestoreVisited() {
	names, err := r.store.ReadVisited()
	if err != nil {
		log.Warn("can't read the visited list: ", err)
		return
	}
	n := r.RestoreVisitedNames(names)
	log.Infof("Restored %d visited castles", n)
}

// RestoreVisitedNames marks every castle whose name appears in names, by
// exact match. Names matching no castle are ignored. Returns the number of
// castles marked.
func (r *Repository) RestoreVisitedNames(names []string) int {
	r.Lock()
	defer r.Unlock()

	marked := 0
	for _, name := range names {
		found := false
		for _, id := range r.order {
			poi := r.pois[id]
			if poi.Name != name {
				continue
			}
			found = true
			if !poi.Visited {
				poi.Visited = true
				r.visited.Add(id)
				marked++
			}
		}
		if found {
			r.addVisitedName(name)
		} else {
			log.Debug("visited name matches no castle: ", name)
		}
	}
	numVisited.Set(int64(r.visited.Cardinality()))
	return marked
}

// VisitedNames returns a copy of the persisted name list, in visit order
func (r *Repository) VisitedNames() []string {
	r.RLock()
	defer r.RUnlock()
	return append([]string(nil), r.visitedNames...)
}

// Subscribe registers fn for visited changes. Delivery is synchronous with
// the toggle. The returned function removes the subscription.
func (r *Repository) Subscribe(fn func(Change)) func() {
	r.Lock()
	defer r.Unlock()
	id := r.nextSub
	r.nextSub++
	r.subscribers[id] = fn
	return func() {
		r.Lock()
		defer r.Unlock()
		delete(r.subscribers, id)
	}
}

// Flush blocks until the writer has drained any pending snapshot
func (r *Repository) Flush() {
	r.writer.flush()
}

// Close stops the background writer after a final flush. The store itself
// stays open, its owner closes it.
func (r *Repository) Close() {
	r.writer.flush()
	r.writer.stop()
}
