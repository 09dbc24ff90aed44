package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	bolt "go.etcd.io/bbolt"

	"fortmap.io/FortMapServer/castles"
)

var (
	visitedBucket = []byte("visited")
	visitedKey    = []byte("names")
)

type boltDBStore struct {
	db *bolt.DB
}

// newBoltDBStore opens (or creates) the bolt file holding the visited list
func newBoltDBStore(dbfilename string) castles.VisitedStore {

	store := &boltDBStore{}

	db, err := bolt.Open(dbfilename, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil || db == nil {
		log.Fatal(err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, errVisited := tx.CreateBucketIfNotExists(visitedBucket)
		return errVisited
	})
	if err != nil {
		log.Fatal(err)
	}

	store.db = db

	return store
}

// ReadVisited returns the persisted visited names, in visit order
func (p *boltDBStore) ReadVisited() ([]string, error) {
	var names []string
	err := p.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(visitedBucket)
		v := bucket.Get(visitedKey)
		if v == nil {
			return nil
		}
		return json.Unmarshal(v, &names)
	})
	if err != nil {
		return nil, err
	}
	log.Infof("BoltDB: read %d visited names", len(names))
	return names, nil
}

// WriteVisited replaces the whole list. We're using JSON marshalling: it
// will be easier to upgrade to a new version of JSON schemas.
func (p *boltDBStore) WriteVisited(names []string) error {
	bytes, err := json.Marshal(names)
	if err != nil {
		return err
	}

	return p.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(visitedBucket)
		if err != nil {
			return err
		}

		return bucket.Put(visitedKey, bytes)
	})
}

func (p *boltDBStore) Close() {
	p.db.Close()
}

// BackupHandleFunc outputs a full db backup as a route !
func (p *boltDBStore) BackupHandleFunc(w http.ResponseWriter, req *http.Request) {
	auth := req.Header.Get("Authorization")

	if WebhookBearerToken == "" || (auth != WebhookBearerToken && req.URL.Query().Get("bearer") != WebhookBearerToken) {
		w.WriteHeader(http.StatusUnauthorized)
		log.Warn("Unauthorized attempt to backup DB")
		return
	}

	err := p.db.View(func(tx *bolt.Tx) error {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Disposition", `attachment; filename="fortmap.db"`)
		w.Header().Set("Content-Length", strconv.Itoa(int(tx.Size())))
		_, err := tx.WriteTo(w)
		return err
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (p *boltDBStore) JSONDumpHandleFunc(w http.ResponseWriter, req *http.Request) {
	auth := req.Header.Get("Authorization")

	if WebhookBearerToken == "" || (auth != WebhookBearerToken && req.URL.Query().Get("bearer") != WebhookBearerToken) {
		w.WriteHeader(http.StatusUnauthorized)
		log.Warn("Unauthorized attempt to dump DB")
		return
	}

	names, err := p.ReadVisited()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(200)
	json.NewEncoder(w).Encode(struct {
		Visited []string `json:"visited"`
	}{names})
}
