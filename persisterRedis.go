package main

import (
	"context"
	"encoding/json"
	"net/http"

	redis "github.com/redis/go-redis/v9"

	"fortmap.io/FortMapServer/castles"
)

// visitedRedisKey holds the whole list as one JSON value
const visitedRedisKey = "fortmap:visited"

type redisStore struct {
	client *redis.Client
}

// newRedisStore connects to redis and fails fast if it can't be reached
func newRedisStore(addr string, db int) castles.VisitedStore {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Can't reach redis at ", addr, ": ", err)
	}
	return &redisStore{client: client}
}

func (p *redisStore) ReadVisited() ([]string, error) {
	val, err := p.client.Get(context.Background(), visitedRedisKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var names []string
	if err := json.Unmarshal([]byte(val), &names); err != nil {
		return nil, err
	}
	return names, nil
}

func (p *redisStore) WriteVisited(names []string) error {
	b, err := json.Marshal(names)
	if err != nil {
		return err
	}
	return p.client.Set(context.Background(), visitedRedisKey, b, 0).Err()
}

func (p *redisStore) Close() {
	p.client.Close()
}

// BackupHandleFunc has no file to stream, the JSON dump is the backup
func (p *redisStore) BackupHandleFunc(w http.ResponseWriter, req *http.Request) {
	p.JSONDumpHandleFunc(w, req)
}

func (p *redisStore) JSONDumpHandleFunc(w http.ResponseWriter, req *http.Request) {
	auth := req.Header.Get("Authorization")

	if WebhookBearerToken == "" || (auth != WebhookBearerToken && req.URL.Query().Get("bearer") != WebhookBearerToken) {
		w.WriteHeader(http.StatusUnauthorized)
		log.Warn("Unauthorized attempt to dump the visited list")
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
