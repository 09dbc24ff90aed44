package main

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"fortmap.io/FortMapServer/castles"
)

// fileStore keeps the visited list in a plain text file, one name per
// line, the format the mobile exports used
type fileStore struct {
	path string
}

func newFileStore(path string) castles.VisitedStore {
	return &fileStore{path: path}
}

func (p *fileStore) ReadVisited() ([]string, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		names = append(names, line)
	}
	return names, nil
}

// WriteVisited replaces the file in one rename, a crash can't leave a
// half-written list behind
func (p *fileStore) WriteVisited(names []string) error {
	tmp := p.path + ".tmp"
	content := ""
	if len(names) > 0 {
		content = strings.Join(names, "\n") + "\n"
	}
	if err := os.WriteFile(tmp, []byte(content), 0600); err != nil {
		return err
	}
	return os.Rename(tmp, p.path)
}

func (p *fileStore) Close() {}

// BackupHandleFunc serves the raw visited file
func (p *fileStore) BackupHandleFunc(w http.ResponseWriter, req *http.Request) {
	auth := req.Header.Get("Authorization")

	if WebhookBearerToken == "" || (auth != WebhookBearerToken && req.URL.Query().Get("bearer") != WebhookBearerToken) {
		w.WriteHeader(http.StatusUnauthorized)
		log.Warn("Unauthorized attempt to backup the visited file")
		return
	}

	data, err := os.ReadFile(p.path)
	if err != nil && !os.IsNotExist(err) {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filepath.Base(p.path)+`"`)
	w.Write(data)
}

func (p *fileStore) JSONDumpHandleFunc(w http.ResponseWriter, req *http.Request) {
	auth := req.Header.Get("Authorization")

	if WebhookBearerToken == "" || (auth != WebhookBearerToken && req.URL.Query().Get("bearer") != WebhookBearerToken) {
		w.WriteHeader(http.StatusUnauthorized)
		log.Warn("Unauthorized attempt to dump the visited file")
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
