package main

import (
	"net/http"

	"fortmap.io/FortMapServer/castles"
)

// nullStore forgets everything, visited flags then only live in memory
type nullStore struct{}

func newNullStore() castles.VisitedStore {
	return &nullStore{}
}

func (p *nullStore) ReadVisited() ([]string, error) {
	return nil, nil
}

func (p *nullStore) WriteVisited(names []string) error {
	return nil
}

func (p *nullStore) Close() {}

func (p *nullStore) BackupHandleFunc(w http.ResponseWriter, req *http.Request) {
}
func (p *nullStore) JSONDumpHandleFunc(w http.ResponseWriter, req *http.Request) {
}
