package main

import (
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"encoding/json"

	"github.com/gorilla/mux"

	"fortmap.io/FortMapServer/castles"
)

func withTokenAndRepo(repo *castles.Repository, fn func(http.ResponseWriter, *http.Request, *JWTToken, *castles.Repository)) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, req *http.Request) {
		t := req.Header.Get("X-FORTMAP-TOKEN")
		if t == "" {
			t = req.URL.Query().Get("token")
		}
		token, err := parseJWTToken(t)
		if err != nil {
			message := struct {
				Error   string `json:"error"`
				Message string `json:"message"`
			}{"Can't parse token, or token invalid", err.Error()}
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(message)
			log.Warn("HTTP route: can't parse token: ", err.Error())
			return
		}
		if !token.Capabilities.HTTP {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(struct {
				Error string `json:"error"`
			}{"Your token doesn't allow the HTTP api"})
			log.Warn("HTTP route: token without HTTP cap")
			return
		}
		fn(w, req, token, repo)
	}
}

// NewHTTPRouter returns the router for the fortmap http api
func NewHTTPRouter(router *mux.Router, repo *castles.Repository) *mux.Router {

	router.HandleFunc("/v1/ping", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-type", "application/json")
		w.WriteHeader(200)
		json.NewEncoder(w).Encode(struct {
			Tag   string
			Build string
		}{Tag, Build})
	})

	router.HandleFunc("/v1/castles", withTokenAndRepo(repo, searchCastles))

	router.HandleFunc("/v1/castles/{castle_id}/visited", withTokenAndRepo(repo, toggleVisited))

	router.HandleFunc("/v1/castles/{castle_id}/reference", withTokenAndRepo(repo, castleReference))

	router.HandleFunc("/v1/log", setLogLevel) // doesn't need additional security, awaits bearer token

	return router
}

func searchCastles(w http.ResponseWriter, req *http.Request, token *JWTToken, repo *castles.Repository) {
	w.Header().Set("Content-type", "application/json")

	if !token.Capabilities.Search {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(struct {
			Error string `json:"error"`
		}{"Your token doesn't allow castle search"})
		log.Warn("Search HTTP route: Your token doesn't allow castle search")

		return
	}

	if req.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		json.NewEncoder(w).Encode(struct {
			Error string `json:"error"`
		}{"Only GET is supported by this endpoint"})
		log.Warn("Search HTTP route: Only GET is supported by this endpoint")
		return
	}

	q := req.URL.Query().Get("q")
	results := repo.Search(q)
	log.Debugf("GET /v1/castles q=%q: %d results", q, len(results))

	reply := struct {
		Castles     []castles.POI `json:"castles"`
		Suggestions []castles.POI `json:"suggestions,omitempty"`
	}{Castles: results}

	// an empty result set for a real query gets close-match suggestions
	if len(results) == 0 && strings.TrimSpace(q) != "" {
		reply.Suggestions = repo.Suggest(q, 4)
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(reply)
}

func toggleVisited(w http.ResponseWriter, req *http.Request, token *JWTToken, repo *castles.Repository) {
	w.Header().Set("Content-type", "application/json")

	if !token.Capabilities.Visit {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(struct {
			Error string `json:"error"`
		}{"Your token doesn't allow visited toggling"})
		log.Warn("Visited HTTP route: Your token doesn't allow visited toggling")

		return
	}

	if req.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		json.NewEncoder(w).Encode(struct {
			Error string `json:"error"`
		}{"Only POST is supported by this endpoint"})
		log.Warn("Visited HTTP route: Only POST is supported by this endpoint")
		return
	}

	id := mux.Vars(req)["castle_id"]
	poi, err := repo.ToggleVisited(id)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(struct {
			Error string `json:"error"`
		}{"Castle not found"})
		log.Warn("Visited HTTP route: castle not found: ", id)
		return
	}

	log.Info("POST /v1/castles/visited: ", poi.Name, " -> ", poi.Visited)
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(poi)
}

func castleReference(w http.ResponseWriter, req *http.Request, token *JWTToken, repo *castles.Repository) {
	w.Header().Set("Content-type", "application/json")

	if req.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		json.NewEncoder(w).Encode(struct {
			Error string `json:"error"`
		}{"Only GET is supported by this endpoint"})
		return
	}

	id := mux.Vars(req)["castle_id"]
	poi, ok := repo.Get(id)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(struct {
			Error string `json:"error"`
		}{"Castle not found"})
		log.Warn("Reference HTTP route: castle not found: ", id)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(struct {
		ID       string `json:"castle_id"`
		Name     string `json:"name"`
		MapLink  string `json:"map_link,omitempty"`
		WikiLink string `json:"wiki_link,omitempty"`
	}{poi.ID, poi.Name, poi.MapLink, poi.WikiLink})
}

func setLogLevel(w http.ResponseWriter, req *http.Request) {
	auth := req.Header.Get("Authorization")

	if WebhookBearerToken == "" || (auth != WebhookBearerToken && req.URL.Query().Get("bearer") != WebhookBearerToken) {
		w.WriteHeader(http.StatusUnauthorized)
		log.Warn("Unauthorized attempt to set log level")
		return
	}

	if req.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		log.Warn("Wrong HTTP method to set log level")
		return
	}

	level := req.URL.Query().Get("level")
	log.Info("Setting log level to ", level)
	switch level {
	case "debug":
		log.SetLevel(logrus.DebugLevel)
	case "info":
		log.SetLevel(logrus.InfoLevel)
	case "warn":
		log.SetLevel(logrus.WarnLevel)
	case "error":
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.Warn("Invalid log level, ", level)
	}
	w.WriteHeader(http.StatusOK)
}
