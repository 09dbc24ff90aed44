package main

import (
	"crypto/tls"
	"encoding/json"
	"expvar"
	"flag"
	"net/http"
	"runtime"
	"runtime/pprof"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
	"golang.org/x/crypto/acme/autocert"

	"os"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	"fortmap.io/FortMapServer/camera"
	"fortmap.io/FortMapServer/castles"
)

var (
	// Tag is set by the CI build process
	Tag string
	// Build is set by the CI build process
	Build string

	// WebhookURL is the url for the visited webhook
	WebhookURL string
	// WebHookHeaders is an env var to transmit HTTP headers in JSON
	WebHookHeaders map[string]string
	// WebhookBearerToken is the bearer token passed to the webhook
	WebhookBearerToken string
	// SecretKey is used to check JWT tokens signatures
	SecretKey string
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  2048,
	WriteBufferSize: 4096,
}

var log = logrus.StandardLogger()

func main() {

	var goroutines = expvar.NewInt("num_goroutine")
	var interval = time.Duration(5) * time.Second
	go func() {
		for {
			<-time.After(interval)
			goroutines.Set(int64(runtime.NumGoroutine()))
		}
	}()

	godotenv.Load()

	log.Formatter = &prefixed.TextFormatter{
		DisableTimestamp: true,
		ForceFormatting:  true,
	}

	loglevel := os.Getenv("LOGLEVEL")

	switch loglevel {
	case "debug":
		log.SetLevel(logrus.DebugLevel)
	case "info":
		log.SetLevel(logrus.InfoLevel)
	case "warn":
		log.SetLevel(logrus.WarnLevel)
	case "error":
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}
	log.SetOutput(os.Stdout)

	if Build != "" {
		if Tag == "" {
			log.Infof("FortMapServer - build %s", Build)
		} else {
			log.Infof("FortMapServer %s - build %s", Tag, Build)
		}
	} else {
		log.Infof("FortMapServer development version")
	}

	var hostPort = flag.String("host", "localhost:8000", "host and port for http server")
	var storeKind = flag.String("store", "bolt", "visited store: bolt, file, redis or null")
	var dbfile = flag.String("db", "bolt.db", "database file name for the bolt store")
	var visitedFile = flag.String("visitedfile", "visited.txt", "file name for the file store")
	var dataset = flag.String("dataset", "", "alternative fortifications csv, empty for the built-in one")
	var secret = flag.String("secret", "developmentKey", "secret for JWT signatures")
	var geoipFile = flag.String("geoipdb", "", "GeoIP2 database for locate-by-address, empty disables it")
	var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	var memprofile = flag.String("memprofile", "", "write memory profile to this file")

	var ssl = flag.Bool("ssl", false, "Enable SSL support")
	var sslhost = flag.String("sslhost", "", "FQDN for the SSL certificate")
	var dev = flag.Bool("dev", false, "allow development routes")
	flag.Parse()

	var webhookwriter *WebhookWriter

	SecretKey = *secret

	if wh := os.Getenv("WEBHOOK_URL"); wh != "" {
		WebhookURL = wh

		if whbt := os.Getenv("WEBHOOK_BEARER"); whbt != "" {
			WebhookBearerToken = whbt
		}

		if whh := os.Getenv("WEBHOOK_HEADERS"); whh != "" {
			err := json.Unmarshal([]byte(whh), &WebHookHeaders)
			if err != nil {
				log.Error(err)
				log.Fatal("Can't JSON parse WEBHOOK_HEADERS")
			}
			webhookwriter = NewWebhookWriter(wh, WebHookHeaders, WebhookBearerToken)
		} else {
			webhookwriter = NewWebhookWriter(wh, nil, WebhookBearerToken)
		}
	}

	if s := os.Getenv("SECRET"); s != "" {
		SecretKey = s
	}

	if hp := os.Getenv("HOST_PORT"); hp != "" {
		hostPort = &hp
	}

	if sk := os.Getenv("VISITED_STORE"); sk != "" {
		storeKind = &sk
	}

	if dbname := os.Getenv("DB_NAME"); dbname != "" {
		dbfile = &dbname
	}

	if vf := os.Getenv("VISITED_FILE"); vf != "" {
		visitedFile = &vf
	}

	if ds := os.Getenv("DATASET"); ds != "" {
		dataset = &ds
	}

	if gf := os.Getenv("GEOIP_DB"); gf != "" {
		geoipFile = &gf
	}

	if envSSL := os.Getenv("SSL"); envSSL != "" {
		*ssl = true
	}
	if envSSLhost := os.Getenv("SSL_HOST"); envSSLhost != "" {
		sslhost = &envSSLhost
	}
	if envDev := os.Getenv("DEV"); envDev != "" {
		*dev = true
	}

	if *cpuprofile != "" {
		after2min := time.After(time.Minute * 2)

		log.Debug("Setting up CPU Prof")
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		go func() {
			<-after2min
			log.Debug("Starting CPU prof output")
			pprof.StopCPUProfile()
			log.Debug("Done CPU prof output")
		}()

	}
	if *memprofile != "" {
		after2min := time.After(time.Minute * 1)
		log.Debug("Setting up Mem Prof")

		f, err := os.Create(*memprofile)
		if err != nil {
			log.Fatal(err)
		}

		go func() {
			<-after2min
			log.Debug("Starting Mem prof output")
			pprof.WriteHeapProfile(f)
			log.Debug("Done Mem prof output")
			f.Close()
		}()
	}

	//store := newNullStore()
	store := openVisitedStore(*storeKind, *dbfile, *visitedFile)
	defer store.Close()

	repo := castles.NewRepository(store)
	defer repo.Close()

	if *dataset != "" {
		// an unreadable dataset leaves an empty, working repository
		f, err := os.Open(*dataset)
		if err != nil {
			log.Error("Can't open dataset: ", err)
		} else {
			repo.LoadCSV(f)
			f.Close()
		}
	} else {
		repo.LoadDefault()
	}
	repo.RestoreVisited()

	if webhookwriter != nil {
		repo.Subscribe(func(change castles.Change) {
			webhookwriter.Write(HookMessage{
				Castle:  change.POI.ID,
				Name:    change.POI.Name,
				Visited: change.Visited,
			})
		})
	}

	var locator *geoIPResolver
	if *geoipFile != "" {
		l, err := newGeoIPResolver(*geoipFile)
		if err != nil {
			log.Fatal("Can't open GeoIP database: ", err)
		}
		locator = l
		defer locator.close()
	}

	wshandler := NewWSRouter(repo, defaultOverview(repo), locator)

	r := mux.NewRouter()

	upgrader.CheckOrigin = func(r *http.Request) bool { return true }
	r.HandleFunc("/ws", wshandler.handle(upgrader))

	subrouter := r.PathPrefix("/api").Subrouter()
	NewHTTPRouter(subrouter, repo)

	// TODO make it really private
	r.HandleFunc("/api/private/backup", store.BackupHandleFunc)
	r.HandleFunc("/api/private/jsondump", store.JSONDumpHandleFunc)

	r.Handle("/metrics", promhttp.Handler())

	if *dev {
		r.HandleFunc("/api/dev/token", DevHelperGetToken)
	}

	corsOptions := cors.Options{
		AllowedMethods: []string{"GET", "POST", "DELETE"},
		AllowedHeaders: []string{"X-FORTMAP-TOKEN"},
	}
	if o := os.Getenv("ORIGIN"); o != "" {
		corsOptions.AllowedOrigins = strings.Split(o, ",")
	}
	c := cors.New(corsOptions)

	withCors := c.Handler(r)
	http.Handle("/", withCors)

	if *ssl {
		certManager := autocert.Manager{
			Prompt:     autocert.AcceptTOS,
			HostPolicy: autocert.HostWhitelist(*sslhost),
			Cache:      autocert.DirCache("certs"),
			Email:      "ops@fortmap.io", // TODO env var
			ForceRSA:   true,
		}
		srv := &http.Server{
			Addr: ":https",
			TLSConfig: &tls.Config{
				GetCertificate: func(hello *tls.ClientHelloInfo) (*tls.Certificate, error) {
					if hello.ServerName == "" {
						hello.ServerName = *sslhost
					}
					return certManager.GetCertificate(hello)
				},
				MinVersion:               tls.VersionTLS10,
				PreferServerCipherSuites: true,
			},
		}
		log.Info("TLS Server starting")

		s := &http.Server{
			Handler: certManager.HTTPHandler(nil),
			Addr:    ":80",
		}
		go s.ListenAndServe()
		log.Fatal(srv.ListenAndServeTLS("", ""))

		return
	}
	log.Info("Server starting at ", *hostPort)

	srv := &http.Server{
		Addr: *hostPort,
	}
	log.Fatal(srv.ListenAndServe())
}

// openVisitedStore picks the persistence backend. The redis store reads
// its address from REDIS_ADDR, everything else is file based.
func openVisitedStore(kind, dbfile, visitedFile string) castles.VisitedStore {
	switch kind {
	case "bolt":
		return newBoltDBStore(dbfile)
	case "file":
		return newFileStore(visitedFile)
	case "redis":
		addr := os.Getenv("REDIS_ADDR")
		if addr == "" {
			addr = "localhost:6379"
		}
		db := 0
		if d := os.Getenv("REDIS_DB"); d != "" {
			parsed, err := strconv.Atoi(d)
			if err != nil {
				log.Fatal("Can't parse REDIS_DB: ", err)
			}
			db = parsed
		}
		return newRedisStore(addr, db)
	case "null":
		return newNullStore()
	}
	log.Fatal("Unknown visited store: ", kind)
	return nil
}

// defaultOverview frames the whole dataset, deployments with another
// dataset still start on the right part of the map
func defaultOverview(repo *castles.Repository) camera.Region {
	pts := make([]camera.Point, 0, repo.Len())
	for _, poi := range repo.All() {
		pts = append(pts, camera.Point{poi.Lng, poi.Lat})
	}
	return camera.FitAll(pts, 0.35)
}
