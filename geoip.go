package main

import (
	"errors"
	"net"
	"net/http"
	"strings"

	geoip2 "github.com/oschwald/geoip2-golang"

	"fortmap.io/FortMapServer/camera"
)

// ErrNoLocation is returned when the GeoIP database has no usable fix for an address
var ErrNoLocation = errors.New("No location for address")

// geoIPResolver turns client addresses into approximate map locations
type geoIPResolver struct {
	reader *geoip2.Reader
}

func newGeoIPResolver(dbfile string) (*geoIPResolver, error) {
	reader, err := geoip2.Open(dbfile)
	if err != nil {
		return nil, err
	}
	return &geoIPResolver{reader: reader}, nil
}

func (g *geoIPResolver) locate(addr string) (camera.Point, error) {
	ip := net.ParseIP(addr)
	if ip == nil {
		return camera.Point{}, ErrNoLocation
	}
	record, err := g.reader.City(ip)
	if err != nil {
		return camera.Point{}, err
	}
	// the zero island means "no fix" in GeoIP2 databases
	if record.Location.Latitude == 0 && record.Location.Longitude == 0 {
		return camera.Point{}, ErrNoLocation
	}
	return camera.NewPoint(record.Location.Longitude, record.Location.Latitude), nil
}

func (g *geoIPResolver) close() {
	g.reader.Close()
}

// remoteAddr extracts the client address, honoring proxies
func remoteAddr(req *http.Request) string {
	if fwd := req.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return req.RemoteAddr
	}
	return host
}
