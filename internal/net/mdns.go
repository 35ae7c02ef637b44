package net

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/mdns"
)

const serviceType = "_sketchroom._tcp"

var ErrNoRelay = errors.New("no relay found on the local network")

// Advertise announces a relay listening on port so that peers can find it
// with Discover. The caller shuts the returned server down.
func Advertise(port int, room string) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}

	info := []string{"SketchRoom", "room=" + room}
	service, err := mdns.NewMDNSService(host, serviceType, "", "", port, nil, info)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	log.Printf("[MDNS] Advertising %s on port %d (room %s)", serviceType, port, room)
	return server, nil
}

// Browse queries the local network for relays for up to timeout and calls
// found for each one that answers with an IPv4 address.
func Browse(timeout time.Duration, found func(Endpoint)) error {
	entries := make(chan *mdns.ServiceEntry, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range entries {
			if ep, ok := endpointFromEntry(e); ok {
				found(ep)
			}
		}
	}()

	params := mdns.DefaultParams(serviceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true
	err := mdns.Query(params)
	close(entries)
	<-done
	return err
}

// Discover returns the first relay found. room overrides the advertised room
// when it is not empty.
func Discover(timeout time.Duration, room string) (Endpoint, error) {
	var relays []Endpoint
	if err := Browse(timeout, func(ep Endpoint) { relays = append(relays, ep) }); err != nil {
		return Endpoint{}, fmt.Errorf("browse relays: %w", err)
	}
	if len(relays) == 0 {
		return Endpoint{}, ErrNoRelay
	}
	ep := relays[0]
	if room != "" {
		ep.Room = room
	}
	log.Printf("[MDNS] Found %d relay(s), using %s", len(relays), ep.Addr())
	return ep, nil
}

func endpointFromEntry(e *mdns.ServiceEntry) (Endpoint, bool) {
	if e == nil || e.AddrV4 == nil || e.Port == 0 {
		return Endpoint{}, false
	}
	ep := Endpoint{Host: e.AddrV4.String(), Port: e.Port, Room: DefaultRoom}
	for _, field := range e.InfoFields {
		if v, ok := strings.CutPrefix(field, "room="); ok && v != "" {
			ep.Room = v
		}
	}
	return ep, true
}
