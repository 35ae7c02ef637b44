package net

import (
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"
)

const (
	LinkScheme  = "sketchroom://"
	DefaultRoom = "lobby"
)

// Endpoint locates a relay and the room to join on it.
type Endpoint struct {
	Host string
	Port int
	Room string
}

// ParseLink reads a share link of the form sketchroom://host:port/room.
// A missing room means the default room.
func ParseLink(link string) (Endpoint, error) {
	if !strings.HasPrefix(link, LinkScheme) {
		return Endpoint{}, fmt.Errorf("link %q does not start with %s", link, LinkScheme)
	}
	rest := strings.TrimPrefix(link, LinkScheme)
	addr, room, _ := strings.Cut(rest, "/")
	room = strings.Trim(room, "/")
	if room == "" {
		room = DefaultRoom
	}
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return Endpoint{}, fmt.Errorf("link %q: %w", link, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return Endpoint{}, fmt.Errorf("link %q: bad port %q", link, portStr)
	}
	return Endpoint{Host: host, Port: port, Room: room}, nil
}

func (e Endpoint) Addr() string { return net.JoinHostPort(e.Host, strconv.Itoa(e.Port)) }

// Link is the share link for the endpoint.
func (e Endpoint) Link() string { return LinkScheme + e.Addr() + "/" + e.Room }

func (e Endpoint) WebsocketURL() string { return "ws://" + e.Addr() + "/ws" }

func (e Endpoint) HistoryURL() string { return "http://" + e.Addr() }

// GetOutgoingIP finds the preferred local IP address for the host to share.
func GetOutgoingIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		// No route out; fall back to the first non-loopback interface.
		return getLocalIPFallback()
	}
	defer conn.Close()

	localAddr := conn.LocalAddr().(*net.UDPAddr)
	return localAddr.IP.String(), nil
}

func getLocalIPFallback() (string, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "", err
	}
	for _, address := range addrs {
		if ipnet, ok := address.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if ipnet.IP.To4() != nil {
				return ipnet.IP.String(), nil
			}
		}
	}
	log.Println("No suitable local IP found, share link will use loopback.")
	return "127.0.0.1", nil
}
