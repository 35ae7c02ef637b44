package state

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Clock stamps locally committed shapes with this session's site id and a
// local sequence number. Peers use the site id to recognise their own
// broadcasts when the relay echoes them back.
type Clock struct {
	siteID  string
	lamport uint64
}

// Stamp identifies one local commit.
type Stamp struct {
	Site string
	Seq  uint64
}

func NewClock() *Clock {
	return &Clock{siteID: uuid.NewString()}
}

func (c *Clock) SiteID() string { return c.siteID }

// Tick returns the next stamp.
func (c *Clock) Tick() Stamp {
	return Stamp{Site: c.siteID, Seq: atomic.AddUint64(&c.lamport, 1)}
}

// IsLocal reports whether a site id belongs to this session.
func (c *Clock) IsLocal(site string) bool {
	return site != "" && site == c.siteID
}
