package booking

import (
	"github.com/lodgely/bookingkit/internal/domain/shared/valueobject"
)

// Room is the server-owned room record. The client never mutates it directly;
// the only local write is the optimistic availability flip after a successful
// booking, which the next fetch overrides with the server's truth.
type Room struct {
	ID          string
	Name        string
	Description string
	Price       valueobject.Money // nightly rate
	ImageURL    string
	IsAvailable bool
	Rating      float64 // aggregate rating maintained by the server
	ReviewCount int
}

// MarkUnavailable applies the optimistic local patch after a successful
// booking. UI convenience only, not a consistency mechanism.
func (r *Room) MarkUnavailable() {
	r.IsAvailable = false
}

// TotalFor prices a stay of the given nights at the nightly rate
func (r *Room) TotalFor(nights int64) valueobject.Money {
	return r.Price.MulInt(nights)
}

// RoomFilter narrows a room listing by nightly price. Nil bounds mean
// unbounded; filtering happens server-side.
type RoomFilter struct {
	MinPrice *float64
	MaxPrice *float64
}
