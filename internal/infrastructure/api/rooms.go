package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/lodgely/bookingkit/internal/domain/booking"
)

// ListRooms fetches all rooms matching the filter. Unset bounds are omitted
// from the query entirely.
func (c *Client) ListRooms(ctx context.Context, filter booking.RoomFilter) ([]booking.Room, error) {
	query := url.Values{}
	if filter.MinPrice != nil {
		query.Set("minPrice", strconv.FormatFloat(*filter.MinPrice, 'f', -1, 64))
	}
	if filter.MaxPrice != nil {
		query.Set("maxPrice", strconv.FormatFloat(*filter.MaxPrice, 'f', -1, 64))
	}

	var dtos []roomDTO
	if err := c.do(ctx, "api.ListRooms", request{
		method: http.MethodGet,
		path:   "/rooms",
		query:  query,
	}, &dtos); err != nil {
		return nil, err
	}

	rooms := make([]booking.Room, 0, len(dtos))
	for _, dto := range dtos {
		rooms = append(rooms, dto.toDomain())
	}
	return rooms, nil
}

// GetRoom fetches a single room by id
func (c *Client) GetRoom(ctx context.Context, roomID string) (booking.Room, error) {
	var dto roomDTO
	if err := c.do(ctx, "api.GetRoom", request{
		method: http.MethodGet,
		path:   "/rooms/" + url.PathEscape(roomID),
	}, &dto); err != nil {
		return booking.Room{}, err
	}
	return dto.toDomain(), nil
}
