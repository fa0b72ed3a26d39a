package stubserver

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Wire shapes. Field names, including the mongo-style _id, are part of the
// API contract the client is written against.

type roomJSON struct {
	ID          string   `json:"_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Images      []string `json:"images"`
	IsAvailable bool     `json:"isAvailable"`
	Rating      float64  `json:"rating"`
	ReviewCount int      `json:"reviewCount"`
}

type bookingUserJSON struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL"`
}

type bookingJSON struct {
	ID           string          `json:"_id"`
	RoomID       string          `json:"roomId"`
	BookingDate  time.Time       `json:"bookingDate"`
	CheckOutDate time.Time       `json:"checkOutDate"`
	Status       string          `json:"status"`
	User         bookingUserJSON `json:"user"`
}

type reviewJSON struct {
	RoomID    string    `json:"roomId"`
	UserEmail string    `json:"userEmail"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

type bookRequest struct {
	BookingDate  time.Time       `json:"bookingDate" binding:"required,futuredate"`
	CheckOutDate time.Time       `json:"checkOutDate" binding:"required"`
	User         bookingUserJSON `json:"user" binding:"required"`
}

type reviewRequest struct {
	User    string `json:"user" binding:"required,email"`
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"required"`
}

type rescheduleRequest struct {
	BookingDate time.Time `json:"bookingDate" binding:"required"`
}

func toRoomJSON(m roomModel) roomJSON {
	return roomJSON{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		Images:      splitImages(m.Images),
		IsAvailable: m.IsAvailable,
		Rating:      m.Rating,
		ReviewCount: m.ReviewCount,
	}
}

func toBookingJSON(m bookingModel) bookingJSON {
	return bookingJSON{
		ID:           m.ID,
		RoomID:       m.RoomID,
		BookingDate:  m.BookingDate,
		CheckOutDate: m.CheckOutDate,
		Status:       m.Status,
		User: bookingUserJSON{
			Email:       m.UserEmail,
			DisplayName: m.UserDisplayName,
			PhotoURL:    m.UserPhotoURL,
		},
	}
}

// handleListRooms is GET /rooms with optional minPrice/maxPrice bounds
func (s *Server) handleListRooms(c *gin.Context) {
	query := s.store.db.Model(&roomModel{})
	if raw := c.Query("minPrice"); raw != "" {
		min, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "minPrice must be a number"})
			return
		}
		query = query.Where("price >= ?", min)
	}
	if raw := c.Query("maxPrice"); raw != "" {
		max, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "maxPrice must be a number"})
			return
		}
		query = query.Where("price <= ?", max)
	}

	var rooms []roomModel
	if err := query.Order("price asc").Find(&rooms).Error; err != nil {
		s.fail(c, err)
		return
	}

	out := make([]roomJSON, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, toRoomJSON(room))
	}
	c.JSON(http.StatusOK, out)
}

// handleGetRoom is GET /rooms/:id
func (s *Server) handleGetRoom(c *gin.Context) {
	var room roomModel
	err := s.store.db.First(&room, "id = ?", c.Param("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Room not found"})
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toRoomJSON(room))
}

// handleBookRoom is POST /rooms/:id/book. A repeated Idempotency-Key returns
// the original success instead of creating a second booking.
func (s *Server) handleBookRoom(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Valid booking dates and user details are required"})
		return
	}
	if !req.CheckOutDate.After(req.BookingDate) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Check-out date must be after the check-in date"})
		return
	}

	key := c.GetHeader("Idempotency-Key")
	if _, seen := s.idempotency.Lookup(key); seen {
		s.logger.Info("duplicate booking submission absorbed", zap.String("idempotency_key", key))
		c.JSON(http.StatusOK, gin.H{"message": "Room booked successfully!"})
		return
	}

	var room roomModel
	err := s.store.db.First(&room, "id = ?", c.Param("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Room not found"})
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	if !room.IsAvailable {
		c.JSON(http.StatusConflict, gin.H{"message": "Room is already booked"})
		return
	}

	booking := bookingModel{
		ID:              uuid.NewString(),
		RoomID:          room.ID,
		UserEmail:       req.User.Email,
		UserDisplayName: req.User.DisplayName,
		UserPhotoURL:    req.User.PhotoURL,
		BookingDate:     req.BookingDate,
		CheckOutDate:    req.CheckOutDate,
		Status:          "ACTIVE",
		CreatedAt:       time.Now(),
	}
	err = s.store.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}
		return tx.Model(&roomModel{}).Where("id = ?", room.ID).Update("is_available", false).Error
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	s.idempotency.Record(key, booking.ID)

	c.JSON(http.StatusOK, gin.H{"message": "Room booked successfully!"})
}

// handleListBookings is GET /bookings?userEmail=. Cancelled bookings are
// filtered out; cancellation removes the row from the caller's view.
func (s *Server) handleListBookings(c *gin.Context) {
	email := c.Query("userEmail")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "userEmail is required"})
		return
	}

	var bookings []bookingModel
	err := s.store.db.
		Where("user_email = ? AND status = ?", email, "ACTIVE").
		Order("booking_date asc").
		Find(&bookings).Error
	if err != nil {
		s.fail(c, err)
		return
	}

	out := make([]bookingJSON, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingJSON(b))
	}
	c.JSON(http.StatusOK, out)
}

// handleCancelBooking is DELETE /bookings/:id/cancel. The room opens up again.
func (s *Server) handleCancelBooking(c *gin.Context) {
	var booking bookingModel
	err := s.store.db.First(&booking, "id = ?", c.Param("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Booking not found"})
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	if booking.Status != "ACTIVE" {
		c.JSON(http.StatusConflict, gin.H{"message": "Booking is already cancelled"})
		return
	}

	err = s.store.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&bookingModel{}).Where("id = ?", booking.ID).Update("status", "CANCELLED").Error; err != nil {
			return err
		}
		return tx.Model(&roomModel{}).Where("id = ?", booking.RoomID).Update("is_available", true).Error
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking cancelled successfully"})
}

// handleRescheduleBooking is PUT /bookings/:id/update: moves the check-in day
func (s *Server) handleRescheduleBooking(c *gin.Context) {
	var req rescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "bookingDate is required"})
		return
	}

	var booking bookingModel
	err := s.store.db.First(&booking, "id = ?", c.Param("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Booking not found"})
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	if booking.Status != "ACTIVE" {
		c.JSON(http.StatusConflict, gin.H{"message": "Cancelled bookings cannot be rescheduled"})
		return
	}

	if err := s.store.db.Model(&bookingModel{}).Where("id = ?", booking.ID).Update("booking_date", req.BookingDate).Error; err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking updated successfully"})
}

// handleListReviews is GET /rooms/:id/reviews
func (s *Server) handleListReviews(c *gin.Context) {
	var reviews []reviewModel
	err := s.store.db.
		Where("room_id = ?", c.Param("id")).
		Order("created_at desc").
		Find(&reviews).Error
	if err != nil {
		s.fail(c, err)
		return
	}

	out := make([]reviewJSON, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, reviewJSON{
			RoomID:    r.RoomID,
			UserEmail: r.UserEmail,
			Rating:    r.Rating,
			Comment:   r.Comment,
			CreatedAt: r.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

// handlePostReview is POST /rooms/:id/reviews. The room's aggregate rating is
// recomputed on every accepted review.
func (s *Server) handlePostReview(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Rating between 1 and 5 and a comment are required"})
		return
	}

	var room roomModel
	err := s.store.db.First(&room, "id = ?", c.Param("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Room not found"})
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}

	newCount := room.ReviewCount + 1
	newRating := (room.Rating*float64(room.ReviewCount) + float64(req.Rating)) / float64(newCount)

	err = s.store.db.Transaction(func(tx *gorm.DB) error {
		review := reviewModel{
			RoomID:    room.ID,
			UserEmail: req.User,
			Rating:    req.Rating,
			Comment:   req.Comment,
			CreatedAt: time.Now(),
		}
		if err := tx.Create(&review).Error; err != nil {
			return err
		}
		return tx.Model(&roomModel{}).Where("id = ?", room.ID).
			Updates(map[string]any{"rating": newRating, "review_count": newCount}).Error
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Review added successfully"})
}

// fail logs the error and answers with a generic 500
func (s *Server) fail(c *gin.Context, err error) {
	s.logger.Error("request failed",
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
}
