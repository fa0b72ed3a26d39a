// Package stubserver is a local, in-memory implementation of the booking API
// surface. It exists so the client runs end to end without the hosted backend
// and so client tests have a real HTTP peer.
package stubserver

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/lodgely/bookingkit/internal/infrastructure/logger"
)

// roomModel is the rooms table
type roomModel struct {
	ID          string `gorm:"primaryKey"`
	Name        string
	Description string
	Price       float64
	Images      string // pipe-separated URLs
	IsAvailable bool
	Rating      float64
	ReviewCount int
}

func (roomModel) TableName() string { return "rooms" }

// bookingModel is the bookings table
type bookingModel struct {
	ID              string `gorm:"primaryKey"`
	RoomID          string `gorm:"index"`
	UserEmail       string `gorm:"index"`
	UserDisplayName string
	UserPhotoURL    string
	BookingDate     time.Time
	CheckOutDate    time.Time
	Status          string
	CreatedAt       time.Time
}

func (bookingModel) TableName() string { return "bookings" }

// reviewModel is the reviews table
type reviewModel struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	RoomID    string `gorm:"index"`
	UserEmail string
	Rating    int
	Comment   string
	CreatedAt time.Time
}

func (reviewModel) TableName() string { return "reviews" }

// accountModel is the accounts table. Passwords are salted SHA-256; the stub
// holds development accounts only, never production credentials.
type accountModel struct {
	Email        string `gorm:"primaryKey"`
	PasswordHash string
	Salt         string
	DisplayName  string
	PhotoURL     string
	CreatedAt    time.Time
}

func (accountModel) TableName() string { return "accounts" }

// Store wraps the sqlite-backed persistence for the stub API
type Store struct {
	db *gorm.DB
}

// NewStore opens an in-memory sqlite database and migrates the schema
func NewStore(zapLogger *zap.Logger) (*Store, error) {
	// A shared cache keeps every connection of the pool on the same
	// in-memory database.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 logger.NewGormLogger(zapLogger, gormlogger.Warn),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.AutoMigrate(&roomModel{}, &bookingModel{}, &reviewModel{}, &accountModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Seed loads a small development catalog. Idempotent: an already seeded
// database is left alone.
func (s *Store) Seed() error {
	var count int64
	if err := s.db.Model(&roomModel{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	rooms := []roomModel{
		{ID: uuid.NewString(), Name: "Ocean View Suite", Description: "Top-floor suite with a sea-facing balcony.", Price: 180, Images: "https://images.example.com/rooms/ocean-1.jpg", IsAvailable: true},
		{ID: uuid.NewString(), Name: "Garden Room", Description: "Ground floor, opens onto the courtyard garden.", Price: 95, Images: "https://images.example.com/rooms/garden-1.jpg", IsAvailable: true},
		{ID: uuid.NewString(), Name: "Family Loft", Description: "Two bedrooms and a kitchenette, sleeps five.", Price: 240, Images: "https://images.example.com/rooms/loft-1.jpg|https://images.example.com/rooms/loft-2.jpg", IsAvailable: true},
		{ID: uuid.NewString(), Name: "Budget Single", Description: "Compact single near the elevator.", Price: 55, Images: "https://images.example.com/rooms/single-1.jpg", IsAvailable: false},
	}
	return s.db.Create(&rooms).Error
}

func splitImages(images string) []string {
	if images == "" {
		return []string{}
	}
	return strings.Split(images, "|")
}

func hashPassword(password, salt string) string {
	sum := sha256.Sum256([]byte(salt + password))
	return hex.EncodeToString(sum[:])
}

func newSalt() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
