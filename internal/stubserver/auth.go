package stubserver

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	identityclaims "github.com/lodgely/bookingkit/internal/infrastructure/identity"
)

const tokenLifetime = 24 * time.Hour

// contextEmailKey is where the auth middleware parks the caller's email
const contextEmailKey = "authEmail"

type registerRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	DisplayName string `json:"displayName"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type profileUpdateRequest struct {
	DisplayName *string `json:"displayName"`
	PhotoURL    *string `json:"photoURL" binding:"omitempty,url"`
}

type jwtRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// signToken issues the token the identity endpoints hand out. Profile fields
// travel in the claims so the client needs no separate lookup.
func (s *Server) signToken(account accountModel) (string, error) {
	claims := identityclaims.Claims{
		Email:       account.Email,
		DisplayName: account.DisplayName,
		PhotoURL:    account.PhotoURL,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenLifetime)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
}

func (s *Server) parseToken(raw string) (*identityclaims.Claims, error) {
	claims := &identityclaims.Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// handleRegister creates an account and returns a signed token
func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid registration details"})
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var existing accountModel
	err := s.store.db.First(&existing, "email = ?", email).Error
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"message": "Email already in use"})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.fail(c, err)
		return
	}

	salt, err := newSalt()
	if err != nil {
		s.fail(c, err)
		return
	}
	account := accountModel{
		Email:        email,
		PasswordHash: hashPassword(req.Password, salt),
		Salt:         salt,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		CreatedAt:    time.Now(),
	}
	if err := s.store.db.Create(&account).Error; err != nil {
		s.fail(c, err)
		return
	}

	token, err := s.signToken(account)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": token})
}

// handleLogin verifies credentials and returns a signed token
func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid login details"})
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var account accountModel
	if err := s.store.db.First(&account, "email = ?", email).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
		return
	}
	if hashPassword(req.Password, account.Salt) != account.PasswordHash {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
		return
	}

	token, err := s.signToken(account)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// handleProfileUpdate patches the bearer's profile and re-issues the token
func (s *Server) handleProfileUpdate(c *gin.Context) {
	raw := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	if raw == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authorization required"})
		return
	}
	claims, err := s.parseToken(raw)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
		return
	}

	var req profileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid profile details"})
		return
	}

	var account accountModel
	if err := s.store.db.First(&account, "email = ?", claims.Email).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Account not found"})
		return
	}
	if req.DisplayName != nil {
		account.DisplayName = strings.TrimSpace(*req.DisplayName)
	}
	if req.PhotoURL != nil {
		account.PhotoURL = strings.TrimSpace(*req.PhotoURL)
	}
	if err := s.store.db.Save(&account).Error; err != nil {
		s.fail(c, err)
		return
	}

	token, err := s.signToken(account)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// handleIssueCookie is POST /jwt: exchanges an email for the httpOnly
// credential cookie that booking endpoints check.
func (s *Server) handleIssueCookie(c *gin.Context) {
	var req jwtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email is required"})
		return
	}

	token, err := s.signToken(accountModel{Email: strings.ToLower(strings.TrimSpace(req.Email))})
	if err != nil {
		s.fail(c, err)
		return
	}

	c.SetCookie(s.cfg.CookieName, token, int(tokenLifetime.Seconds()), "/", "", s.cfg.CookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// handleLogout is POST /logout: clears the credential cookie
func (s *Server) handleLogout(c *gin.Context) {
	c.SetCookie(s.cfg.CookieName, "", -1, "/", "", s.cfg.CookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// requireCookie guards booking endpoints behind the credential cookie
func (s *Server) requireCookie() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(s.cfg.CookieName)
		if err != nil || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Please log in to continue"})
			return
		}
		claims, err := s.parseToken(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired session"})
			return
		}
		c.Set(contextEmailKey, claims.Email)
		c.Next()
	}
}
