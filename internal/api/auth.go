package api

import (
	"net/http" // HTTP status codes
	"regexp"   // Email validation
	"strings"  // String manipulation
	"time"     // Code expiry math

	"medmarket/internal/domain" // Importing domain models
	"medmarket/internal/mailer" // Outbound email
	"medmarket/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// RegisterRequest is the self-service signup payload.
type RegisterRequest struct {
	Email       string `json:"email" binding:"required"`    // Email must be provided
	Password    string `json:"password" binding:"required"` // Password must be provided
	CompanyName string `json:"company_name"`                // Hospital or supplier name
	Role        string `json:"role" binding:"required"`     // buyer or vendor; admin is not registrable
}

// VerifyRequest carries the emailed code back.
type VerifyRequest struct {
	Email string `json:"email" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

// ResendRequest asks for a fresh verification code.
type ResendRequest struct {
	Email string `json:"email" binding:"required"`
}

// LoginRequest is the credential payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse carries the session token.
type AuthResponse struct {
	Token string `json:"token"` // JWT token
}

// emailRe is a permissive shape check; ownership is proven by the code flow.
var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// isValidPassword checks if the password length is between 8 and 72 characters
// (72 is the bcrypt input limit).
func isValidPassword(password string) bool {
	return len(password) >= 8 && len(password) <= 72
}

// issueVerificationCode creates and persists a fresh code for the user.
// The newest code is the only one that verifies; older rows become dead.
func issueVerificationCode(db *gorm.DB, userID uint) (string, error) {
	code, err := utils.NewVerificationCode()
	if err != nil {
		return "", err
	}
	vc := domain.VerificationCode{
		UserID:    userID,
		Code:      code,
		ExpiresAt: time.Now().Add(domain.VerificationCodeTTL).UnixMilli(),
	}
	if err := db.Create(&vc).Error; err != nil {
		return "", err
	}
	return code, nil
}

// RegisterHandler creates an unverified account and emails a verification code
func RegisterHandler(db *gorm.DB, mail mailer.Sender) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "Invalid request"))
			return
		}
		email := strings.ToLower(strings.TrimSpace(req.Email)) // Emails are stored lowercase
		if !emailRe.MatchString(email) {
			c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "Invalid email address"))
			return
		}
		if !isValidPassword(req.Password) {
			c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "Password must be 8-72 characters"))
			return
		}
		role := domain.Role(req.Role)
		// Only buyer and vendor are self-registrable
		if role != domain.RoleBuyer && role != domain.RoleVendor {
			c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "Role must be buyer or vendor"))
			return
		}
		// Hash the password and create the user
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Failed to hash password"))
			return
		}
		user := domain.User{
			Email:       email,
			Password:    string(hash),
			CompanyName: req.CompanyName,
			Role:        role,
		}
		if err := db.Create(&user).Error; err != nil {
			// Unique index on email makes duplicates fail here
			c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "Email already registered"))
			return
		}
		code, err := issueVerificationCode(db, user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Failed to issue verification code"))
			return
		}
		// The account exists either way; a failed send is surfaced so the
		// caller knows to use resend.
		if err := mail.SendVerificationCode(c.Request.Context(), user.Email, code); err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": user.ID,
				"error":   err.Error(),
			}).Error("Verification email failed")
			c.JSON(http.StatusBadGateway, errPayload(CodeExternal, "Failed to send verification email"))
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id": user.ID,
			"role":    user.Role,
		}).Info("User registered")
		c.JSON(http.StatusCreated, gin.H{"message": "User registered, verification code sent", "user_id": user.ID})
	}
}

// VerifyHandler checks the most recent code for the account and, exactly once,
// marks both the code and the user verified
func VerifyHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req VerifyRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "Invalid request"))
			return
		}
		var user domain.User
		if err := db.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error; err != nil {
			c.JSON(http.StatusNotFound, errPayload(CodeNotFound, "Account not found"))
			return
		}
		if user.Verified {
			c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "Account already verified"))
			return
		}
		// Only the most recently issued code counts
		var vc domain.VerificationCode
		if err := db.Where("user_id = ?", user.ID).Order("created_at desc, id desc").First(&vc).Error; err != nil {
			c.JSON(http.StatusNotFound, errPayload(CodeNotFound, "No verification code issued"))
			return
		}
		// Expired, consumed or mismatched codes are rejected without mutating state
		if vc.Verified {
			c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "Code already used"))
			return
		}
		if vc.Expired(time.Now()) {
			c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "Code expired"))
			return
		}
		if vc.Code != req.Code {
			c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "Incorrect code"))
			return
		}
		// Flip the code and the user together
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&vc).Update("verified", true).Error; err != nil {
				return err // Return error to rollback
			}
			return tx.Model(&user).Update("verified", true).Error
		})
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": user.ID,
				"error":   err.Error(),
			}).Error("Verification failed")
			c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Verification failed"))
			return
		}
		logrus.WithFields(logrus.Fields{"user_id": user.ID}).Info("User verified")
		c.JSON(http.StatusOK, gin.H{"message": "Email verified"})
	}
}

// ResendHandler issues a fresh code, superseding earlier ones
func ResendHandler(db *gorm.DB, mail mailer.Sender) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ResendRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "Invalid request"))
			return
		}
		var user domain.User
		if err := db.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error; err != nil {
			c.JSON(http.StatusNotFound, errPayload(CodeNotFound, "Account not found"))
			return
		}
		if user.Verified {
			c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "Account already verified"))
			return
		}
		code, err := issueVerificationCode(db, user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Failed to issue verification code"))
			return
		}
		if err := mail.SendVerificationCode(c.Request.Context(), user.Email, code); err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": user.ID,
				"error":   err.Error(),
			}).Error("Verification email failed")
			c.JSON(http.StatusBadGateway, errPayload(CodeExternal, "Failed to send verification email"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Verification code sent"})
	}
}

// LoginHandler authenticates a verified user and returns a JWT token
func LoginHandler(db *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "Invalid request"))
			return
		}
		var user domain.User // Fetch user from database
		if err := db.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, errPayload(CodeUnauthenticated, "Invalid credentials"))
			return
		}
		// Compare provided password with stored hash
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, errPayload(CodeUnauthenticated, "Invalid credentials"))
			return
		}
		// Unverified credentials never mint tokens
		if !user.Verified {
			c.JSON(http.StatusForbidden, errPayload(CodeForbidden, "Email not verified"))
			return
		}
		token, err := utils.GenerateJWT(user.ID, jwtSecret)
		if err != nil {
			c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Failed to generate token"))
			return
		}
		c.JSON(http.StatusOK, AuthResponse{Token: token})
	}
}
