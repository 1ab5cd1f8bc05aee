package main

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"bukubesar/models"
	"bukubesar/pkg/ledger"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

func setupRoutes(r *gin.Engine) {
	r.POST("/register", registerHandler)
	r.POST("/login", loginHandler)
	r.POST("/refresh", refreshHandler)
	r.POST("/revoke_refresh", revokeRefreshHandler)
	authGroup := r.Group("")
	authGroup.Use(jwtAuthMiddleware())
	authGroup.GET("/me", meHandler)

	authGroup.POST("/accounts", createAccountHandler)
	authGroup.GET("/accounts", listAccountsHandler)
	authGroup.GET("/accounts/:id", getAccountHandler)
	authGroup.PUT("/accounts/:id", updateAccountHandler)
	authGroup.DELETE("/accounts/:id", deleteAccountHandler)

	authGroup.POST("/financial_years", createFinancialYearHandler)
	authGroup.GET("/financial_years", listFinancialYearsHandler)
	authGroup.GET("/financial_years/:id", getFinancialYearHandler)
	authGroup.PUT("/financial_years/:id", updateFinancialYearHandler)
	authGroup.DELETE("/financial_years/:id", deleteFinancialYearHandler)

	authGroup.POST("/events", createEventHandler)
	authGroup.GET("/events", listEventsHandler)
	authGroup.GET("/events/:id", getEventHandler)
	// Events are immutable once written; both update verbs are rejected
	// unconditionally, as are updates to individual transactions.
	authGroup.PUT("/events/:id", rejectEventUpdateHandler)
	authGroup.PATCH("/events/:id", rejectEventUpdateHandler)
	authGroup.DELETE("/events/:id", deleteEventHandler)
	authGroup.PUT("/transactions/:id", rejectTransactionUpdateHandler)
	authGroup.PATCH("/transactions/:id", rejectTransactionUpdateHandler)

	authGroup.POST("/attachments", uploadAttachmentHandler)
	authGroup.GET("/attachments", listAttachmentsHandler)
	authGroup.GET("/attachments/:id", getAttachmentHandler)
	authGroup.GET("/attachments/:id/download", downloadAttachmentHandler)
	authGroup.PUT("/attachments/:id", reassignAttachmentHandler)
	authGroup.DELETE("/attachments/:id", deleteAttachmentHandler)
}

func jwtAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || len(authHeader) < 8 || authHeader[:7] != "Bearer " {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid Authorization header"})
			c.Abort()
			return
		}
		tokenString := authHeader[7:]
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrInvalidKeyType
			}
			return jwtSecret, nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			c.Abort()
			return
		}
		username, _ := claims["username"].(string)
		role, _ := claims["role"].(string)
		c.Set("username", username)
		if role != "" {
			c.Set("role", role)
		}
		c.Next()
	}
}

func meHandler(c *gin.Context) {
	usernameVal, _ := c.Get("username")
	if usernameVal == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "context missing username"})
		return
	}
	username := usernameVal.(string)
	c.JSON(http.StatusOK, gin.H{"username": username})
}

// isAdmin reports whether the current request carries the administrator role.
// Destructive operations (deletes) are admin-only.
func isAdmin(c *gin.Context) bool {
	role, _ := c.Get("role")
	return role == "administrator"
}

func parseIDParam(c *gin.Context) (uint, bool) {
	v, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || v == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return 0, false
	}
	return uint(v), true
}

// writeValidationError maps a ledger validation failure onto the response,
// keeping the message text intact (callers display it directly).
func writeValidationError(c *gin.Context, verr *ledger.ValidationError) {
	resp := gin.H{"error": verr.Message}
	if verr.Field != "" {
		resp["field"] = verr.Field
	}
	c.JSON(http.StatusBadRequest, resp)
}

// ---- auth ----

func registerHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := RegisterUser(req.Username, req.Password); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user registered successfully"})
}

func loginHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := Authenticate(req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	// Generate JWT token. Resolve role name from RoleID (we only store role_id).
	roleName := ""
	if user.RoleID != nil {
		var r models.Role
		if err := db.First(&r, *user.RoleID).Error; err == nil {
			roleName = r.Name
		}
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": user.Username,
		"role":     roleName,
		"exp":      time.Now().Add(time.Hour * 24).Unix(),
	})
	tokenString, err := token.SignedString(jwtSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	// create refresh token
	refreshToken, err := createAndStoreRefreshToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "login successful", "token": tokenString, "refresh_token": refreshToken})
}

// createAndStoreRefreshToken generates a random refresh token, stores its hash with expiry and returns the raw token string
func createAndStoreRefreshToken(userID uint) (string, error) {
	// generate random 32-byte token (hex)
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	token := hex.EncodeToString(b)
	// hash for storage
	h := sha256.Sum256([]byte(token))
	th := hex.EncodeToString(h[:])
	rt := models.RefreshToken{UserID: userID, TokenHash: th, ExpiresAt: time.Now().Add(30 * 24 * time.Hour)}
	if err := db.Create(&rt).Error; err != nil {
		return "", err
	}
	return token, nil
}

// helper to find refresh token record by raw token string
func findRefreshTokenByRaw(token string) (*models.RefreshToken, error) {
	h := sha256.Sum256([]byte(token))
	th := hex.EncodeToString(h[:])
	var rt models.RefreshToken
	if err := db.Where("token_hash = ?", th).First(&rt).Error; err != nil {
		return nil, err
	}
	return &rt, nil
}

// refreshHandler exchanges a refresh token for a new access token and rotates the refresh token
func refreshHandler(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rt, err := findRefreshTokenByRaw(req.RefreshToken)
	if err != nil || rt.Revoked || time.Now().After(rt.ExpiresAt) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired refresh token"})
		return
	}
	// load user
	var user models.User
	if err := db.First(&user, rt.UserID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	// create access token
	roleName := ""
	if user.RoleID != nil {
		var r models.Role
		if err := db.First(&r, *user.RoleID).Error; err == nil {
			roleName = r.Name
		}
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": user.Username,
		"role":     roleName,
		"exp":      time.Now().Add(15 * time.Minute).Unix(),
	})
	tokenString, err := token.SignedString(jwtSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	// rotate refresh token: revoke existing and create new one
	db.Model(&models.RefreshToken{}).Where("id = ?", rt.ID).Update("revoked", true)
	newRT, err := createAndStoreRefreshToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to rotate refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": tokenString, "refresh_token": newRT})
}

// revokeRefreshHandler revokes a given refresh token (useful on logout)
func revokeRefreshHandler(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rt, err := findRefreshTokenByRaw(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "refresh token not found"})
		return
	}
	rt.Revoked = true
	if err := db.Save(rt).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "refresh token revoked"})
}

// ---- accounts ----

func createAccountHandler(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
		Code int    `json:"code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	acct := models.Account{Name: req.Name, Code: req.Code}
	if err := db.Create(&acct).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, acct)
}

func listAccountsHandler(c *gin.Context) {
	var accounts []models.Account
	if err := db.Order("code").Limit(500).Find(&accounts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, accounts)
}

func getAccountHandler(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var acct models.Account
	if err := db.First(&acct, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, acct)
}

func updateAccountHandler(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var acct models.Account
	if err := db.First(&acct, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	var req struct {
		Name string `json:"name" binding:"required"`
		Code int    `json:"code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	acct.Name = req.Name
	acct.Code = req.Code
	if err := db.Save(&acct).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, acct)
}

func deleteAccountHandler(c *gin.Context) {
	if !isAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var acct models.Account
	if err := db.First(&acct, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	// DB-level cascade removes dependent transactions
	if err := db.Delete(&acct).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "account deleted"})
}

// ---- financial years ----

func bindFinancialYear(c *gin.Context) (start, end time.Time, ok bool) {
	var req struct {
		StartDate string `json:"start_date" binding:"required"`
		EndDate   string `json:"end_date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be formatted YYYY-MM-DD"})
		return
	}
	end, err = time.Parse(dateLayout, req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be formatted YYYY-MM-DD"})
		return
	}
	if verr := ledger.ValidateFinancialYear(start, end); verr != nil {
		writeValidationError(c, verr.(*ledger.ValidationError))
		return
	}
	return start, end, true
}

func createFinancialYearHandler(c *gin.Context) {
	start, end, ok := bindFinancialYear(c)
	if !ok {
		return
	}
	fy := models.FinancialYear{StartDate: start, EndDate: end}
	if err := db.Create(&fy).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, fy)
}

func listFinancialYearsHandler(c *gin.Context) {
	var years []models.FinancialYear
	if err := db.Order("start_date").Limit(200).Find(&years).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, years)
}

func getFinancialYearHandler(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var fy models.FinancialYear
	if err := db.First(&fy, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, fy)
}

func updateFinancialYearHandler(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var fy models.FinancialYear
	if err := db.First(&fy, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	start, end, ok := bindFinancialYear(c)
	if !ok {
		return
	}
	fy.StartDate = start
	fy.EndDate = end
	if err := db.Save(&fy).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, fy)
}

func deleteFinancialYearHandler(c *gin.Context) {
	if !isAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var fy models.FinancialYear
	if err := db.First(&fy, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	// cascades to events, transactions and attachments
	if err := db.Delete(&fy).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "financial year deleted"})
}

// ---- events ----

// createEventHandler runs the event creation protocol: structural and balance
// validation first, then one atomic write of the event plus all its
// transaction lines. Nothing is persisted when any part fails.
func createEventHandler(c *gin.Context) {
	var req struct {
		Date            string                    `json:"date" binding:"required"`
		Description     string                    `json:"description" binding:"required"`
		FinancialYearID *uint                     `json:"financial_year_id"`
		Transactions    []ledger.TransactionInput `json:"transactions"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be formatted YYYY-MM-DD", "field": "date"})
		return
	}

	event, err := ledger.Create(db, ledger.EventInput{
		Date:            date,
		Description:     req.Description,
		FinancialYearID: req.FinancialYearID,
		Transactions:    req.Transactions,
	})
	if err != nil {
		var verr *ledger.ValidationError
		if errors.As(err, &verr) {
			writeValidationError(c, verr)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, event)
}

func preloadEvent(q *gorm.DB) *gorm.DB {
	// transactions come back in submission order
	return q.Preload("Transactions", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("transactions.id")
	}).Preload("Attachments")
}

func listEventsHandler(c *gin.Context) {
	var events []models.Event
	if err := preloadEvent(db).Order("id desc").Limit(200).Find(&events).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, events)
}

func getEventHandler(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var event models.Event
	if err := preloadEvent(db).First(&event, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, event)
}

func rejectEventUpdateHandler(c *gin.Context) {
	// unconditional: payload content is irrelevant
	c.JSON(http.StatusMethodNotAllowed, gin.H{"error": ledger.ErrEventImmutable.Error()})
}

func rejectTransactionUpdateHandler(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, gin.H{"error": ledger.ErrTransactionImmutable.Error()})
}

func deleteEventHandler(c *gin.Context) {
	if !isAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var event models.Event
	if err := db.First(&event, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if err := db.Delete(&event).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "event deleted"})
}

// ---- attachments ----

// uploadAttachmentHandler stores a multipart file for an existing event. The
// blob is written under a freshly generated random key so identically named
// uploads never collide and original filenames never appear in storage paths.
func uploadAttachmentHandler(c *gin.Context) {
	eventIDStr := c.PostForm("event_id")
	eventID, err := strconv.ParseUint(eventIDStr, 10, 64)
	if err != nil || eventID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "event_id missing or invalid"})
		return
	}
	var event models.Event
	if err := db.First(&event, eventID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "event not found"})
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file missing"})
		return
	}
	if file.Size > 10*1024*1024 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large (max 10MB)"})
		return
	}
	// simple content type sniff via header
	ct := file.Header.Get("Content-Type")
	ext := strings.ToLower(filepath.Ext(file.Filename))
	key := uuid.New().String() + ext
	storePath := "attachments/" + key
	baseDir := attachmentBaseDir()
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "mkdir failed"})
		return
	}
	fullPath := filepath.Join(baseDir, key)
	if err := c.SaveUploadedFile(file, fullPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	att := models.Attachment{
		EventID:     event.ID,
		FileName:    file.Filename,
		StorePath:   storePath,
		ContentType: ct,
	}
	if err := db.Create(&att).Error; err != nil {
		_ = os.Remove(fullPath)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db save failed"})
		return
	}
	if strings.HasPrefix(ct, "image/") {
		writeThumbnail(fullPath)
	}
	c.JSON(http.StatusCreated, att)
}

// writeThumbnail renders a small preview next to the stored blob. Best effort:
// an undecodable image just means no preview.
func writeThumbnail(srcPath string) {
	img, err := imaging.Open(srcPath)
	if err != nil {
		return
	}
	thumb := imaging.Resize(img, 320, 0, imaging.Lanczos)
	ext := filepath.Ext(srcPath)
	dst := strings.TrimSuffix(srcPath, ext) + "_thumb" + ext
	_ = imaging.Save(thumb, dst)
}

func listAttachmentsHandler(c *gin.Context) {
	var attachments []models.Attachment
	q := db.Model(&models.Attachment{})
	if v := c.Query("event_id"); v != "" {
		q = q.Where("event_id = ?", v)
	}
	if err := q.Order("id desc").Limit(200).Find(&attachments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, attachments)
}

func getAttachmentHandler(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var att models.Attachment
	if err := db.First(&att, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, att)
}

func downloadAttachmentHandler(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var att models.Attachment
	if err := db.First(&att, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	key := strings.TrimPrefix(att.StorePath, "attachments/")
	fullPath := filepath.Join(attachmentBaseDir(), key)
	if _, err := os.Stat(fullPath); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "blob missing"})
		return
	}
	if att.ContentType != "" {
		c.Header("Content-Type", att.ContentType)
	}
	c.FileAttachment(fullPath, att.FileName)
}

// reassignAttachmentHandler moves an attachment to another event. This is the
// one permitted post-creation update in the ledger; the stored blob and its
// key never change.
func reassignAttachmentHandler(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var att models.Attachment
	if err := db.First(&att, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	var req struct {
		EventID uint `json:"event_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var event models.Event
	if err := db.First(&event, req.EventID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "event not found"})
		return
	}
	if err := db.Model(&att).Update("event_id", event.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	att.EventID = event.ID
	c.JSON(http.StatusOK, att)
}

func deleteAttachmentHandler(c *gin.Context) {
	if !isAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var att models.Attachment
	if err := db.First(&att, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if err := db.Delete(&att).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	// best effort blob cleanup
	key := strings.TrimPrefix(att.StorePath, "attachments/")
	_ = os.Remove(filepath.Join(attachmentBaseDir(), key))
	c.JSON(http.StatusOK, gin.H{"message": "attachment deleted"})
}
