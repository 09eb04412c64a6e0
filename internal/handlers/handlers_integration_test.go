package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"subcanvas/internal/handlers"
	"subcanvas/internal/middleware"
	"subcanvas/internal/models"
	"subcanvas/internal/repositories"
	"subcanvas/internal/services"
	"subcanvas/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupApp wires the full API against an in-memory SQLite database. Each test
// gets its own database so state never leaks between tests.
func setupApp(t *testing.T) (*fiber.App, *services.AuthService, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	assert.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.SnsAccount{},
		&models.ProfilePage{},
		&models.ProfileContent{},
		&models.PageVisit{},
		&models.AbuseReport{},
	)
	assert.NoError(t, err)

	userRepo := repositories.NewGORMUserRepository(db)
	profileRepo := repositories.NewGORMProfileRepository(db)
	reportRepo := repositories.NewGORMReportRepository(db)

	storageService := storage.New(storage.Config{LocalDir: t.TempDir()})

	authService := services.NewAuthService(userRepo, "test_jwt_secret")
	userService := services.NewUserService(userRepo)
	profileService := services.NewProfileService(profileRepo, reportRepo, storageService, nil)

	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	profileHandler := handlers.NewProfileHandler(profileService)

	app := fiber.New()
	api := app.Group("/api")

	authRequired := middleware.AuthRequired(authService)
	authOptional := middleware.AuthOptional(authService)

	authHandler.RegisterRoutes(api)
	userHandler.RegisterRoutes(api, authRequired)
	profileHandler.RegisterRoutes(api, authRequired, authOptional)

	return app, authService, db
}

// TestMain suppresses logging for cleaner test output.
func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

// doJSON issues a JSON request with an optional bearer token.
func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	return resp
}

// decodeBody decodes a response body into out and closes it.
func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	resp.Body.Close()
}

// registerUser registers a fresh account and returns its token and ID.
func registerUser(t *testing.T, app *fiber.App, email, nickname string) (token, userID string) {
	t.Helper()

	resp := doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    email,
		"password": "password123",
		"nickname": nickname,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		AccessToken string `json:"accessToken"`
		User        struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	decodeBody(t, resp, &result)
	assert.NotEmpty(t, result.AccessToken)
	return result.AccessToken, result.User.ID
}

// makeAdmin seeds an ADMIN account directly and signs it in.
func makeAdmin(t *testing.T, authService *services.AuthService, db *gorm.DB, email string) string {
	t.Helper()

	admin := &models.User{
		ID:           "admin-" + email,
		Email:        email,
		Nickname:     "admin",
		AuthProvider: models.ProviderLocal,
		Role:         models.RoleAdmin,
		Status:       models.StatusActive,
	}
	assert.NoError(t, db.Create(admin).Error)

	result, err := authService.Login(admin)
	assert.NoError(t, err)
	return result.AccessToken
}

func TestAuthRegisterAndLogin(t *testing.T) {
	app, authService, _ := setupApp(t)

	// Registration issues a usable token right away
	token, userID := registerUser(t, app, "reg@example.com", "registrant")
	claims, err := authService.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, userID, claims["sub"])
	assert.Equal(t, "reg@example.com", claims["email"])

	// The same email cannot register twice
	resp := doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "reg@example.com",
		"password": "password123",
		"nickname": "copycat",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Login with the right password
	resp = doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "reg@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var loginResult struct {
		AccessToken string `json:"accessToken"`
	}
	decodeBody(t, resp, &loginResult)
	assert.NotEmpty(t, loginResult.AccessToken)

	// Wrong password is unauthorized
	resp = doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "reg@example.com",
		"password": "not-it",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// The token resolves the current account
	resp = doJSON(t, app, http.MethodGet, "/api/auth/profile", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var me models.User
	decodeBody(t, resp, &me)
	assert.Equal(t, userID, me.ID)
	assert.Equal(t, "registrant", me.Nickname)
}

func TestSocialLogin(t *testing.T) {
	app, _, _ := setupApp(t)

	socialBody := map[string]string{
		"email":      "social@example.com",
		"nickname":   "socialite",
		"provider":   "GOOGLE",
		"providerId": "google-abc",
	}

	// First call registers
	resp := doJSON(t, app, http.MethodPost, "/api/auth/social-login", "", socialBody)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var first struct {
		AccessToken string `json:"accessToken"`
		User        struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	decodeBody(t, resp, &first)
	assert.NotEmpty(t, first.AccessToken)

	// Second call logs into the same account
	resp = doJSON(t, app, http.MethodPost, "/api/auth/social-login", "", socialBody)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var second struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	decodeBody(t, resp, &second)
	assert.Equal(t, first.User.ID, second.User.ID)

	// The same email under a different provider conflicts
	socialBody["provider"] = "KAKAO"
	socialBody["providerId"] = "kakao-xyz"
	resp = doJSON(t, app, http.MethodPost, "/api/auth/social-login", "", socialBody)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestProfilePageLifecycle(t *testing.T) {
	app, _, _ := setupApp(t)
	token, userID := registerUser(t, app, "owner@example.com", "owner")

	// Create a page
	resp := doJSON(t, app, http.MethodPost, "/api/profiles/", token, map[string]string{
		"pagePath":      "my-canvas",
		"designConcept": "minimal dark",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var page models.ProfilePage
	decodeBody(t, resp, &page)
	assert.NotZero(t, page.ID)
	assert.Equal(t, userID, page.UserID)

	// The path is globally unique
	otherToken, _ := registerUser(t, app, "other@example.com", "other")
	resp = doJSON(t, app, http.MethodPost, "/api/profiles/", otherToken, map[string]string{
		"pagePath": "my-canvas",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Path characters are restricted
	resp = doJSON(t, app, http.MethodPost, "/api/profiles/", token, map[string]string{
		"pagePath": "Bad Path!",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Contents append in display order
	resp = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/profiles/%d/contents", page.ID), token, map[string]string{
		"contentType":  "BIO_TEXT",
		"contentValue": "hello world",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var firstContent models.ProfileContent
	decodeBody(t, resp, &firstContent)
	assert.Equal(t, 1, firstContent.DisplayOrder)

	resp = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/profiles/%d/contents", page.ID), token, map[string]string{
		"contentType":  "LINK",
		"contentValue": "https://example.com",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var secondContent models.ProfileContent
	decodeBody(t, resp, &secondContent)
	assert.Equal(t, 2, secondContent.DisplayOrder)

	// Page detail includes ordered contents and the owner summary
	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/profiles/%d", page.ID), token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var detail models.ProfilePage
	decodeBody(t, resp, &detail)
	assert.Len(t, detail.Contents, 2)
	assert.Equal(t, "hello world", detail.Contents[0].ContentValue)
	assert.NotNil(t, detail.Owner)
	assert.Equal(t, "owner", detail.Owner.Nickname)

	// Public view by path records a visit each time
	resp = doJSON(t, app, http.MethodGet, "/api/profiles/by-path/my-canvas", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	resp = doJSON(t, app, http.MethodGet, "/api/profiles/by-path/my-canvas", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var publicView models.ProfilePage
	decodeBody(t, resp, &publicView)
	assert.Equal(t, int64(2), publicView.VisitCount)

	// Visit stats cover both views in the day window, from one hashed visitor
	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/profiles/%d/stats?period=day", page.ID), token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var stats services.VisitStats
	decodeBody(t, resp, &stats)
	assert.Equal(t, int64(2), stats.TotalVisits)
	assert.Equal(t, int64(1), stats.UniqueVisitors)
	assert.Equal(t, "day", stats.Period)

	// Update then delete a content block
	resp = doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/profiles/contents/%d", firstContent.ID), token, map[string]string{
		"contentValue": "updated bio",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var updatedContent models.ProfileContent
	decodeBody(t, resp, &updatedContent)
	assert.Equal(t, "updated bio", updatedContent.ContentValue)

	resp = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/profiles/contents/%d", secondContent.ID), token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Update the page itself
	resp = doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/profiles/%d", page.ID), token, map[string]string{
		"designConcept": "bright and loud",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var updatedPage models.ProfilePage
	decodeBody(t, resp, &updatedPage)
	assert.Equal(t, "bright and loud", updatedPage.DesignConcept)

	// My pages listing carries counts
	resp = doJSON(t, app, http.MethodGet, "/api/profiles/my", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var myPages []models.ProfilePage
	decodeBody(t, resp, &myPages)
	assert.Len(t, myPages, 1)
	assert.Equal(t, int64(1), myPages[0].ContentCount)
	assert.Equal(t, int64(2), myPages[0].VisitCount)

	// Delete the page; the public path disappears with it
	resp = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/profiles/%d", page.ID), token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/api/profiles/by-path/my-canvas", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestOwnershipIsEnforced(t *testing.T) {
	app, _, _ := setupApp(t)
	ownerToken, _ := registerUser(t, app, "owner2@example.com", "owner")
	intruderToken, _ := registerUser(t, app, "intruder@example.com", "intruder")

	resp := doJSON(t, app, http.MethodPost, "/api/profiles/", ownerToken, map[string]string{
		"pagePath": "guarded",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var page models.ProfilePage
	decodeBody(t, resp, &page)

	// Someone else cannot update, extend or delete the page
	resp = doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/profiles/%d", page.ID), intruderToken, map[string]string{
		"designConcept": "defaced",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/profiles/%d/contents", page.ID), intruderToken, map[string]string{
		"contentType":  "LINK",
		"contentValue": "https://spam.example.com",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/profiles/%d/stats", page.ID), intruderToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/profiles/%d", page.ID), intruderToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// Anonymous requests to protected routes are unauthorized
	resp = doJSON(t, app, http.MethodGet, "/api/profiles/my", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestAdminUserManagement(t *testing.T) {
	app, authService, db := setupApp(t)
	userToken, userID := registerUser(t, app, "member@example.com", "member")
	adminToken := makeAdmin(t, authService, db, "admin@example.com")

	// Regular users cannot reach the admin surface
	resp := doJSON(t, app, http.MethodGet, "/api/users/", userToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// Admins list users with a total
	resp = doJSON(t, app, http.MethodGet, "/api/users/?skip=0&take=10", adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var listing struct {
		Users []models.User `json:"users"`
		Total int64         `json:"total"`
	}
	decodeBody(t, resp, &listing)
	assert.Equal(t, int64(2), listing.Total)

	// Banning takes effect on the banned user's very next request
	resp = doJSON(t, app, http.MethodPut, "/api/users/"+userID+"/status", adminToken, map[string]string{
		"status": "BANNED",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var banned models.User
	decodeBody(t, resp, &banned)
	assert.Equal(t, models.StatusBanned, banned.Status)

	resp = doJSON(t, app, http.MethodGet, "/api/users/me", userToken, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Admin deletion needs no password
	resp = doJSON(t, app, http.MethodDelete, "/api/users/"+userID, adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/api/users/"+userID, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestAccountSelfService(t *testing.T) {
	app, _, _ := setupApp(t)
	token, _ := registerUser(t, app, "self@example.com", "selfie")

	// Nickname change
	resp := doJSON(t, app, http.MethodPut, "/api/users/me", token, map[string]string{
		"nickname": "renamed",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var updated models.User
	decodeBody(t, resp, &updated)
	assert.Equal(t, "renamed", updated.Nickname)

	// Password change requires the current password
	resp = doJSON(t, app, http.MethodPut, "/api/users/me", token, map[string]string{
		"password": "brand-new-pass",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPut, "/api/users/me", token, map[string]string{
		"password":        "brand-new-pass",
		"currentPassword": "password123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// SNS accounts attach and detach
	resp = doJSON(t, app, http.MethodPost, "/api/users/me/sns", token, map[string]string{
		"snsType": "INSTAGRAM",
		"snsUrl":  "https://instagram.com/selfie",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var sns models.SnsAccount
	decodeBody(t, resp, &sns)
	assert.NotZero(t, sns.ID)

	resp = doJSON(t, app, http.MethodGet, "/api/users/me", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var me models.User
	decodeBody(t, resp, &me)
	assert.Len(t, me.SnsAccounts, 1)

	resp = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/users/me/sns/%d", sns.ID), token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Account deletion confirms with the new password, then the token dies
	resp = doJSON(t, app, http.MethodDelete, "/api/users/me", token, map[string]string{
		"currentPassword": "wrong",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodDelete, "/api/users/me", token, map[string]string{
		"currentPassword": "brand-new-pass",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/api/users/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestAbuseReportFlow(t *testing.T) {
	app, authService, db := setupApp(t)
	ownerToken, _ := registerUser(t, app, "reported@example.com", "reported")
	reporterToken, reporterID := registerUser(t, app, "reporter@example.com", "reporter")
	adminToken := makeAdmin(t, authService, db, "mod@example.com")

	resp := doJSON(t, app, http.MethodPost, "/api/profiles/", ownerToken, map[string]string{
		"pagePath": "sketchy-page",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var page models.ProfilePage
	decodeBody(t, resp, &page)

	// Anonymous report
	resp = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/profiles/%d/report", page.ID), "", map[string]string{
		"reportCategory": "SPAM",
		"reportDetails":  "nothing but ads",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var anonReport models.AbuseReport
	decodeBody(t, resp, &anonReport)
	assert.Equal(t, models.ReportStatusPending, anonReport.Status)
	assert.Nil(t, anonReport.ReporterUserID)

	// Signed-in report carries the reporter
	resp = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/profiles/%d/report", page.ID), reporterToken, map[string]string{
		"reportCategory": "HARASSMENT",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var signedReport models.AbuseReport
	decodeBody(t, resp, &signedReport)
	assert.NotNil(t, signedReport.ReporterUserID)
	assert.Equal(t, reporterID, *signedReport.ReporterUserID)

	// Reporting a missing page fails
	resp = doJSON(t, app, http.MethodPost, "/api/profiles/99999/report", "", map[string]string{
		"reportCategory": "SPAM",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// Only admins see the report queue
	resp = doJSON(t, app, http.MethodGet, "/api/profiles/reports", reporterToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/api/profiles/reports?status=PENDING", adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var queue struct {
		Reports []models.AbuseReport `json:"reports"`
		Total   int64                `json:"total"`
	}
	decodeBody(t, resp, &queue)
	assert.Equal(t, int64(2), queue.Total)
	assert.NotNil(t, queue.Reports[0].ReportedProfile)
	assert.Equal(t, "sketchy-page", queue.Reports[0].ReportedProfile.PagePath)

	// Triage moves the report along and filters track it
	resp = doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/profiles/reports/%d", anonReport.ID), adminToken, map[string]string{
		"status": "RESOLVED",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var resolved models.AbuseReport
	decodeBody(t, resp, &resolved)
	assert.Equal(t, models.ReportStatusResolved, resolved.Status)

	resp = doJSON(t, app, http.MethodGet, "/api/profiles/reports?status=PENDING", adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &queue)
	assert.Equal(t, int64(1), queue.Total)
}

func TestUploadImage(t *testing.T) {
	app, _, _ := setupApp(t)
	token, _ := registerUser(t, app, "uploader@example.com", "uploader")

	buildUpload := func(fieldName, fileName string, content []byte) (*bytes.Buffer, string) {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		part, err := writer.CreateFormFile(fieldName, fileName)
		assert.NoError(t, err)
		_, err = part.Write(content)
		assert.NoError(t, err)
		assert.NoError(t, writer.Close())
		return body, writer.FormDataContentType()
	}

	// A valid image lands on local disk and comes back as an uploads URL
	body, contentType := buildUpload("image", "avatar.png", []byte("png-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/profiles/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var uploadResult struct {
		URL string `json:"url"`
	}
	decodeBody(t, resp, &uploadResult)
	assert.True(t, strings.HasPrefix(uploadResult.URL, "/uploads/profiles/"), "got %q", uploadResult.URL)
	assert.True(t, strings.HasSuffix(uploadResult.URL, ".png"), "got %q", uploadResult.URL)

	// Unsupported extensions are rejected
	body, contentType = buildUpload("image", "script.exe", []byte("not an image"))
	req = httptest.NewRequest(http.MethodPost, "/api/profiles/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// The multipart field name matters
	body, contentType = buildUpload("file", "avatar.png", []byte("png-bytes"))
	req = httptest.NewRequest(http.MethodPost, "/api/profiles/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}
