package handlers

import (
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"subcanvas/internal/middleware"
	"subcanvas/internal/models"
	"subcanvas/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// maxUploadSize caps profile image uploads at 5MB.
const maxUploadSize = 5 * 1024 * 1024

var (
	pagePathPattern  = regexp.MustCompile(`^[a-z0-9-_]+$`)
	allowedImageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true}
)

// ProfileHandler handles HTTP requests for profile pages, contents, uploads,
// stats and abuse reports.
type ProfileHandler struct {
	service  *services.ProfileService
	validate *validator.Validate
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(service *services.ProfileService) *ProfileHandler {
	v := validator.New()
	// pagePath allows lowercase letters, digits, hyphen and underscore only.
	_ = v.RegisterValidation("pagepath", func(fl validator.FieldLevel) bool {
		return pagePathPattern.MatchString(fl.Field().String())
	})
	return &ProfileHandler{
		service:  service,
		validate: v,
	}
}

// RegisterRoutes registers the profile routes. Static paths go first so they
// are not shadowed by the :id parameter routes.
func (h *ProfileHandler) RegisterRoutes(router fiber.Router, authRequired, authOptional fiber.Handler) {
	adminOnly := middleware.RoleRequired(models.RoleAdmin)

	profiles := router.Group("/profiles")
	profiles.Post("/", authRequired, h.HandleCreatePage)
	profiles.Get("/my", authRequired, h.HandleMyPages)
	profiles.Get("/by-path/:pagePath", h.HandleGetPageByPath)
	profiles.Post("/upload", authRequired, h.HandleUploadImage)
	profiles.Get("/reports", authRequired, adminOnly, h.HandleListReports)
	profiles.Put("/reports/:reportId", authRequired, adminOnly, h.HandleUpdateReportStatus)
	profiles.Put("/contents/:contentId", authRequired, h.HandleUpdateContent)
	profiles.Delete("/contents/:contentId", authRequired, h.HandleDeleteContent)
	profiles.Post("/:profileId/contents", authRequired, h.HandleCreateContent)
	profiles.Get("/:profileId/stats", authRequired, h.HandleVisitStats)
	profiles.Post("/:profileId/report", authOptional, h.HandleReportPage)
	profiles.Get("/:id", authRequired, h.HandleGetPageByID)
	profiles.Put("/:id", authRequired, h.HandleUpdatePage)
	profiles.Delete("/:id", authRequired, h.HandleDeletePage)
}

// CreatePageRequest is the body for page creation.
type CreatePageRequest struct {
	PagePath      string `json:"pagePath" validate:"required,min=1,max=100,pagepath"`
	DesignConcept string `json:"designConcept" validate:"omitempty,max=2000"`
}

// HandleCreatePage creates a page owned by the caller.
func (h *ProfileHandler) HandleCreatePage(c *fiber.Ctx) error {
	var req CreatePageRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	user := middleware.CurrentUser(c)
	page, err := h.service.CreatePage(user.ID, req.PagePath, req.DesignConcept)
	if err != nil {
		return serviceError(c, err, "Could not create profile page")
	}
	return c.Status(fiber.StatusCreated).JSON(page)
}

// HandleMyPages lists the caller's pages with content and visit counts.
func (h *ProfileHandler) HandleMyPages(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	pages, err := h.service.ListPagesForUser(user.ID)
	if err != nil {
		return serviceError(c, err, "Could not list profile pages")
	}
	return c.JSON(pages)
}

// HandleGetPageByPath serves the public page view and records the visit when
// a client IP is available.
func (h *ProfileHandler) HandleGetPageByPath(c *fiber.Ctx) error {
	page, err := h.service.GetPageByPath(c.Params("pagePath"), c.IP())
	if err != nil {
		return serviceError(c, err, "Could not retrieve profile page")
	}
	return c.JSON(page)
}

// HandleGetPageByID returns a page with owner summary and ordered contents.
func (h *ProfileHandler) HandleGetPageByID(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badBody(c, err)
	}
	page, err := h.service.GetPageByID(id)
	if err != nil {
		return serviceError(c, err, "Could not retrieve profile page")
	}
	return c.JSON(page)
}

// UpdatePageRequest is the patch body for page updates.
type UpdatePageRequest struct {
	PagePath      string `json:"pagePath" validate:"omitempty,min=1,max=100,pagepath"`
	DesignConcept string `json:"designConcept" validate:"omitempty,max=2000"`
}

// HandleUpdatePage updates a page the caller owns.
func (h *ProfileHandler) HandleUpdatePage(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badBody(c, err)
	}
	var req UpdatePageRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	user := middleware.CurrentUser(c)
	page, err := h.service.UpdatePage(user.ID, id, services.UpdatePageInput{
		PagePath:      req.PagePath,
		DesignConcept: req.DesignConcept,
	})
	if err != nil {
		return serviceError(c, err, "Could not update profile page")
	}
	return c.JSON(page)
}

// HandleDeletePage deletes a page the caller owns.
func (h *ProfileHandler) HandleDeletePage(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badBody(c, err)
	}
	user := middleware.CurrentUser(c)
	if err := h.service.DeletePage(user.ID, id); err != nil {
		return serviceError(c, err, "Could not delete profile page")
	}
	return c.JSON(fiber.Map{
		"message": "Profile page deleted successfully",
	})
}

// CreateContentRequest is the body for adding a content block.
type CreateContentRequest struct {
	ContentType  string `json:"contentType" validate:"required,oneof=IMAGE BIO_TEXT LINK"`
	ContentValue string `json:"contentValue" validate:"required"`
}

// HandleCreateContent appends a content block to a page the caller owns.
func (h *ProfileHandler) HandleCreateContent(c *fiber.Ctx) error {
	profileID, err := parseUintParam(c, "profileId")
	if err != nil {
		return badBody(c, err)
	}
	var req CreateContentRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	user := middleware.CurrentUser(c)
	content, err := h.service.CreateContent(user.ID, profileID, req.ContentType, req.ContentValue)
	if err != nil {
		return serviceError(c, err, "Could not create content")
	}
	return c.Status(fiber.StatusCreated).JSON(content)
}

// UpdateContentRequest is the patch body for content updates.
type UpdateContentRequest struct {
	ContentType  string `json:"contentType" validate:"omitempty,oneof=IMAGE BIO_TEXT LINK"`
	ContentValue string `json:"contentValue" validate:"omitempty"`
	DisplayOrder *int   `json:"displayOrder" validate:"omitempty,min=1"`
}

// HandleUpdateContent updates a block on a page the caller owns.
func (h *ProfileHandler) HandleUpdateContent(c *fiber.Ctx) error {
	contentID, err := parseUintParam(c, "contentId")
	if err != nil {
		return badBody(c, err)
	}
	var req UpdateContentRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	user := middleware.CurrentUser(c)
	content, err := h.service.UpdateContent(user.ID, contentID, services.UpdateContentInput{
		ContentType:  req.ContentType,
		ContentValue: req.ContentValue,
		DisplayOrder: req.DisplayOrder,
	})
	if err != nil {
		return serviceError(c, err, "Could not update content")
	}
	return c.JSON(content)
}

// HandleDeleteContent deletes a block on a page the caller owns.
func (h *ProfileHandler) HandleDeleteContent(c *fiber.Ctx) error {
	contentID, err := parseUintParam(c, "contentId")
	if err != nil {
		return badBody(c, err)
	}
	user := middleware.CurrentUser(c)
	if err := h.service.DeleteContent(user.ID, contentID); err != nil {
		return serviceError(c, err, "Could not delete content")
	}
	return c.JSON(fiber.Map{
		"message": "Content deleted successfully",
	})
}

// HandleUploadImage accepts a multipart image (field "image", jpg/jpeg/png/gif,
// max 5MB) and returns the stored URL.
func (h *ProfileHandler) HandleUploadImage(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Image file is required (multipart field 'image')",
		})
	}
	if fileHeader.Size > maxUploadSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Image must be 5MB or smaller",
		})
	}
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedImageExts[ext] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Only jpg, jpeg, png and gif images are allowed",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return serviceError(c, err, "Could not read uploaded file")
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return serviceError(c, err, "Could not read uploaded file")
	}

	user := middleware.CurrentUser(c)
	url, err := h.service.UploadImage(c.Context(), user.ID, data, fileHeader.Filename)
	if err != nil {
		return serviceError(c, err, "Could not store uploaded file")
	}
	return c.JSON(fiber.Map{
		"url": url,
	})
}

// HandleVisitStats returns visit counts for a page the caller owns over the
// requested period (day, week or month).
func (h *ProfileHandler) HandleVisitStats(c *fiber.Ctx) error {
	profileID, err := parseUintParam(c, "profileId")
	if err != nil {
		return badBody(c, err)
	}
	user := middleware.CurrentUser(c)
	stats, err := h.service.GetVisitStats(user.ID, profileID, c.Query("period", "day"))
	if err != nil {
		return serviceError(c, err, "Could not retrieve visit stats")
	}
	return c.JSON(stats)
}

// ReportPageRequest is the body for abuse reports.
type ReportPageRequest struct {
	ReportCategory string `json:"reportCategory" validate:"required,max=50"`
	ReportDetails  string `json:"reportDetails" validate:"omitempty,max=2000"`
}

// HandleReportPage files an abuse report against a page. Authentication is
// optional; anonymous reports carry no reporter.
func (h *ProfileHandler) HandleReportPage(c *fiber.Ctx) error {
	profileID, err := parseUintParam(c, "profileId")
	if err != nil {
		return badBody(c, err)
	}
	var req ReportPageRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	var reporterID *string
	if user := middleware.CurrentUser(c); user != nil {
		reporterID = &user.ID
	}

	report, err := h.service.ReportAbusivePage(reporterID, profileID, req.ReportCategory, req.ReportDetails)
	if err != nil {
		return serviceError(c, err, "Could not file report")
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}

// HandleListReports returns a page of abuse reports for admin triage.
func (h *ProfileHandler) HandleListReports(c *fiber.Ctx) error {
	reports, total, err := h.service.ListAbuseReports(
		c.Query("status"),
		c.QueryInt("skip", 0),
		c.QueryInt("take", 10),
	)
	if err != nil {
		return serviceError(c, err, "Could not list reports")
	}
	return c.JSON(fiber.Map{
		"reports": reports,
		"total":   total,
	})
}

// UpdateReportStatusRequest is the body for admin report triage.
type UpdateReportStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING REVIEWING RESOLVED"`
}

// HandleUpdateReportStatus sets a report's status. Any transition is allowed.
func (h *ProfileHandler) HandleUpdateReportStatus(c *fiber.Ctx) error {
	reportID, err := parseUintParam(c, "reportId")
	if err != nil {
		return badBody(c, err)
	}
	var req UpdateReportStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	report, err := h.service.UpdateReportStatus(reportID, req.Status)
	if err != nil {
		return serviceError(c, err, "Could not update report")
	}
	return c.JSON(report)
}

// parseUintParam parses a numeric route parameter.
func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	value, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(value), nil
}
