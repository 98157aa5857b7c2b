package api

import (
	"lessonhub/internal/domain"
	"lessonhub/internal/service"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CourseHandler serves the catalog and the admin course editor.
type CourseHandler struct {
	courseService service.CourseService
	logger        *log.Logger
}

// NewCourseHandler creates a new CourseHandler.
func NewCourseHandler(courseService service.CourseService, logger *log.Logger) *CourseHandler {
	return &CourseHandler{courseService: courseService, logger: logger}
}

// --- Request/Response Structs ---

type LessonRequest struct {
	ID       string `json:"id"` // Empty for new lessons
	Title    string `json:"title" binding:"required"`
	Duration string `json:"duration" binding:"required,lessonduration"`
	VideoID  string `json:"videoId" binding:"required"`
	PDFURL   string `json:"pdfUrl" binding:"omitempty,url"`
}

type CourseRequest struct {
	Slug        string          `json:"slug" binding:"required"`
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description" binding:"required"`
	Thumbnail   string          `json:"thumbnail" binding:"required,url"`
	Order       *int            `json:"order" binding:"omitempty,min=0"`
	Lessons     []LessonRequest `json:"lessons" binding:"required,min=1,dive"`
}

type ReorderRequest struct {
	CourseIDs []string `json:"courseIds" binding:"required,min=1"`
}

type PDFUploadRequest struct {
	ContentType string `json:"contentType"` // Defaults to application/pdf
}

type AttachPDFRequest struct {
	ObjectKey string `json:"objectKey" binding:"required"`
}

type LessonResponse struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Duration     string `json:"duration"`
	VideoID      string `json:"videoId"`
	PDFURL       string `json:"pdfUrl,omitempty"`
	HasStoredPDF bool   `json:"hasStoredPdf"`
}

type CourseResponse struct {
	ID            string           `json:"id"`
	Slug          string           `json:"slug"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	Thumbnail     string           `json:"thumbnail"`
	Order         int              `json:"order"`
	Lessons       []LessonResponse `json:"lessons"`
	TotalSeconds  int              `json:"totalSeconds"`
	TotalDuration string           `json:"totalDuration"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// --- Public Handler Methods ---

// ListCourses godoc
// @Summary List courses in display order
// @Tags Courses
// @Produce json
// @Success 200 {array} CourseResponse
// @Router /courses [get]
func (h *CourseHandler) ListCourses(c *gin.Context) {
	courses, err := h.courseService.ListCourses(c.Request.Context())
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	resp := make([]CourseResponse, len(courses))
	for i := range courses {
		resp[i] = MapCourseToResponse(&courses[i])
	}
	c.JSON(http.StatusOK, resp)
}

// GetCourse godoc
// @Summary Get a course by slug
// @Tags Courses
// @Produce json
// @Param slug path string true "Course slug"
// @Success 200 {object} CourseResponse
// @Failure 404 {object} gin.H "Course not found"
// @Router /courses/{slug} [get]
func (h *CourseHandler) GetCourse(c *gin.Context) {
	course, err := h.courseService.GetCourseBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapCourseToResponse(course))
}

// ListPDFs godoc
// @Summary PDF hub: lesson PDFs grouped by course
// @Tags Courses
// @Produce json
// @Success 200 {array} service.CoursePDFs
// @Router /pdfs [get]
func (h *CourseHandler) ListPDFs(c *gin.Context) {
	pdfs, err := h.courseService.ListPDFs(c.Request.Context())
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, pdfs)
}

// --- Admin Handler Methods ---

// CreateCourse godoc
// @Summary Create a course
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param course body CourseRequest true "Course details"
// @Success 201 {object} gin.H "success, course"
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 409 {object} gin.H "Slug or order already used"
// @Router /admin/courses [post]
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	course, err := h.courseService.CreateCourse(c.Request.Context(), req.toInput())
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusCreated, gin.H{"course": MapCourseToResponse(course)})
}

// UpdateCourse godoc
// @Summary Replace a course, including its lesson list
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "Course ID"
// @Param course body CourseRequest true "Course details"
// @Success 200 {object} gin.H "success, course"
// @Failure 404 {object} gin.H "Course not found"
// @Router /admin/courses/{courseId} [put]
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	courseID, ok := parseObjectIDParam(c, "courseId")
	if !ok {
		return
	}
	var req CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	course, err := h.courseService.UpdateCourse(c.Request.Context(), courseID, req.toInput())
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"course": MapCourseToResponse(course)})
}

// DeleteCourse godoc
// @Summary Delete a course and the progress that references it
// @Tags Admin
// @Security BearerAuth
// @Param courseId path string true "Course ID"
// @Success 200 {object} gin.H "success"
// @Router /admin/courses/{courseId} [delete]
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	courseID, ok := parseObjectIDParam(c, "courseId")
	if !ok {
		return
	}
	if err := h.courseService.DeleteCourse(c.Request.Context(), courseID); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, nil)
}

// ReorderCourses godoc
// @Summary Set the display order of every course
// @Tags Admin
// @Accept json
// @Security BearerAuth
// @Param request body ReorderRequest true "All course IDs in their new order"
// @Success 200 {object} gin.H "success"
// @Failure 400 {object} gin.H "Not a permutation of the existing courses"
// @Router /admin/courses/order [put]
func (h *CourseHandler) ReorderCourses(c *gin.Context) {
	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	ids := make([]primitive.ObjectID, len(req.CourseIDs))
	for i, raw := range req.CourseIDs {
		id, ok := parseObjectID(c, "courseIds", raw)
		if !ok {
			return
		}
		ids[i] = id
	}
	if err := h.courseService.ReorderCourses(c.Request.Context(), ids); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, nil)
}

// RequestPDFUpload godoc
// @Summary Get a presigned URL to upload a lesson PDF
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "Course ID"
// @Param lessonId path string true "Lesson ID"
// @Success 200 {object} gin.H "success, upload"
// @Failure 503 {object} gin.H "Object storage not configured"
// @Router /admin/courses/{courseId}/lessons/{lessonId}/pdf [post]
func (h *CourseHandler) RequestPDFUpload(c *gin.Context) {
	courseID, ok := parseObjectIDParam(c, "courseId")
	if !ok {
		return
	}
	var req PDFUploadRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
			return
		}
	}
	upload, err := h.courseService.RequestPDFUploadURL(c.Request.Context(), courseID, c.Param("lessonId"), req.ContentType)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"upload": upload})
}

// AttachPDF godoc
// @Summary Attach an uploaded PDF to a lesson
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "Course ID"
// @Param lessonId path string true "Lesson ID"
// @Param request body AttachPDFRequest true "Uploaded object key"
// @Success 200 {object} gin.H "success, course"
// @Router /admin/courses/{courseId}/lessons/{lessonId}/pdf [put]
func (h *CourseHandler) AttachPDF(c *gin.Context) {
	courseID, ok := parseObjectIDParam(c, "courseId")
	if !ok {
		return
	}
	var req AttachPDFRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	course, err := h.courseService.AttachPDF(c.Request.Context(), courseID, c.Param("lessonId"), req.ObjectKey)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"course": MapCourseToResponse(course)})
}

// --- Mapping ---

func (r CourseRequest) toInput() service.CourseInput {
	lessons := make([]domain.Lesson, len(r.Lessons))
	for i, l := range r.Lessons {
		lessons[i] = domain.Lesson{
			ID:       l.ID,
			Title:    l.Title,
			Duration: l.Duration,
			VideoID:  l.VideoID,
			PDFURL:   l.PDFURL,
		}
	}
	return service.CourseInput{
		Slug:        r.Slug,
		Title:       r.Title,
		Description: r.Description,
		Thumbnail:   r.Thumbnail,
		Order:       r.Order,
		Lessons:     lessons,
	}
}

// MapCourseToResponse converts a domain Course to a CourseResponse DTO.
func MapCourseToResponse(course *domain.Course) CourseResponse {
	lessons := make([]LessonResponse, len(course.Lessons))
	for i, l := range course.Lessons {
		lessons[i] = LessonResponse{
			ID:           l.ID,
			Title:        l.Title,
			Duration:     l.Duration,
			VideoID:      l.VideoID,
			PDFURL:       l.PDFURL,
			HasStoredPDF: l.PDFObjectKey != "",
		}
	}
	total := course.TotalDurationSeconds()
	return CourseResponse{
		ID:            course.ID.Hex(),
		Slug:          course.Slug,
		Title:         course.Title,
		Description:   course.Description,
		Thumbnail:     course.Thumbnail,
		Order:         course.Order,
		Lessons:       lessons,
		TotalSeconds:  total,
		TotalDuration: domain.FormatTotalDuration(total),
		CreatedAt:     course.CreatedAt,
		UpdatedAt:     course.UpdatedAt,
	}
}
