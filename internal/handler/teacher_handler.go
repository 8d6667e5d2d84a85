package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-dashboard/internal/dto"
	"github.com/noah-isme/academic-dashboard/internal/models"
	"github.com/noah-isme/academic-dashboard/internal/projection"
	"github.com/noah-isme/academic-dashboard/internal/service"
	appErrors "github.com/noah-isme/academic-dashboard/pkg/errors"
	"github.com/noah-isme/academic-dashboard/pkg/response"
)

// multipartOverhead leaves room for boundaries and the course_id field on top of the file.
const multipartOverhead = 1 << 20

type teacherCourseLister interface {
	ListForTeacher(ctx context.Context, caller *models.JWTClaims) ([]projection.Record, error)
}

type contentUploader interface {
	Upload(ctx context.Context, caller *models.JWTClaims, courseID int64, filename string, r io.Reader, meta service.RequestMeta) (*dto.UploadContentResponse, error)
	ListByCourse(ctx context.Context, courseID int64, caller *models.JWTClaims) ([]dto.ContentRead, error)
}

type gradeExporter interface {
	GradeSheet(ctx context.Context, courseID int64, format string, caller *models.JWTClaims) (*service.ExportFile, error)
}

// TeacherHandler serves the teacher dashboard: owned courses, uploads and exports.
type TeacherHandler struct {
	courses  teacherCourseLister
	contents contentUploader
	exports  gradeExporter
	maxBody  int64
}

// NewTeacherHandler constructs a TeacherHandler. maxFileSize bounds the request body.
func NewTeacherHandler(courses teacherCourseLister, contents contentUploader, exports gradeExporter, maxFileSize int64) *TeacherHandler {
	return &TeacherHandler{courses: courses, contents: contents, exports: exports, maxBody: maxFileSize + multipartOverhead}
}

// MyCourses godoc
// @Summary Courses assigned to the caller
// @Tags Teacher
// @Produce json
// @Success 200 {array} dto.CourseRead
// @Security BearerAuth
// @Router /api/teacher/my-courses/ [get]
func (h *TeacherHandler) MyCourses(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	recs, err := h.courses.ListForTeacher(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, recs)
}

// UploadContent godoc
// @Summary Upload course material
// @Description Multipart upload of one file for a course taught by the caller. Allowed types are pdf, docx and txt.
// @Tags Teacher
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Material"
// @Param course_id formData int true "Course id"
// @Success 201 {object} dto.UploadContentResponse
// @Failure 400 {object} dto.UploadErrorResponse
// @Failure 403 {object} dto.UploadErrorResponse
// @Failure 413 {object} dto.UploadErrorResponse
// @Security BearerAuth
// @Router /api/teacher/upload-content/ [post]
func (h *TeacherHandler) UploadContent(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		uploadError(c, appErrors.ErrUnauthorized)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBody)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			uploadError(c, appErrors.New("FILE_TOO_LARGE", http.StatusRequestEntityTooLarge, "Uploaded file is too large."))
			return
		}
		uploadError(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "No file was submitted."))
		return
	}
	courseID, err := strconv.ParseInt(strings.TrimSpace(c.PostForm("course_id")), 10, 64)
	if err != nil || courseID <= 0 {
		uploadError(c, appErrors.Clone(appErrors.ErrValidation, "A valid course_id is required."))
		return
	}

	res, err := h.upload(c, claims, courseID, header)
	if err != nil {
		uploadError(c, err)
		return
	}
	response.Created(c, res)
}

func (h *TeacherHandler) upload(c *gin.Context, claims *models.JWTClaims, courseID int64, header *multipart.FileHeader) (*dto.UploadContentResponse, error) {
	file, err := header.Open()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "Uploaded file could not be read.")
	}
	defer file.Close()
	return h.contents.Upload(c.Request.Context(), claims, courseID, header.Filename, file, requestMeta(c))
}

// Contents godoc
// @Summary Materials uploaded for a course
// @Tags Teacher
// @Produce json
// @Param id path int true "Course id"
// @Success 200 {array} dto.ContentRead
// @Failure 403 {object} appErrors.Error
// @Security BearerAuth
// @Router /api/teacher/courses/{id}/contents/ [get]
func (h *TeacherHandler) Contents(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	courseID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	items, err := h.contents.ListByCourse(c.Request.Context(), courseID, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items)
}

// ExportGrades godoc
// @Summary Download a course grade sheet
// @Tags Teacher
// @Produce text/csv,application/pdf
// @Param id path int true "Course id"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 400 {object} appErrors.Error
// @Failure 403 {object} appErrors.Error
// @Security BearerAuth
// @Router /api/teacher/courses/{id}/grades/export [get]
func (h *TeacherHandler) ExportGrades(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	courseID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exports.GradeSheet(c.Request.Context(), courseID, c.DefaultQuery("format", "csv"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Body)
}

// uploadError writes the upload failure body, which carries the message under "error".
func uploadError(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	if appErr.Status >= http.StatusInternalServerError && appErr.Err != nil {
		_ = c.Error(appErr.Err)
	}
	msg := appErr.Message
	for field, msgs := range appErr.Fields {
		if len(msgs) > 0 {
			msg = fmt.Sprintf("%s: %s", field, msgs[0])
			break
		}
	}
	c.JSON(appErr.Status, dto.UploadErrorResponse{Error: msg})
}
