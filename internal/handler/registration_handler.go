package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ntholi/registry-web/internal/dto"
	"github.com/ntholi/registry-web/internal/middleware"
	"github.com/ntholi/registry-web/internal/models"
	appErrors "github.com/ntholi/registry-web/pkg/errors"
	"github.com/ntholi/registry-web/pkg/export"
	"github.com/ntholi/registry-web/pkg/response"
)

type registrationService interface {
	FailedModules(ctx context.Context, stdNo int64, semester int) ([]models.FailedModule, error)
	RemainInSemester(ctx context.Context, stdNo int64, semester int) (*models.RemainCheck, error)
	FailedPrerequisites(ctx context.Context, stdNo int64, semester int, structureID int64) (map[string][]models.PrerequisiteWarning, bool, error)
	RepeatModules(ctx context.Context, stdNo int64) ([]models.RepeatEntry, error)
	StudentSemesterModules(ctx context.Context, stdNo int64, semesterNo int, structureID int64) (*dto.SemesterModulesResponse, bool, error)
	DetermineSemesterStatus(ctx context.Context, stdNo int64, req dto.SemesterStatusRequest) (*models.SemesterStatusResult, error)
	BatchSemesterModules(ctx context.Context, req dto.BatchSemesterModulesRequest) (*dto.BatchSemesterModulesResponse, error)
	InvalidateCurriculum(ctx context.Context) error
}

// RegistrationHandler exposes eligibility decisions to the registry portal.
type RegistrationHandler struct {
	service registrationService
}

// NewRegistrationHandler constructs the handler.
func NewRegistrationHandler(service registrationService) *RegistrationHandler {
	return &RegistrationHandler{service: service}
}

// FailedModules godoc
// @Summary Failed modules in a semester
// @Description Failing attempts recorded in the semester. Later retakes are not considered.
// @Tags Registration
// @Produce json
// @Param stdNo path int true "Student number"
// @Param semester query int true "Semester-of-study number"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /students/{stdNo}/failed-modules [get]
func (h *RegistrationHandler) FailedModules(c *gin.Context) {
	stdNo, semester, ok := studentAndSemester(c)
	if !ok {
		return
	}
	failed, err := h.service.FailedModules(c.Request.Context(), stdNo, semester)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, failed, nil, middleware.ExtractMeta(c))
}

// Remain godoc
// @Summary Remain-in-semester check
// @Tags Registration
// @Produce json
// @Param stdNo path int true "Student number"
// @Param semester query int true "Semester-of-study number"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /students/{stdNo}/remain [get]
func (h *RegistrationHandler) Remain(c *gin.Context) {
	stdNo, semester, ok := studentAndSemester(c)
	if !ok {
		return
	}
	check, err := h.service.RemainInSemester(c.Request.Context(), stdNo, semester)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, check, nil, middleware.ExtractMeta(c))
}

// FailedPrerequisites godoc
// @Summary Unsatisfied prerequisites
// @Description Warnings keyed by dependent module code. Advisory only.
// @Tags Registration
// @Produce json
// @Param stdNo path int true "Student number"
// @Param semester query int true "Semester-of-study number"
// @Param structureId query int true "Structure ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{stdNo}/failed-prerequisites [get]
func (h *RegistrationHandler) FailedPrerequisites(c *gin.Context) {
	stdNo, semester, ok := studentAndSemester(c)
	if !ok {
		return
	}
	structureID, ok := int64Query(c, "structureId")
	if !ok {
		return
	}
	warnings, cacheHit, err := h.service.FailedPrerequisites(c.Request.Context(), stdNo, semester, structureID)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, warnings, nil, middleware.ExtractMeta(c))
}

// RepeatModules godoc
// @Summary Modules to repeat
// @Description Failed, never-passed modules offered in the current term's parity.
// @Tags Registration
// @Produce json
// @Param stdNo path int true "Student number"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{stdNo}/repeat-modules [get]
func (h *RegistrationHandler) RepeatModules(c *gin.Context) {
	stdNo, ok := studentNumber(c)
	if !ok {
		return
	}
	repeats, err := h.service.RepeatModules(c.Request.Context(), stdNo)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, repeats, nil, middleware.ExtractMeta(c))
}

// SemesterModules godoc
// @Summary Eligible modules for a semester
// @Tags Registration
// @Produce json
// @Param stdNo path int true "Student number"
// @Param semester query int true "Target semester-of-study number"
// @Param structureId query int true "Structure ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /students/{stdNo}/semester-modules [get]
func (h *RegistrationHandler) SemesterModules(c *gin.Context) {
	stdNo, semester, ok := studentAndSemester(c)
	if !ok {
		return
	}
	structureID, ok := int64Query(c, "structureId")
	if !ok {
		return
	}
	offer, cacheHit, err := h.service.StudentSemesterModules(c.Request.Context(), stdNo, semester, structureID)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	middleware.SetMeta(c, "rule", offer.Rule)
	response.JSON(c, http.StatusOK, offer, nil, middleware.ExtractMeta(c))
}

// SemesterStatus godoc
// @Summary Semester status of a module selection
// @Tags Registration
// @Accept json
// @Produce json
// @Param stdNo path int true "Student number"
// @Param payload body dto.SemesterStatusRequest true "Selected modules"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /students/{stdNo}/semester-status [post]
func (h *RegistrationHandler) SemesterStatus(c *gin.Context) {
	stdNo, ok := studentNumber(c)
	if !ok {
		return
	}
	var req dto.SemesterStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid module selection payload"))
		return
	}
	result, err := h.service.DetermineSemesterStatus(c.Request.Context(), stdNo, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// BatchSemesterModules godoc
// @Summary Eligible modules for many students
// @Description Per-student outcomes in request order; one student's error does not fail the batch.
// @Tags Registration
// @Accept json
// @Produce json,text/csv
// @Param format query string false "json (default) or csv"
// @Param payload body dto.BatchSemesterModulesRequest true "Batch request"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /registration/semester-modules/batch [post]
func (h *RegistrationHandler) BatchSemesterModules(c *gin.Context) {
	var req dto.BatchSemesterModulesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid batch payload"))
		return
	}
	result, err := h.service.BatchSemesterModules(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if strings.EqualFold(c.Query("format"), "csv") {
		h.writeBatchCSV(c, result)
		return
	}
	response.JSON(c, http.StatusOK, result, nil, middleware.ExtractMeta(c))
}

// writeBatchCSV renders one row per offered module, or a single error row per failed student.
func (h *RegistrationHandler) writeBatchCSV(c *gin.Context, result *dto.BatchSemesterModulesResponse) {
	table := export.Table{Headers: []string{"std_no", "rule", "module_code", "module_name", "credits", "status", "prerequisite_warnings", "error"}}
	for _, item := range result.Results {
		stdNo := strconv.FormatInt(item.StdNo, 10)
		if item.Error != nil {
			table.Rows = append(table.Rows, []string{stdNo, "", "", "", "", "", "", item.Error.Message})
			continue
		}
		for _, module := range item.Modules {
			prereqs := make([]string, 0, len(module.Prerequisites))
			for _, w := range module.Prerequisites {
				prereqs = append(prereqs, w.PrerequisiteCode)
			}
			table.Rows = append(table.Rows, []string{
				stdNo,
				item.Rule,
				module.Code,
				module.Name,
				strconv.FormatFloat(module.Credits, 'f', -1, 64),
				module.Status,
				strings.Join(prereqs, ";"),
				"",
			})
		}
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=eligibility-s%d-sem%d.csv", result.StructureID, result.Semester))
	c.Status(http.StatusOK)
	if err := export.WriteCSV(c.Writer, table); err != nil {
		_ = c.Error(err)
	}
}

// InvalidateCache godoc
// @Summary Drop cached curriculum data
// @Tags Registration
// @Success 204
// @Router /registration/cache [delete]
func (h *RegistrationHandler) InvalidateCache(c *gin.Context) {
	if err := h.service.InvalidateCurriculum(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func studentNumber(c *gin.Context) (int64, bool) {
	raw := strings.TrimSpace(c.Param("stdNo"))
	stdNo, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || stdNo <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid student number %q", raw)))
		return 0, false
	}
	return stdNo, true
}

func studentAndSemester(c *gin.Context) (int64, int, bool) {
	stdNo, ok := studentNumber(c)
	if !ok {
		return 0, 0, false
	}
	raw := strings.TrimSpace(c.Query("semester"))
	if raw == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "semester is required"))
		return 0, 0, false
	}
	semester, err := strconv.Atoi(raw)
	if err != nil || semester < 1 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid semester %q", raw)))
		return 0, 0, false
	}
	return stdNo, semester, true
}

func int64Query(c *gin.Context, key string) (int64, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, key+" is required"))
		return 0, false
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid %s %q", key, raw)))
		return 0, false
	}
	return value, true
}
