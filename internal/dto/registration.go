package dto

import (
	"github.com/ntholi/registry-web/internal/models"
	appErrors "github.com/ntholi/registry-web/pkg/errors"
)

// SemesterStatusRequest carries the modules picked in a registration form.
type SemesterStatusRequest struct {
	Modules []models.SelectedModule `json:"modules" validate:"required,min=1,dive"`
}

// SemesterModulesResponse is the offer for one student and semester together with the rule
// that produced it.
type SemesterModulesResponse struct {
	StdNo       int64                   `json:"std_no"`
	Semester    int                     `json:"semester"`
	StructureID int64                   `json:"structure_id"`
	Rule        string                  `json:"rule"`
	Modules     []models.EligibleModule `json:"modules"`
}

// BatchSemesterModulesRequest asks for the offers of many students in one structure.
type BatchSemesterModulesRequest struct {
	Semester    int     `json:"semester" validate:"required,gte=1"`
	StructureID int64   `json:"structure_id" validate:"required,gt=0"`
	StdNos      []int64 `json:"std_nos" validate:"required,min=1,dive,gt=0"`
}

// BatchSemesterModulesItem is the outcome for one student of a batch. Exactly one of
// Modules or Error is meaningful.
type BatchSemesterModulesItem struct {
	StdNo   int64                   `json:"std_no"`
	Rule    string                  `json:"rule,omitempty"`
	Modules []models.EligibleModule `json:"modules"`
	Error   *appErrors.Error        `json:"error,omitempty"`
}

// BatchSemesterModulesResponse aggregates a batch run in request order.
type BatchSemesterModulesResponse struct {
	Semester    int                        `json:"semester"`
	StructureID int64                      `json:"structure_id"`
	Succeeded   int                        `json:"succeeded"`
	Failed      int                        `json:"failed"`
	Results     []BatchSemesterModulesItem `json:"results"`
}
