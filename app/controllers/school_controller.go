package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/hiddentreasuresnetwork/platform/app/models"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/schools"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/usercontext"
)

// SchoolController serves districts, schools and classrooms. Classroom
// routes act for the caller as teacher or, on join, as student.
type SchoolController struct {
	svc *schools.Service
	// members resolves the caller's role; nil refuses classroom creation
	// to everyone but admin keys.
	members MemberLookup
}

func NewSchoolController(svc *schools.Service, members MemberLookup) *SchoolController {
	return &SchoolController{svc: svc, members: members}
}

// classroomRoles may open classrooms.
var classroomRoles = map[string]bool{
	models.ROLE_EDUCATOR:     true,
	models.ROLE_TEACHER:      true,
	models.ROLE_ORGANIZATION: true,
	models.ROLE_ADMIN:        true,
}

type joinClassroomRequest struct {
	JoinCode        string `json:"joinCode"`
	StudentName     string `json:"studentName"`
	ParentalConsent bool   `json:"parentalConsent"`
}

type addStudentRequest struct {
	StudentID       string `json:"studentId"`
	StudentName     string `json:"studentName"`
	ParentalConsent bool   `json:"parentalConsent"`
}

type enrollmentStatusRequest struct {
	Status string `json:"status"`
}

// GET /api/districts
func (sc *SchoolController) HandleListDistricts(c *fiber.Ctx) error {
	list, err := sc.svc.ActiveDistricts(c.UserContext())
	if err != nil {
		return sc.schoolError(c, err)
	}
	return c.JSON(fiber.Map{"districts": list})
}

// POST /api/admin/districts
func (sc *SchoolController) HandleCreateDistrict(c *fiber.Ctx) error {
	var in schools.DistrictInput
	if err := c.BodyParser(&in); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	d, err := sc.svc.CreateDistrict(c.UserContext(), in)
	if err != nil {
		return sc.schoolError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(d)
}

// GET /api/schools?districtId=
func (sc *SchoolController) HandleListSchools(c *fiber.Ctx) error {
	districtID := c.QueryInt("districtId")
	if districtID < 0 {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid districtId")
	}
	list, err := sc.svc.ActiveSchools(c.UserContext(), uint(districtID))
	if err != nil {
		return sc.schoolError(c, err)
	}
	return c.JSON(fiber.Map{"schools": list})
}

// GET /api/schools/:id
func (sc *SchoolController) HandleGetSchool(c *fiber.Ctx) error {
	id, ok := uintParam(c, "id")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid school id")
	}
	school, err := sc.svc.School(c.UserContext(), id)
	if err != nil {
		return sc.schoolError(c, err)
	}
	return c.JSON(school)
}

// POST /api/admin/schools
func (sc *SchoolController) HandleCreateSchool(c *fiber.Ctx) error {
	var in schools.SchoolInput
	if err := c.BodyParser(&in); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	school, err := sc.svc.CreateSchool(c.UserContext(), in)
	if err != nil {
		return sc.schoolError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(school)
}

// GET /api/admin/schools/:id/classrooms
func (sc *SchoolController) HandleSchoolClassrooms(c *fiber.Ctx) error {
	id, ok := uintParam(c, "id")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid school id")
	}
	list, err := sc.svc.SchoolClassrooms(c.UserContext(), id)
	if err != nil {
		return sc.schoolError(c, err)
	}
	return c.JSON(fiber.Map{"classrooms": list})
}

// GET /api/classrooms
func (sc *SchoolController) HandleListClassrooms(c *fiber.Ctx) error {
	list, err := sc.svc.TeacherClassrooms(c.UserContext(), usercontext.GetUserID(c))
	if err != nil {
		return sc.schoolError(c, err)
	}
	return c.JSON(fiber.Map{"classrooms": list})
}

// POST /api/classrooms
func (sc *SchoolController) HandleCreateClassroom(c *fiber.Ctx) error {
	var in schools.ClassroomInput
	if err := c.BodyParser(&in); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if !usercontext.IsAdmin(c) {
		if sc.members == nil {
			return errorJSON(c, fiber.StatusServiceUnavailable, "Database not configured")
		}
		user, err := sc.members.GetByUID(c.UserContext(), usercontext.GetUserID(c))
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return upstreamError(c, "Schools", err, "Failed to create classroom")
		}
		if user == nil || !classroomRoles[user.Role] {
			return errorJSON(c, fiber.StatusForbidden, "Only educators can create classrooms")
		}
	}
	classroom, err := sc.svc.CreateClassroom(c.UserContext(), usercontext.GetUserID(c), in)
	if err != nil {
		return sc.schoolError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(classroom)
}

// GET /api/classrooms/:id
func (sc *SchoolController) HandleGetClassroom(c *fiber.Ctx) error {
	id, ok := uintParam(c, "id")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid classroom id")
	}
	classroom, err := sc.svc.TeacherClassroom(c.UserContext(), id, usercontext.GetUserID(c))
	if err != nil {
		return sc.schoolError(c, err)
	}
	return c.JSON(classroom)
}

// POST /api/classrooms/:id/join-code
func (sc *SchoolController) HandleRegenerateJoinCode(c *fiber.Ctx) error {
	id, ok := uintParam(c, "id")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid classroom id")
	}
	code, err := sc.svc.RegenerateJoinCode(c.UserContext(), id, usercontext.GetUserID(c))
	if err != nil {
		return sc.schoolError(c, err)
	}
	return c.JSON(fiber.Map{"joinCode": code})
}

// POST /api/classrooms/join
func (sc *SchoolController) HandleJoin(c *fiber.Ctx) error {
	var req joinClassroomRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	entry, err := sc.svc.Join(c.UserContext(), req.JoinCode, schools.EnrollInput{
		StudentID:       usercontext.GetUserID(c),
		StudentName:     req.StudentName,
		ParentalConsent: req.ParentalConsent,
	})
	if err != nil {
		return sc.schoolError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

// GET /api/classrooms/:id/roster
func (sc *SchoolController) HandleRoster(c *fiber.Ctx) error {
	id, ok := uintParam(c, "id")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid classroom id")
	}
	roster, err := sc.svc.Roster(c.UserContext(), id, usercontext.GetUserID(c))
	if err != nil {
		return sc.schoolError(c, err)
	}
	return c.JSON(fiber.Map{"roster": roster})
}

// POST /api/classrooms/:id/roster
func (sc *SchoolController) HandleAddStudent(c *fiber.Ctx) error {
	id, ok := uintParam(c, "id")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid classroom id")
	}
	var req addStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if _, err := sc.svc.TeacherClassroom(c.UserContext(), id, usercontext.GetUserID(c)); err != nil {
		return sc.schoolError(c, err)
	}
	entry, err := sc.svc.Enroll(c.UserContext(), id, schools.EnrollInput{
		StudentID:       req.StudentID,
		StudentName:     req.StudentName,
		ParentalConsent: req.ParentalConsent,
	})
	if err != nil {
		return sc.schoolError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

// PATCH /api/classrooms/:id/roster/:rosterId
func (sc *SchoolController) HandleUpdateEnrollment(c *fiber.Ctx) error {
	id, ok := uintParam(c, "id")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid classroom id")
	}
	rosterID, ok := uintParam(c, "rosterId")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid roster id")
	}
	var req enrollmentStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	entry, err := sc.svc.UpdateEnrollmentStatus(c.UserContext(), id, rosterID, usercontext.GetUserID(c), req.Status)
	if err != nil {
		return sc.schoolError(c, err)
	}
	return c.JSON(entry)
}

func (sc *SchoolController) schoolError(c *fiber.Ctx, err error) error {
	var verr *schools.ValidationError
	switch {
	case errors.As(err, &verr):
		return errorJSON(c, fiber.StatusBadRequest, verr.Message)
	case errors.Is(err, schools.ErrDistrictNotFound):
		return errorJSON(c, fiber.StatusNotFound, "District not found")
	case errors.Is(err, schools.ErrSchoolNotFound):
		return errorJSON(c, fiber.StatusNotFound, "School not found")
	case errors.Is(err, schools.ErrClassroomNotFound):
		return errorJSON(c, fiber.StatusNotFound, "Classroom not found")
	case errors.Is(err, schools.ErrEnrollmentMissing):
		return errorJSON(c, fiber.StatusNotFound, "Enrollment not found")
	case errors.Is(err, schools.ErrAlreadyEnrolled):
		return errorJSON(c, fiber.StatusConflict, "Student already enrolled")
	case errors.Is(err, schools.ErrClassroomFull):
		return errorJSON(c, fiber.StatusConflict, "Classroom is full")
	case errors.Is(err, schools.ErrPlanLimitReached):
		return errorJSON(c, fiber.StatusConflict, "Student limit reached for the teacher's plan")
	case errors.Is(err, schools.ErrConsentRequired):
		return errorJSON(c, fiber.StatusForbidden, "Parental consent required")
	}
	return upstreamError(c, "Schools", err, "Failed to process request")
}
