package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pr-poehali-dev/client-support-chat-2/internal/access"
	"github.com/pr-poehali-dev/client-support-chat-2/internal/model"
)

// login — GET с учётными данными в query, как в старом бэкенде.
// В ответ добавлены токен и видимые разделы дашборда.
func (a *API) login(c *gin.Context) {
	username := c.Query("username")
	password := c.Query("password")
	if username == "" || password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "username and password required"})
		return
	}
	emp, err := a.employees.Login(c.Request.Context(), username, password)
	if err != nil {
		a.fail(c, err)
		return
	}
	token, err := a.tokens.GenerateToken(emp.ID, emp.Name, emp.Roles)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"employee": emp,
		"token":    token,
		"sections": access.Sections(emp.Roles),
	})
}

func (a *API) listEmployees(c *gin.Context) {
	if a.requireEmployee(c) == nil {
		return
	}
	items, err := a.employees.Employees(c.Request.Context())
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"employees": items})
}

type updateOperatorStatusRequest struct {
	Action     string `json:"action"`
	EmployeeID uint64 `json:"employeeId" binding:"required"`
	Status     string `json:"status" binding:"required"`
}

func (a *API) updateOperatorStatus(c *gin.Context) {
	if a.requireEmployee(c) == nil {
		return
	}
	var req updateOperatorStatusRequest
	if !a.bind(c, &req) {
		return
	}
	emp, err := a.employees.UpdateStatus(c.Request.Context(), req.EmployeeID, model.OperatorStatus(req.Status))
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "employee": emp})
}

type employeeRoleRequest struct {
	Action     string `json:"action"`
	EmployeeID uint64 `json:"employeeId" binding:"required"`
	Role       string `json:"role" binding:"required"`
}

func (a *API) addRole(c *gin.Context) {
	if a.requireAccess(c, access.SectionEmployeeManagement) == nil {
		return
	}
	var req employeeRoleRequest
	if !a.bind(c, &req) {
		return
	}
	emp, err := a.employees.AddRole(c.Request.Context(), req.EmployeeID, model.Role(req.Role))
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "employee": emp})
}

func (a *API) removeRole(c *gin.Context) {
	if a.requireAccess(c, access.SectionEmployeeManagement) == nil {
		return
	}
	var req employeeRoleRequest
	if !a.bind(c, &req) {
		return
	}
	emp, err := a.employees.RemoveRole(c.Request.Context(), req.EmployeeID, model.Role(req.Role))
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "employee": emp})
}

func (a *API) listShifts(c *gin.Context) {
	if a.requireEmployee(c) == nil {
		return
	}
	items, err := a.employees.Shifts(c.Request.Context())
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shifts": items})
}

type createShiftRequest struct {
	Action     string `json:"action"`
	EmployeeID uint64 `json:"employeeId" binding:"required"`
	Date       string `json:"date" binding:"required"`
	StartTime  string `json:"startTime" binding:"required"`
	EndTime    string `json:"endTime" binding:"required"`
}

func (a *API) createShift(c *gin.Context) {
	if a.requireAccess(c, access.SectionShifts) == nil {
		return
	}
	var req createShiftRequest
	if !a.bind(c, &req) {
		return
	}
	shift := &model.Shift{
		EmployeeID: req.EmployeeID,
		Date:       req.Date,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
	}
	if err := a.employees.CreateShift(c.Request.Context(), shift); err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, shift)
}

type updateShiftRequest struct {
	Action    string  `json:"action"`
	ShiftID   uint64  `json:"shiftId" binding:"required"`
	Date      *string `json:"date,omitempty"`
	StartTime *string `json:"startTime,omitempty"`
	EndTime   *string `json:"endTime,omitempty"`
}

func (a *API) updateShift(c *gin.Context) {
	if a.requireAccess(c, access.SectionShifts) == nil {
		return
	}
	var req updateShiftRequest
	if !a.bind(c, &req) {
		return
	}
	changes := make(map[string]interface{})
	if req.Date != nil {
		changes["date"] = *req.Date
	}
	if req.StartTime != nil {
		changes["start_time"] = *req.StartTime
	}
	if req.EndTime != nil {
		changes["end_time"] = *req.EndTime
	}
	if len(changes) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no changes"})
		return
	}
	shift, err := a.employees.UpdateShift(c.Request.Context(), req.ShiftID, changes)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, shift)
}
