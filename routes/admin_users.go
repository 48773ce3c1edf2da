package routes

import (
	"campus-voice-server/models"
	"campus-voice-server/storage"
	"campus-voice-server/utils"
	"net/http"

	"github.com/kataras/iris/v12"
	"golang.org/x/exp/slices"
)

var assignableRoles = []string{"student", "admin", "super_admin"}

// GET /admin/users?role=&page=&per_page=
func AdminListUsers(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 25)
	if perPage <= 0 || perPage > 100 {
		perPage = 25
	}

	q := storage.DB.Model(&models.User{})
	if role := ctx.URLParamDefault("role", ""); role != "" {
		q = q.Where("role = ?", role)
	}

	var total int64
	q.Count(&total)

	var users []models.User
	if err := q.Offset((page - 1) * perPage).Limit(perPage).Order("created_at DESC").Find(&users).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	utils.JSONPage(ctx, users, page, perPage, total)
}

// PATCH /admin/users/{id}/role { role } — super admin only
func AdminChangeUserRole(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var body struct {
		Role string `json:"role" validate:"required"`
	}
	if err := ctx.ReadJSON(&body); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if !slices.Contains(assignableRoles, body.Role) {
		utils.JSONFieldErrors(ctx, map[string]string{"role": "role must be student, admin or super_admin"})
		return
	}

	var user models.User
	if err := storage.DB.First(&user, id).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "user not found")
		return
	}

	before := user
	user.Role = body.Role
	if err := storage.DB.Save(&user).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.Audit(ctx, "user.role_update", "user", user.ID, before, user)
	ctx.JSON(iris.Map{"data": &user})
}

// GET /admin/activity — last 100 audit entries
func AdminActivity(ctx iris.Context) {
	var logs []models.AuditLog
	storage.DB.Order("created_at DESC").Limit(100).Find(&logs)
	ctx.JSON(iris.Map{"data": logs, "meta": iris.Map{}, "links": iris.Map{}})
}
