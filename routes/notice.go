package routes

import (
	"campus-voice-server/models"
	"campus-voice-server/storage"
	"campus-voice-server/utils"
	"net/http"
	"strings"

	"github.com/kataras/iris/v12"
)

// GET /api/notice?category=&page=&per_page= — pinned first, then newest
func ListNotices(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 25)
	if perPage <= 0 || perPage > 100 {
		perPage = 25
	}

	q := storage.DB.Model(&models.Notice{})
	if category := ctx.URLParamDefault("category", ""); category != "" {
		q = q.Where("category = ?", category)
	}

	var total int64
	q.Count(&total)

	var items []models.Notice
	if err := q.Offset((page - 1) * perPage).Limit(perPage).
		Order("pinned DESC, created_at DESC").Find(&items).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	utils.JSONPage(ctx, items, page, perPage, total)
}

// POST /admin/notices
func AdminCreateNotice(ctx iris.Context) {
	var input NoticeInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	notice := models.Notice{
		Title:    strings.TrimSpace(input.Title),
		Body:     strings.TrimSpace(input.Body),
		Category: strings.TrimSpace(input.Category),
		Pinned:   input.Pinned,
	}
	if v := ctx.Values().Get("userID"); v != nil {
		if uid, ok := v.(uint); ok {
			notice.PostedBy = uid
		}
	}

	if err := storage.DB.Create(&notice).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.Audit(ctx, "notice.create", "notice", notice.ID, nil, notice)
	ctx.StatusCode(http.StatusCreated)
	ctx.JSON(iris.Map{"data": notice})
}

// PATCH /admin/notices/{id}
func AdminUpdateNotice(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var input NoticeInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var notice models.Notice
	if err := storage.DB.First(&notice, id).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "notice not found")
		return
	}

	before := notice
	notice.Title = strings.TrimSpace(input.Title)
	notice.Body = strings.TrimSpace(input.Body)
	notice.Category = strings.TrimSpace(input.Category)
	notice.Pinned = input.Pinned

	if err := storage.DB.Save(&notice).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.Audit(ctx, "notice.update", "notice", notice.ID, before, notice)
	ctx.JSON(iris.Map{"data": notice})
}

// DELETE /admin/notices/{id}
func AdminDeleteNotice(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var notice models.Notice
	if err := storage.DB.First(&notice, id).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "notice not found")
		return
	}

	before := notice
	if err := storage.DB.Unscoped().Delete(&notice).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.Audit(ctx, "notice.delete", "notice", before.ID, before, nil)
	ctx.StatusCode(http.StatusNoContent)
}

type NoticeInput struct {
	Title    string `json:"title" validate:"required,min=3,max=200"`
	Body     string `json:"body" validate:"required"`
	Category string `json:"category" validate:"max=40"`
	Pinned   bool   `json:"pinned"`
}
