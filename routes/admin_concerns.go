package routes

import (
	"campus-voice-server/models"
	"campus-voice-server/services"
	"campus-voice-server/storage"
	"campus-voice-server/utils"
	"net/http"
	"strings"
	"time"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"
)

// GET /admin/concerns?status=&category=&hidden=&page=&per_page= — includes hidden rows
func AdminListConcerns(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 25)
	if perPage <= 0 || perPage > 100 {
		perPage = 25
	}

	q := storage.DB.Model(&models.Concern{})

	if status := ctx.URLParamDefault("status", ""); status != "" {
		normalized := models.NormalizeConcernStatus(status)
		if !models.IsValidConcernStatus(normalized) {
			utils.JSONError(ctx, http.StatusBadRequest, "invalid_status", "unknown status "+status)
			return
		}
		q = q.Where("status = ?", normalized)
	}
	if category := ctx.URLParamDefault("category", ""); category != "" {
		q = q.Where("category = ?", category)
	}
	if hidden := ctx.URLParamDefault("hidden", ""); hidden != "" {
		q = q.Where("is_hidden = ?", hidden == "true")
	}

	var total int64
	q.Count(&total)

	var items []models.Concern
	if err := q.Offset((page - 1) * perPage).Limit(perPage).Order("created_at DESC").Find(&items).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	utils.JSONPage(ctx, items, page, perPage, total)
}

// GET /admin/concerns/{id} — detail regardless of hidden flag
func AdminGetConcern(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}
	var concern models.Concern
	if err := storage.DB.Preload("Replies", func(db *gorm.DB) *gorm.DB {
		return db.Order("concern_replies.created_at ASC")
	}).First(&concern, id).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "concern not found")
		return
	}
	ctx.JSON(iris.Map{"data": concern})
}

// PATCH /admin/concerns/{id}/status { status }
// Any status may move to any other status; triage is manual and non-linear.
// Repeating the same status is a no-op that still succeeds.
func AdminUpdateConcernStatus(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var body UpdateConcernStatusInput
	if err := ctx.ReadJSON(&body); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	newStatus := models.NormalizeConcernStatus(body.Status)
	if !models.IsValidConcernStatus(newStatus) {
		utils.JSONFieldErrors(ctx, map[string]string{"status": "status must be one of: " + strings.Join(models.ConcernStatuses, ", ")})
		return
	}

	var concern models.Concern
	if err := storage.DB.First(&concern, id).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "concern not found")
		return
	}

	before := concern
	concern.Status = newStatus
	switch {
	case newStatus == models.ConcernStatusSolved && concern.ResolvedAt == nil:
		now := time.Now()
		concern.ResolvedAt = &now
	case newStatus != models.ConcernStatusSolved:
		concern.ResolvedAt = nil
	}

	if err := storage.DB.Save(&concern).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.Audit(ctx, "concern.status_update", "concern", concern.ID, before, concern)

	if concern.AuthorID != nil && before.Status != concern.Status {
		notificationService := services.NewNotificationService()
		go notificationService.SendConcernStatusNotification(*concern.AuthorID, concern.ID, concern.Title, concern.Status)
	}

	// Return the stored row so the caller replaces, not patches, its copy
	ctx.JSON(iris.Map{"data": concern})
}

// POST /admin/concerns/{id}/hide — soft hide/unhide, distinct from delete
func AdminToggleConcernHidden(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var concern models.Concern
	if err := storage.DB.First(&concern, id).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "concern not found")
		return
	}

	before := concern
	if concern.IsHidden {
		concern.IsHidden = false
		concern.HiddenAt = nil
		concern.HiddenBy = nil
	} else {
		now := time.Now()
		concern.IsHidden = true
		concern.HiddenAt = &now
		if v := ctx.Values().Get("userID"); v != nil {
			if uid, ok := v.(uint); ok {
				concern.HiddenBy = &uid
			}
		}
	}

	if err := storage.DB.Save(&concern).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.Audit(ctx, "concern.toggle_hidden", "concern", concern.ID, before, concern)
	ctx.JSON(iris.Map{"data": concern})
}

// DELETE /admin/concerns/{id} — hard delete; replies and votes cascade
func AdminDeleteConcern(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var concern models.Concern
	if err := storage.DB.First(&concern, id).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "concern not found")
		return
	}

	before := concern
	err = storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("concern_id = ?", concern.ID).Delete(&models.ConcernReply{}).Error; err != nil {
			return err
		}
		if err := tx.Where("concern_id = ?", concern.ID).Delete(&models.ConcernVote{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&concern).Error
	})
	if err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.Audit(ctx, "concern.delete", "concern", before.ID, before, nil)
	ctx.StatusCode(http.StatusNoContent)
}

// POST /admin/concerns/{id}/replies — reply tagged "Admin", author notified
func AdminReplyConcern(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var input ConcernReplyInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	body := strings.TrimSpace(input.Body)
	if body == "" {
		utils.JSONFieldErrors(ctx, map[string]string{"body": "reply text must not be empty"})
		return
	}

	var concern models.Concern
	if err := storage.DB.First(&concern, id).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "concern not found")
		return
	}

	reply := models.ConcernReply{
		ConcernID:  concern.ID,
		AuthorName: "Admin",
		Body:       body,
	}
	if err := storage.DB.Create(&reply).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.Audit(ctx, "concern.reply", "concern", concern.ID, nil, reply)

	if concern.AuthorID != nil {
		notificationService := services.NewNotificationService()
		go notificationService.SendConcernReplyNotification(*concern.AuthorID, concern.ID, concern.Title)
	}

	ctx.StatusCode(http.StatusCreated)
	ctx.JSON(iris.Map{"data": reply})
}

type UpdateConcernStatusInput struct {
	Status string `json:"status" validate:"required"`
}
