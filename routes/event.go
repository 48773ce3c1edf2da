package routes

import (
	"campus-voice-server/models"
	"campus-voice-server/storage"
	"campus-voice-server/utils"
	"net/http"
	"strings"
	"time"

	"github.com/kataras/iris/v12"
)

// GET /api/event?upcoming=true&page=&per_page= — calendar listing by start time
func ListEvents(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 25)
	if perPage <= 0 || perPage > 100 {
		perPage = 25
	}

	q := storage.DB.Model(&models.Event{})
	if ctx.URLParamDefault("upcoming", "") == "true" {
		now := time.Now()
		q = q.Where("starts_at >= ? OR (ends_at IS NOT NULL AND ends_at >= ?)", now, now)
	}

	var total int64
	q.Count(&total)

	var items []models.Event
	if err := q.Offset((page - 1) * perPage).Limit(perPage).Order("starts_at ASC").Find(&items).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	utils.JSONPage(ctx, items, page, perPage, total)
}

// POST /admin/events
func AdminCreateEvent(ctx iris.Context) {
	var input EventInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if input.EndsAt != nil && input.EndsAt.Before(input.StartsAt) {
		utils.JSONFieldErrors(ctx, map[string]string{"endsAt": "end time must not precede start time"})
		return
	}

	event := models.Event{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Location:    strings.TrimSpace(input.Location),
		StartsAt:    input.StartsAt,
		EndsAt:      input.EndsAt,
	}
	if v := ctx.Values().Get("userID"); v != nil {
		if uid, ok := v.(uint); ok {
			event.CreatedBy = uid
		}
	}

	if err := storage.DB.Create(&event).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.Audit(ctx, "event.create", "event", event.ID, nil, event)
	ctx.StatusCode(http.StatusCreated)
	ctx.JSON(iris.Map{"data": event})
}

// PATCH /admin/events/{id}
func AdminUpdateEvent(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var input EventInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if input.EndsAt != nil && input.EndsAt.Before(input.StartsAt) {
		utils.JSONFieldErrors(ctx, map[string]string{"endsAt": "end time must not precede start time"})
		return
	}

	var event models.Event
	if err := storage.DB.First(&event, id).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "event not found")
		return
	}

	before := event
	event.Title = strings.TrimSpace(input.Title)
	event.Description = strings.TrimSpace(input.Description)
	event.Location = strings.TrimSpace(input.Location)
	event.StartsAt = input.StartsAt
	event.EndsAt = input.EndsAt

	if err := storage.DB.Save(&event).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.Audit(ctx, "event.update", "event", event.ID, before, event)
	ctx.JSON(iris.Map{"data": event})
}

// DELETE /admin/events/{id}
func AdminDeleteEvent(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var event models.Event
	if err := storage.DB.First(&event, id).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "event not found")
		return
	}

	before := event
	if err := storage.DB.Unscoped().Delete(&event).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.Audit(ctx, "event.delete", "event", before.ID, before, nil)
	ctx.StatusCode(http.StatusNoContent)
}

type EventInput struct {
	Title       string     `json:"title" validate:"required,min=3,max=200"`
	Description string     `json:"description"`
	Location    string     `json:"location" validate:"max=200"`
	StartsAt    time.Time  `json:"startsAt" validate:"required"`
	EndsAt      *time.Time `json:"endsAt"`
}
