package routes

import (
	"campus-voice-server/models"
	"campus-voice-server/services"
	"campus-voice-server/storage"
	"campus-voice-server/utils"
	"net/http"
	"time"

	"github.com/kataras/iris/v12"
)

// GET /admin/stats — dashboard numbers derived from one concern snapshot plus
// a few direct counts for the other boards
func AdminStats(ctx iris.Context) {
	var snapshot []models.Concern
	if err := storage.DB.Find(&snapshot).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	stats := services.BuildConcernStats(snapshot, time.Now())

	var hiddenConcerns int64
	storage.DB.Model(&models.Concern{}).Where("is_hidden = ?", true).Count(&hiddenConcerns)

	var noticeCount, eventCount, quizCount, responseCount int64
	storage.DB.Model(&models.Notice{}).Count(&noticeCount)
	storage.DB.Model(&models.Event{}).Count(&eventCount)
	storage.DB.Model(&models.Quiz{}).Count(&quizCount)
	storage.DB.Model(&models.QuizResponse{}).Count(&responseCount)

	since7 := time.Now().AddDate(0, 0, -7)
	var newUsers7 int64
	storage.DB.Model(&models.User{}).Where("created_at >= ?", since7).Count(&newUsers7)

	ctx.JSON(iris.Map{
		"data": iris.Map{
			"concerns":        stats,
			"hidden_concerns": hiddenConcerns,
			"notices":         noticeCount,
			"events":          eventCount,
			"quizzes":         quizCount,
			"quiz_responses":  responseCount,
			"new_users_7d":    newUsers7,
		},
		"meta":  iris.Map{},
		"links": iris.Map{},
	})
}
