package routes

import (
	"campus-voice-server/models"
	"campus-voice-server/services"
	"campus-voice-server/storage"
	"campus-voice-server/utils"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/kataras/iris/v12"
	"gorm.io/datatypes"
	"gorm.io/gorm/clause"
)

// publicQuestion is the question shape served to students: no answer index.
type publicQuestion struct {
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

func toPublicQuestions(questions []models.QuizQuestion) []publicQuestion {
	out := make([]publicQuestion, len(questions))
	for i, q := range questions {
		out[i] = publicQuestion{Prompt: q.Prompt, Options: q.Options}
	}
	return out
}

// GET /api/quiz — list quizzes without their question bodies
func ListQuizzes(ctx iris.Context) {
	var quizzes []models.Quiz
	if err := storage.DB.Order("created_at DESC").Find(&quizzes).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	type quizSummary struct {
		ID            uint   `json:"id"`
		Title         string `json:"title"`
		Description   string `json:"description"`
		QuestionCount int    `json:"questionCount"`
	}
	summaries := make([]quizSummary, 0, len(quizzes))
	for _, q := range quizzes {
		questions, err := q.ParseQuestions()
		if err != nil {
			continue // skip rows that predate question validation
		}
		summaries = append(summaries, quizSummary{
			ID:            q.ID,
			Title:         q.Title,
			Description:   q.Description,
			QuestionCount: len(questions),
		})
	}
	ctx.JSON(iris.Map{"data": summaries})
}

// GET /api/quiz/{id} — quiz with questions, answers stripped
func GetQuiz(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var quiz models.Quiz
	if err := storage.DB.First(&quiz, id).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "quiz not found")
		return
	}

	questions, parseErr := quiz.ParseQuestions()
	if parseErr != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", parseErr.Error())
		return
	}

	ctx.JSON(iris.Map{"data": iris.Map{
		"id":          quiz.ID,
		"title":       quiz.Title,
		"description": quiz.Description,
		"questions":   toPublicQuestions(questions),
	}})
}

// POST /api/quiz/{id}/responses — score is computed server-side; one response
// per student name per quiz
func SubmitQuizResponse(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var input QuizResponseInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	studentName := strings.TrimSpace(input.StudentName)
	if studentName == "" {
		utils.JSONFieldErrors(ctx, map[string]string{"studentName": "student name is required"})
		return
	}

	var quiz models.Quiz
	if err := storage.DB.First(&quiz, id).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "quiz not found")
		return
	}

	questions, parseErr := quiz.ParseQuestions()
	if parseErr != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", parseErr.Error())
		return
	}

	score, scoreErr := models.ScoreAnswers(questions, input.Answers)
	if scoreErr != nil {
		utils.JSONFieldErrors(ctx, map[string]string{"answers": scoreErr.Error()})
		return
	}

	rawAnswers, _ := json.Marshal(input.Answers)
	response := models.QuizResponse{
		QuizID:      quiz.ID,
		StudentName: studentName,
		Answers:     datatypes.JSON(rawAnswers),
		Score:       score,
	}
	res := storage.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&response)
	if res.Error != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", res.Error.Error())
		return
	}
	if res.RowsAffected == 0 {
		utils.JSONError(ctx, http.StatusConflict, "already_submitted", "this name has already submitted a response for this quiz")
		return
	}

	services.InvalidateLeaderboard(quiz.ID)

	ctx.StatusCode(http.StatusCreated)
	ctx.JSON(iris.Map{"data": iris.Map{
		"id":          response.ID,
		"quizID":      quiz.ID,
		"studentName": studentName,
		"score":       score,
		"outOf":       len(questions),
	}})
}

// GET /api/quiz/{id}/leaderboard — score desc, earlier submission wins ties
func GetQuizLeaderboard(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	if cached := services.GetCachedLeaderboard(id); cached != nil {
		ctx.JSON(iris.Map{"data": cached})
		return
	}

	var quiz models.Quiz
	if err := storage.DB.First(&quiz, id).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "quiz not found")
		return
	}

	var responses []models.QuizResponse
	if err := storage.DB.Where("quiz_id = ?", quiz.ID).Find(&responses).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	ranked := services.RankResponses(responses)
	services.CacheLeaderboard(quiz.ID, ranked)
	ctx.JSON(iris.Map{"data": ranked})
}

// POST /admin/quizzes
func AdminCreateQuiz(ctx iris.Context) {
	var input CreateQuizInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	questions, qErr := models.ValidateQuizQuestions(input.Questions)
	if qErr != nil {
		utils.JSONFieldErrors(ctx, map[string]string{"questions": qErr.Error()})
		return
	}

	raw, _ := json.Marshal(questions)
	quiz := models.Quiz{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Questions:   datatypes.JSON(raw),
	}
	if v := ctx.Values().Get("userID"); v != nil {
		if uid, ok := v.(uint); ok {
			quiz.CreatedBy = uid
		}
	}

	if err := storage.DB.Create(&quiz).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.Audit(ctx, "quiz.create", "quiz", quiz.ID, nil, quiz)
	ctx.StatusCode(http.StatusCreated)
	ctx.JSON(iris.Map{"data": quiz})
}

// DELETE /admin/quizzes/{id} — responses cascade
func AdminDeleteQuiz(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var quiz models.Quiz
	if err := storage.DB.First(&quiz, id).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "quiz not found")
		return
	}

	before := quiz
	if err := storage.DB.Where("quiz_id = ?", quiz.ID).Delete(&models.QuizResponse{}).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	if err := storage.DB.Unscoped().Delete(&quiz).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	services.InvalidateLeaderboard(before.ID)
	utils.Audit(ctx, "quiz.delete", "quiz", before.ID, before, nil)
	ctx.StatusCode(http.StatusNoContent)
}

type QuizResponseInput struct {
	StudentName string `json:"studentName" validate:"required,max=120"`
	Answers     []int  `json:"answers" validate:"required"`
}

type CreateQuizInput struct {
	Title       string          `json:"title" validate:"required,min=3,max=200"`
	Description string          `json:"description"`
	Questions   json.RawMessage `json:"questions" validate:"required"`
}
