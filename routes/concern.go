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
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// POST /api/concern — submit a new concern. Anonymous unless the authed variant
// of the route placed a userID into the context values.
func SubmitConcern(ctx iris.Context) {
	var input SubmitConcernInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	// Reject locally before any store call; errors are keyed by field.
	if fieldErrs := models.ValidateConcernSubmission(input.Title, input.Body, input.Category); len(fieldErrs) > 0 {
		utils.JSONFieldErrors(ctx, fieldErrs)
		return
	}

	concern := models.Concern{
		AuthorName: strings.TrimSpace(input.AuthorName),
		Title:      strings.TrimSpace(input.Title),
		Body:       strings.TrimSpace(input.Body),
		Category:   strings.TrimSpace(input.Category),
		Status:     models.ConcernStatusNew,
	}

	if v := ctx.Values().Get("userID"); v != nil {
		if uid, ok := v.(uint); ok {
			concern.AuthorID = &uid
		}
	}

	if err := storage.DB.Create(&concern).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	ctx.StatusCode(http.StatusCreated)
	ctx.JSON(iris.Map{"data": concern})
}

// GET /api/concern?status=&category=&page=&per_page= — public listing, hidden excluded
func ListConcerns(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 25)
	if perPage <= 0 || perPage > 100 {
		perPage = 25
	}

	q := storage.DB.Model(&models.Concern{}).Where("is_hidden = ?", false)

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

	var total int64
	q.Count(&total)

	var items []models.Concern
	if err := q.Offset((page - 1) * perPage).Limit(perPage).Order("created_at DESC").Find(&items).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	utils.JSONPage(ctx, items, page, perPage, total)
}

// GET /api/concern/stats — public status board over non-hidden concerns
func ConcernStatusBoard(ctx iris.Context) {
	var snapshot []models.Concern
	if err := storage.DB.Where("is_hidden = ?", false).Find(&snapshot).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	ctx.JSON(iris.Map{"data": services.BuildConcernStats(snapshot, time.Now())})
}

// GET /api/concern/identity — mint a voter pseudo-identity for this client.
// The token is stored client-side; it is not a verified account.
func NewVoterIdentity(ctx iris.Context) {
	token := utils.GenerateShortToken(16)
	if token == "" {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{"data": iris.Map{"voterToken": token}})
}

// GET /api/concern/{id} — detail with replies, oldest first
func GetConcern(ctx iris.Context) {
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

	if concern.IsHidden {
		// Hidden records stay visible to admins via the admin listing only.
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "concern not found")
		return
	}

	ctx.JSON(iris.Map{"data": concern})
}

// POST /api/concern/{id}/replies — append-only; the concern row is untouched
func CreateConcernReply(ctx iris.Context) {
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
		AuthorName: strings.TrimSpace(input.AuthorName),
		Body:       body,
	}
	if err := storage.DB.Create(&reply).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	ctx.StatusCode(http.StatusCreated)
	ctx.JSON(iris.Map{"data": reply})
}

// POST /api/concern/{id}/vote — one vote per (concern, voter token).
// Ledger insert and counter increment run in a single transaction; the insert
// is guarded by the composite unique index, so the duplicate check and the
// increment cannot diverge.
func VoteConcern(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var input VoteConcernInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if !slices.Contains(models.VoteTypes, input.VoteType) {
		utils.JSONFieldErrors(ctx, map[string]string{"voteType": "voteType must be helpful or not_helpful"})
		return
	}

	var concern models.Concern
	if err := storage.DB.First(&concern, id).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "concern not found")
		return
	}

	counterColumn := "helpful_votes"
	if input.VoteType == models.VoteTypeNotHelpful {
		counterColumn = "not_helpful_votes"
	}

	duplicate := false
	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		vote := models.ConcernVote{
			ConcernID:  concern.ID,
			VoterToken: input.VoterToken,
			VoteType:   input.VoteType,
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&vote)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			duplicate = true
			return nil
		}
		return tx.Model(&models.Concern{}).Where("id = ?", concern.ID).
			UpdateColumn(counterColumn, gorm.Expr(counterColumn+" + ?", 1)).Error
	})
	if txErr != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", txErr.Error())
		return
	}
	if duplicate {
		utils.JSONError(ctx, http.StatusConflict, "already_voted", "this identity has already voted on this concern")
		return
	}

	if err := storage.DB.First(&concern, concern.ID).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	ctx.JSON(iris.Map{"data": concern})
}

type SubmitConcernInput struct {
	AuthorName string `json:"authorName" validate:"max=120"`
	Title      string `json:"title" validate:"required,max=200"`
	Body       string `json:"body" validate:"required"`
	Category   string `json:"category" validate:"required,max=40"`
}

type ConcernReplyInput struct {
	AuthorName string `json:"authorName" validate:"max=120"`
	Body       string `json:"body" validate:"required"`
}

type VoteConcernInput struct {
	VoterToken string `json:"voterToken" validate:"required,min=8,max=64"`
	VoteType   string `json:"voteType" validate:"required"`
}
