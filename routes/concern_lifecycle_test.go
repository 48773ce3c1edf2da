package routes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"campus-voice-server/models"
	"campus-voice-server/storage"
	"campus-voice-server/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupLifecycleDB points storage.DB at a fresh in-memory database. The DSN is
// named per test so shared-cache connections within one test see the same data
// without leaking rows across tests.
func setupLifecycleDB(t *testing.T) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Concern{},
		&models.ConcernReply{},
		&models.ConcernVote{},
		&models.AuditLog{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	storage.DB = db
}

// buildLifecycleApp wires the public and admin concern routes with the real
// verifier and role middleware so audit and claims paths run as in production.
func buildLifecycleApp() *iris.Application {
	os.Setenv("ACCESS_TOKEN_SECRET", "testsecret")
	app := iris.New()

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} { return new(utils.AccessToken) })

	concern := app.Party("/api/concern")
	{
		concern.Get("/{id:uint}", GetConcern)
		concern.Post("/{id:uint}/vote", VoteConcern)
	}

	admin := app.Party("/api/admin", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware)
	{
		admin.Get("/concerns", AdminListConcerns)
		admin.Get("/concerns/{id:uint}", AdminGetConcern)
		admin.Patch("/concerns/{id:uint}/status", AdminUpdateConcernStatus)
		admin.Post("/concerns/{id:uint}/hide", AdminToggleConcernHidden)
		admin.Delete("/concerns/{id:uint}", AdminDeleteConcern)
	}
	app.Build()
	return app
}

func signAdminToken() string {
	signer := jwt.NewSigner(jwt.HS256, os.Getenv("ACCESS_TOKEN_SECRET"), 0)
	token, _ := signer.Sign(utils.AccessToken{ID: 1, Role: "admin"})
	return string(token)
}

func seedConcern(t *testing.T) models.Concern {
	t.Helper()
	concern := models.Concern{
		Title:    "Projector broken in room 12",
		Body:     "The projector in room 12 has refused to power on since Monday morning.",
		Category: "Technical",
		Status:   models.ConcernStatusNew,
	}
	if err := storage.DB.Create(&concern).Error; err != nil {
		t.Fatalf("seed concern: %v", err)
	}
	return concern
}

func doJSON(app *iris.Application, method, target, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	return resp
}

func TestVoteConcernDuplicateLeavesCountersUnchanged(t *testing.T) {
	setupLifecycleDB(t)
	app := buildLifecycleApp()
	concern := seedConcern(t)

	target := fmt.Sprintf("/api/concern/%d/vote", concern.ID)
	vote := `{"voterToken":"tok-abcdef0123456789","voteType":"helpful"}`

	first := doJSON(app, http.MethodPost, target, vote, "")
	if first.Code != http.StatusOK {
		t.Fatalf("first vote: got %d, want 200 (%s)", first.Code, first.Body.String())
	}

	var firstBody struct {
		Data models.Concern `json:"data"`
	}
	if err := json.Unmarshal(first.Body.Bytes(), &firstBody); err != nil {
		t.Fatalf("decode first vote response: %v", err)
	}
	if firstBody.Data.HelpfulVotes != 1 || firstBody.Data.NotHelpfulVotes != 0 {
		t.Fatalf("first vote counters: got helpful=%d notHelpful=%d, want 1/0",
			firstBody.Data.HelpfulVotes, firstBody.Data.NotHelpfulVotes)
	}

	// Same identity again, even with the other vote type, must be refused
	// without touching either counter.
	second := doJSON(app, http.MethodPost, target,
		`{"voterToken":"tok-abcdef0123456789","voteType":"not_helpful"}`, "")
	if second.Code != http.StatusConflict {
		t.Fatalf("second vote: got %d, want 409", second.Code)
	}

	var stored models.Concern
	if err := storage.DB.First(&stored, concern.ID).Error; err != nil {
		t.Fatalf("reload concern: %v", err)
	}
	if stored.HelpfulVotes != 1 || stored.NotHelpfulVotes != 0 {
		t.Errorf("counters after duplicate: got helpful=%d notHelpful=%d, want 1/0",
			stored.HelpfulVotes, stored.NotHelpfulVotes)
	}

	var ledger int64
	storage.DB.Model(&models.ConcernVote{}).Where("concern_id = ?", concern.ID).Count(&ledger)
	if ledger != 1 {
		t.Errorf("ledger rows = %d, want 1", ledger)
	}
}

func TestAdminUpdateConcernStatusRepeatIsIdempotent(t *testing.T) {
	setupLifecycleDB(t)
	app := buildLifecycleApp()
	concern := seedConcern(t)
	token := signAdminToken()

	target := fmt.Sprintf("/api/admin/concerns/%d/status", concern.ID)

	first := doJSON(app, http.MethodPatch, target, `{"status":"solved"}`, token)
	if first.Code != http.StatusOK {
		t.Fatalf("first status update: got %d, want 200 (%s)", first.Code, first.Body.String())
	}

	var afterFirst models.Concern
	storage.DB.First(&afterFirst, concern.ID)
	if afterFirst.Status != models.ConcernStatusSolved {
		t.Fatalf("status after first update = %q, want %q", afterFirst.Status, models.ConcernStatusSolved)
	}
	if afterFirst.ResolvedAt == nil {
		t.Fatal("ResolvedAt should be stamped on entering solved")
	}

	second := doJSON(app, http.MethodPatch, target, `{"status":"solved"}`, token)
	if second.Code != http.StatusOK {
		t.Fatalf("repeated status update: got %d, want 200 (%s)", second.Code, second.Body.String())
	}

	var afterSecond models.Concern
	storage.DB.First(&afterSecond, concern.ID)
	if afterSecond.Status != models.ConcernStatusSolved {
		t.Errorf("status after repeat = %q, want %q", afterSecond.Status, models.ConcernStatusSolved)
	}
	if afterSecond.ResolvedAt == nil {
		t.Error("ResolvedAt must survive a repeated solved update")
	}
}

func TestHideVsDeleteDistinction(t *testing.T) {
	setupLifecycleDB(t)
	app := buildLifecycleApp()
	concern := seedConcern(t)
	token := signAdminToken()

	reply := models.ConcernReply{ConcernID: concern.ID, AuthorName: "Admin", Body: "Facilities has been notified."}
	if err := storage.DB.Create(&reply).Error; err != nil {
		t.Fatalf("seed reply: %v", err)
	}
	vote := models.ConcernVote{ConcernID: concern.ID, VoterToken: "tok-0123456789abcdef", VoteType: models.VoteTypeHelpful}
	if err := storage.DB.Create(&vote).Error; err != nil {
		t.Fatalf("seed vote: %v", err)
	}

	hide := doJSON(app, http.MethodPost, fmt.Sprintf("/api/admin/concerns/%d/hide", concern.ID), "", token)
	if hide.Code != http.StatusOK {
		t.Fatalf("hide: got %d, want 200 (%s)", hide.Code, hide.Body.String())
	}

	// Hidden: gone from the public detail view, still visible to admins.
	public := doJSON(app, http.MethodGet, fmt.Sprintf("/api/concern/%d", concern.ID), "", "")
	if public.Code != http.StatusNotFound {
		t.Errorf("public detail of hidden concern: got %d, want 404", public.Code)
	}
	adminView := doJSON(app, http.MethodGet, fmt.Sprintf("/api/admin/concerns/%d", concern.ID), "", token)
	if adminView.Code != http.StatusOK {
		t.Errorf("admin detail of hidden concern: got %d, want 200", adminView.Code)
	}
	var hidden models.Concern
	storage.DB.First(&hidden, concern.ID)
	if !hidden.IsHidden || hidden.HiddenAt == nil {
		t.Errorf("hidden concern: IsHidden=%v HiddenAt=%v, want true and stamped", hidden.IsHidden, hidden.HiddenAt)
	}

	del := doJSON(app, http.MethodDelete, fmt.Sprintf("/api/admin/concerns/%d", concern.ID), "", token)
	if del.Code != http.StatusNoContent {
		t.Fatalf("delete: got %d, want 204 (%s)", del.Code, del.Body.String())
	}

	// Deleted: gone permanently, replies and ledger rows with it.
	var concernCount int64
	storage.DB.Model(&models.Concern{}).Unscoped().Where("id = ?", concern.ID).Count(&concernCount)
	if concernCount != 0 {
		t.Errorf("concern rows after delete = %d, want 0", concernCount)
	}
	var replyCount, voteCount int64
	storage.DB.Model(&models.ConcernReply{}).Where("concern_id = ?", concern.ID).Count(&replyCount)
	storage.DB.Model(&models.ConcernVote{}).Where("concern_id = ?", concern.ID).Count(&voteCount)
	if replyCount != 0 || voteCount != 0 {
		t.Errorf("replies=%d votes=%d after delete, want 0/0", replyCount, voteCount)
	}
}
