package routes

import (
	"campus-voice-server/models"
	"campus-voice-server/storage"
	"campus-voice-server/utils"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/MicahParks/keyfunc"
	"github.com/golang-jwt/jwt/v4"
	"github.com/kataras/iris/v12"
	jsonWT "github.com/kataras/iris/v12/middleware/jwt"
	"golang.org/x/crypto/bcrypt"
)

func Register(ctx iris.Context) {
	var userInput RegisterUserInput
	err := ctx.ReadJSON(&userInput)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var newUser models.User
	userExists, userExistsErr := getAndHandleUserExists(&newUser, userInput.Email)
	if userExistsErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if userExists == true {
		utils.CreateEmailAlreadyRegistered(ctx)
		return
	}

	hashedPassword, hashErr := hashAndSaltPassword(userInput.Password)
	if hashErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	newUser = models.User{
		FirstName:   userInput.FirstName,
		LastName:    userInput.LastName,
		Email:       strings.ToLower(userInput.Email),
		Password:    hashedPassword,
		Cohort:      userInput.Cohort,
		SocialLogin: false}

	storage.DB.Create(&newUser)

	returnUser(newUser, ctx)
}

func Login(ctx iris.Context) {
	var userInput LoginUserInput
	err := ctx.ReadJSON(&userInput)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var existingUser models.User
	errorMsg := "Invalid email or password."
	userExists, userExistsErr := getAndHandleUserExists(&existingUser, userInput.Email)
	if userExistsErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if userExists == false {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", errorMsg, ctx)
		return
	}

	if existingUser.SocialLogin == true {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", "Social Login Account", ctx)
		return
	}

	passwordErr := bcrypt.CompareHashAndPassword([]byte(existingUser.Password), []byte(userInput.Password))
	if passwordErr != nil {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", errorMsg, ctx)
		return
	}

	returnUser(existingUser, ctx)
}

// GoogleLoginOrSignUp verifies a Google ID token against Google's published JWKS
// and signs the student in, creating the account on first contact.
func GoogleLoginOrSignUp(ctx iris.Context) {
	var userInput GoogleUserInput
	err := ctx.ReadJSON(&userInput)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	res, httpErr := http.Get("https://www.googleapis.com/oauth2/v3/certs")
	if httpErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	defer res.Body.Close()

	body, bodyErr := io.ReadAll(res.Body)
	if bodyErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	jwks, jwksErr := keyfunc.NewJSON(body)
	if jwksErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	// Keyfunc selects the key with the matching kid and returns its public key.
	token, tokenErr := jwt.Parse(userInput.IdentityToken, jwks.Keyfunc)
	if tokenErr != nil || !token.Valid {
		utils.CreateError(iris.StatusUnauthorized, "Unauthorized", "Invalid user token.", ctx)
		return
	}

	claims := token.Claims.(jwt.MapClaims)
	email := fmt.Sprint(claims["email"])
	if email == "" || email == "<nil>" {
		utils.CreateError(iris.StatusUnauthorized, "Unauthorized", "Token has no email claim.", ctx)
		return
	}

	var user models.User
	userExists, userExistsErr := getAndHandleUserExists(&user, email)
	if userExistsErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if userExists == false {
		user = models.User{
			FirstName:      fmt.Sprint(claims["given_name"]),
			LastName:       fmt.Sprint(claims["family_name"]),
			Email:          strings.ToLower(email),
			SocialLogin:    true,
			SocialProvider: "Google"}
		storage.DB.Create(&user)

		returnUser(user, ctx)
		return
	}

	if user.SocialLogin == true && user.SocialProvider == "Google" {
		returnUser(user, ctx)
		return
	}

	utils.CreateEmailAlreadyRegistered(ctx)
}

func GetUser(ctx iris.Context) {
	params := ctx.Params()
	id := params.Get("id")

	var user models.User
	userExists, userExistsErr := getAndHandleUserExistsByID(&user, id)
	if userExistsErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if userExists == false {
		utils.CreateNotFound(ctx)
		return
	}

	ctx.JSON(iris.Map{"data": &user})
}

// AlterPushToken adds or removes an Expo push token on the user record
func AlterPushToken(ctx iris.Context) {
	params := ctx.Params()
	id := params.Get("id")

	var user models.User
	userExists, userExistsErr := getAndHandleUserExistsByID(&user, id)
	if userExistsErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if userExists == false {
		utils.CreateNotFound(ctx)
		return
	}

	var input AlterPushTokenInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var tokens []string
	if user.PushTokens != nil {
		json.Unmarshal(user.PushTokens, &tokens)
	}

	switch input.Op {
	case "add":
		exists := false
		for _, t := range tokens {
			if t == input.Token {
				exists = true
				break
			}
		}
		if !exists {
			tokens = append(tokens, input.Token)
		}
	case "remove":
		kept := tokens[:0]
		for _, t := range tokens {
			if t != input.Token {
				kept = append(kept, t)
			}
		}
		tokens = kept
	default:
		utils.CreateError(iris.StatusBadRequest, "invalid_op", "op must be add or remove", ctx)
		return
	}

	raw, _ := json.Marshal(tokens)
	user.PushTokens = raw
	if err := storage.DB.Save(&user).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"data": &user})
}

// AllowsNotifications toggles whether the user receives push notifications
func AllowsNotifications(ctx iris.Context) {
	params := ctx.Params()
	id := params.Get("id")

	var user models.User
	userExists, userExistsErr := getAndHandleUserExistsByID(&user, id)
	if userExistsErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if userExists == false {
		utils.CreateNotFound(ctx)
		return
	}

	var input AllowsNotificationsInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	user.AllowsNotifications = input.Allows
	if err := storage.DB.Save(&user).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"data": &user})
}

// CurrentUser returns the profile for the authenticated token
func CurrentUser(ctx iris.Context) {
	claims := jsonWT.Get(ctx).(*utils.AccessToken)

	var user models.User
	if err := storage.DB.First(&user, claims.ID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	ctx.JSON(iris.Map{"data": &user})
}

func getAndHandleUserExists(user *models.User, email string) (exists bool, err error) {
	userExistsQuery := storage.DB.Where("email = ?", strings.ToLower(email)).Limit(1).Find(&user)

	if userExistsQuery.Error != nil {
		return false, userExistsQuery.Error
	}

	userExists := userExistsQuery.RowsAffected > 0

	if userExists == true {
		return true, nil
	}

	return false, nil
}

func getAndHandleUserExistsByID(user *models.User, id string) (exists bool, err error) {
	userExistsQuery := storage.DB.Where("id = ?", id).Limit(1).Find(&user)

	if userExistsQuery.Error != nil {
		return false, userExistsQuery.Error
	}

	return userExistsQuery.RowsAffected > 0, nil
}

func hashAndSaltPassword(password string) (hashedPassword string, err error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(bytes), nil
}

func returnUser(user models.User, ctx iris.Context) {
	tokenPair, tokenErr := utils.CreateTokenPair(user.ID)
	if tokenErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{
		"ID":                  user.ID,
		"firstName":           user.FirstName,
		"lastName":            user.LastName,
		"email":               user.Email,
		"cohort":              user.Cohort,
		"role":                user.Role,
		"allowsNotifications": user.AllowsNotifications,
		"accessToken":         string(tokenPair.AccessToken),
		"refreshToken":        string(tokenPair.RefreshToken),
	})
}

type RegisterUserInput struct {
	FirstName string `json:"firstName" validate:"required,max=256"`
	LastName  string `json:"lastName" validate:"required,max=256"`
	Email     string `json:"email" validate:"required,max=256,email"`
	Password  string `json:"password" validate:"required,min=8,max=256"`
	Cohort    string `json:"cohort" validate:"max=40"`
}

type LoginUserInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type GoogleUserInput struct {
	IdentityToken string `json:"identityToken" validate:"required"`
}

type AlterPushTokenInput struct {
	Token string `json:"token" validate:"required"`
	Op    string `json:"op" validate:"required"` // add | remove
}

type AllowsNotificationsInput struct {
	Allows *bool `json:"allowsNotifications" validate:"required"`
}
