package services

import (
	"campus-voice-server/models"
	"campus-voice-server/storage"
	"campus-voice-server/utils"
	"encoding/json"
	"fmt"
	"log"
)

// NotificationService handles all push notification logic
type NotificationService struct{}

// NewNotificationService creates a new notification service instance
func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// NotificationData represents the data payload for notifications
type NotificationData struct {
	Type      string `json:"type"`
	ID        string `json:"id"`
	ConcernID string `json:"concernId,omitempty"`
	// Deep linking data
	Screen string `json:"screen"`           // Target screen to navigate to
	Params string `json:"params"`           // JSON string of navigation parameters
	Action string `json:"action,omitempty"` // Specific action to perform
}

// getUserPushTokens retrieves all push tokens for a user
func (ns *NotificationService) getUserPushTokens(userID uint) ([]string, error) {
	var user models.User
	if err := storage.DB.First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("user not found: %v", err)
	}

	if user.AllowsNotifications == nil || !*user.AllowsNotifications || user.PushTokens == nil {
		return nil, fmt.Errorf("user has notifications disabled or no tokens")
	}

	var tokens []string
	if err := json.Unmarshal(user.PushTokens, &tokens); err != nil {
		return nil, fmt.Errorf("failed to unmarshal push tokens: %v", err)
	}

	return tokens, nil
}

// SendNotificationToUser sends a notification to a specific user
func (ns *NotificationService) SendNotificationToUser(userID uint, title, body string, data NotificationData) error {
	tokens, err := ns.getUserPushTokens(userID)
	if err != nil {
		log.Printf("Failed to get push tokens for user %d: %v", userID, err)
		return err
	}

	dataMap := map[string]string{
		"type":      data.Type,
		"id":        data.ID,
		"concernId": data.ConcernID,
		"screen":    data.Screen,
		"params":    data.Params,
	}

	var lastError error
	for _, token := range tokens {
		if err := utils.SendNotification(token, title, body, dataMap); err != nil {
			log.Printf("Failed to send notification to token %s: %v", token, err)
			lastError = err
		}
	}

	return lastError
}

// SendConcernStatusNotification tells the author their concern moved to a new status
func (ns *NotificationService) SendConcernStatusNotification(authorID, concernID uint, concernTitle, newStatus string) error {
	title := "📋 Concern Update"
	body := fmt.Sprintf("Your concern %q is now %s", concernTitle, newStatus)

	params := fmt.Sprintf(`{"concernId": %d}`, concernID)

	data := NotificationData{
		Type:      "concern_status_update",
		ID:        fmt.Sprintf("%d", concernID),
		ConcernID: fmt.Sprintf("%d", concernID),
		Screen:    "ConcernDetail",
		Params:    params,
		Action:    "view_concern",
	}

	return ns.SendNotificationToUser(authorID, title, body, data)
}

// SendConcernReplyNotification tells the author an admin replied to their concern
func (ns *NotificationService) SendConcernReplyNotification(authorID, concernID uint, concernTitle string) error {
	title := "💬 New Reply"
	body := fmt.Sprintf("An admin replied to your concern %q", concernTitle)

	params := fmt.Sprintf(`{"concernId": %d}`, concernID)

	data := NotificationData{
		Type:      "concern_reply",
		ID:        fmt.Sprintf("%d", concernID),
		ConcernID: fmt.Sprintf("%d", concernID),
		Screen:    "ConcernDetail",
		Params:    params,
		Action:    "view_concern",
	}

	return ns.SendNotificationToUser(authorID, title, body, data)
}
