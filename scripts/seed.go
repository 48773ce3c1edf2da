package main

import (
	"campus-voice-server/models"
	"campus-voice-server/storage"
	"encoding/json"
	"fmt"
	"log"

	"gorm.io/datatypes"
)

// Seeds a fresh database with a welcome notice and a sample quiz so the site
// is not empty on first deploy. Safe to re-run; it only inserts into empty
// tables.
func main() {
	storage.InitializeDB()

	var noticeCount int64
	storage.DB.Model(&models.Notice{}).Count(&noticeCount)
	if noticeCount == 0 {
		notice := models.Notice{
			Title:    "Welcome to CampusVoice",
			Body:     "Use the concerns page to raise anything that needs attention. Submissions can be anonymous.",
			Category: "General",
			Pinned:   true,
		}
		if err := storage.DB.Create(&notice).Error; err != nil {
			log.Fatalf("Error seeding notice: %v", err)
		}
	}

	var quizCount int64
	storage.DB.Model(&models.Quiz{}).Count(&quizCount)
	if quizCount == 0 {
		questions := []models.QuizQuestion{
			{
				Prompt:  "Which page do you use to raise a grievance?",
				Options: []string{"Events", "Concerns", "Notices"},
				Answer:  1,
			},
			{
				Prompt:  "Can concerns be submitted anonymously?",
				Options: []string{"Yes", "No"},
				Answer:  0,
			},
		}
		raw, _ := json.Marshal(questions)
		quiz := models.Quiz{
			Title:       "Getting started with CampusVoice",
			Description: "A two-question warm-up quiz.",
			Questions:   datatypes.JSON(raw),
		}
		if err := storage.DB.Create(&quiz).Error; err != nil {
			log.Fatalf("Error seeding quiz: %v", err)
		}
	}

	fmt.Println("Seed completed successfully!")
}
