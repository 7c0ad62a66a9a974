package main

import (
	"courtside-server/models"
	"courtside-server/storage"
	"fmt"
	"log"
)

// Seeds the court, schedule and category catalogs. Safe to re-run: rows are
// looked up by their natural key before insert.
func main() {
	storage.InitializeDB()

	courts := []models.Court{
		{Name: "Court 1", Surface: "hard", Indoor: false, Capacity: 4, IsActive: true},
		{Name: "Court 2", Surface: "hard", Indoor: false, Capacity: 4, IsActive: true},
		{Name: "Court 3", Surface: "clay", Indoor: false, Capacity: 4, IsActive: true},
		{Name: "Indoor A", Surface: "hard", Indoor: true, Capacity: 4, IsActive: true},
		{Name: "Indoor B", Surface: "carpet", Indoor: true, Capacity: 2, IsActive: true},
	}
	for _, court := range courts {
		if err := storage.DB.Where("name = ?", court.Name).FirstOrCreate(&court).Error; err != nil {
			log.Fatalf("Error seeding court %s: %v", court.Name, err)
		}
	}

	slots := []models.Schedule{
		{StartTime: "08:00", EndTime: "09:30", SortOrder: 1, IsActive: true},
		{StartTime: "09:30", EndTime: "11:00", SortOrder: 2, IsActive: true},
		{StartTime: "11:00", EndTime: "12:30", SortOrder: 3, IsActive: true},
		{StartTime: "14:00", EndTime: "15:30", SortOrder: 4, IsActive: true},
		{StartTime: "15:30", EndTime: "17:00", SortOrder: 5, IsActive: true},
		{StartTime: "17:00", EndTime: "18:30", SortOrder: 6, IsActive: true},
		{StartTime: "18:30", EndTime: "20:00", SortOrder: 7, IsActive: true},
		{StartTime: "20:00", EndTime: "21:30", SortOrder: 8, IsActive: true},
	}
	for _, slot := range slots {
		if err := storage.DB.Where("start_time = ? AND end_time = ?", slot.StartTime, slot.EndTime).
			FirstOrCreate(&slot).Error; err != nil {
			log.Fatalf("Error seeding schedule %s-%s: %v", slot.StartTime, slot.EndTime, err)
		}
	}

	categories := []models.Category{
		{Name: "Beginner", Level: 1, Description: "New to the game", SortOrder: 1, IsActive: true},
		{Name: "Intermediate", Level: 2, Description: "Comfortable rallying and serving", SortOrder: 2, IsActive: true},
		{Name: "Advanced", Level: 3, Description: "Competitive club play", SortOrder: 3, IsActive: true},
		{Name: "Expert", Level: 4, Description: "Tournament level", SortOrder: 4, IsActive: true},
	}
	for _, category := range categories {
		if err := storage.DB.Where("name = ?", category.Name).FirstOrCreate(&category).Error; err != nil {
			log.Fatalf("Error seeding category %s: %v", category.Name, err)
		}
	}

	fmt.Println("Catalog seeding completed successfully!")
}
