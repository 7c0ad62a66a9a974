package routes

import (
	"courtside-server/models"
	"courtside-server/storage"

	"github.com/kataras/iris/v12"
)

// GetSchedules returns the active time-slot catalog in display order
func GetSchedules(ctx iris.Context) {
	var schedules []models.Schedule
	err := storage.DB.Where("is_active = ?", true).
		Order("sort_order ASC, start_time ASC").
		Find(&schedules).Error
	if err != nil {
		ctx.StatusCode(iris.StatusInternalServerError)
		ctx.JSON(iris.Map{"message": "Failed to fetch schedules"})
		return
	}

	ctx.JSON(iris.Map{
		"success": true,
		"data":    schedules,
		"count":   len(schedules),
	})
}
