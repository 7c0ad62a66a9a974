package routes

import (
	"courtside-server/models"
	"courtside-server/storage"

	"github.com/kataras/iris/v12"
)

// GetCategories returns all active skill categories, easiest first
func GetCategories(ctx iris.Context) {
	var categories []models.Category
	err := storage.DB.Where("is_active = ?", true).
		Order("sort_order ASC, level ASC").
		Find(&categories).Error
	if err != nil {
		ctx.StatusCode(iris.StatusInternalServerError)
		ctx.JSON(iris.Map{"message": "Failed to fetch categories"})
		return
	}

	ctx.JSON(iris.Map{
		"success": true,
		"data":    categories,
		"count":   len(categories),
	})
}
