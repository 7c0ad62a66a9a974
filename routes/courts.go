package routes

import (
	"courtside-server/models"
	"courtside-server/storage"
	"courtside-server/utils"

	"github.com/kataras/iris/v12"
)

// GetCourts returns all active courts
func GetCourts(ctx iris.Context) {
	var courts []models.Court
	err := storage.DB.Where("is_active = ?", true).
		Order("name ASC").
		Find(&courts).Error
	if err != nil {
		ctx.StatusCode(iris.StatusInternalServerError)
		ctx.JSON(iris.Map{"message": "Failed to fetch courts"})
		return
	}

	ctx.JSON(iris.Map{
		"success": true,
		"data":    courts,
		"count":   len(courts),
	})
}

func GetCourt(ctx iris.Context) {
	params := ctx.Params()
	id := params.Get("id")

	var court models.Court
	courtExists := storage.DB.Where("id = ?", id).Limit(1).Find(&court)
	if courtExists.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if courtExists.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	ctx.JSON(court)
}
