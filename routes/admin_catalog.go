package routes

import (
	"courtside-server/models"
	"courtside-server/storage"
	"courtside-server/utils"
	"net/http"

	"github.com/kataras/iris/v12"
)

// Catalog management (admin only). Courts, schedule slots and skill
// categories are deactivated rather than deleted so historical reservations
// keep their references.

// POST /admin/courts
func AdminCreateCourt(ctx iris.Context) {
	var body CourtInput
	if err := ctx.ReadJSON(&body); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	active := true
	court := models.Court{
		Name:     body.Name,
		Surface:  body.Surface,
		Indoor:   body.Indoor,
		Capacity: body.Capacity,
		PhotoURL: body.PhotoURL,
		IsActive: active,
	}
	if court.Capacity <= 0 {
		court.Capacity = 4
	}

	if err := storage.DB.Create(&court).Error; err != nil {
		utils.JSONError(ctx, http.StatusConflict, "create_failed", "court name may already exist")
		return
	}

	utils.Audit(ctx, "court.create", "court", court.ID, nil, court)
	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"data": court})
}

// PATCH /admin/courts/:id
func AdminUpdateCourt(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var court models.Court
	if err := storage.DB.First(&court, id).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "court not found")
		return
	}

	var body CourtUpdateInput
	if err := ctx.ReadJSON(&body); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	before := court
	if body.Name != nil {
		court.Name = *body.Name
	}
	if body.Surface != nil {
		court.Surface = *body.Surface
	}
	if body.Indoor != nil {
		court.Indoor = *body.Indoor
	}
	if body.Capacity != nil && *body.Capacity > 0 {
		court.Capacity = *body.Capacity
	}
	if body.PhotoURL != nil {
		court.PhotoURL = *body.PhotoURL
	}
	if body.IsActive != nil {
		court.IsActive = *body.IsActive
	}

	if err := storage.DB.Save(&court).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.Audit(ctx, "court.update", "court", court.ID, before, court)
	ctx.JSON(iris.Map{"data": court})
}

// POST /admin/schedules
func AdminCreateSchedule(ctx iris.Context) {
	var body ScheduleInput
	if err := ctx.ReadJSON(&body); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	schedule := models.Schedule{
		StartTime: body.StartTime,
		EndTime:   body.EndTime,
		SortOrder: body.SortOrder,
		IsActive:  true,
	}

	if err := storage.DB.Create(&schedule).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.Audit(ctx, "schedule.create", "schedule", schedule.ID, nil, schedule)
	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"data": schedule})
}

// PATCH /admin/schedules/:id
func AdminUpdateSchedule(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var schedule models.Schedule
	if err := storage.DB.First(&schedule, id).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "schedule not found")
		return
	}

	var body ScheduleUpdateInput
	if err := ctx.ReadJSON(&body); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	before := schedule
	if body.StartTime != nil {
		schedule.StartTime = *body.StartTime
	}
	if body.EndTime != nil {
		schedule.EndTime = *body.EndTime
	}
	if body.SortOrder != nil {
		schedule.SortOrder = *body.SortOrder
	}
	if body.IsActive != nil {
		schedule.IsActive = *body.IsActive
	}

	if err := storage.DB.Save(&schedule).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.Audit(ctx, "schedule.update", "schedule", schedule.ID, before, schedule)
	ctx.JSON(iris.Map{"data": schedule})
}

// POST /admin/categories
func AdminCreateCategory(ctx iris.Context) {
	var body CategoryInput
	if err := ctx.ReadJSON(&body); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	category := models.Category{
		Name:        body.Name,
		Level:       body.Level,
		Description: body.Description,
		SortOrder:   body.SortOrder,
		IsActive:    true,
	}

	if err := storage.DB.Create(&category).Error; err != nil {
		utils.JSONError(ctx, http.StatusConflict, "create_failed", "category name may already exist")
		return
	}

	utils.Audit(ctx, "category.create", "category", category.ID, nil, category)
	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"data": category})
}

// PATCH /admin/categories/:id
func AdminUpdateCategory(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var category models.Category
	if err := storage.DB.First(&category, id).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "category not found")
		return
	}

	var body CategoryUpdateInput
	if err := ctx.ReadJSON(&body); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	before := category
	if body.Name != nil {
		category.Name = *body.Name
	}
	if body.Level != nil {
		category.Level = *body.Level
	}
	if body.Description != nil {
		category.Description = *body.Description
	}
	if body.SortOrder != nil {
		category.SortOrder = *body.SortOrder
	}
	if body.IsActive != nil {
		category.IsActive = *body.IsActive
	}

	if err := storage.DB.Save(&category).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.Audit(ctx, "category.update", "category", category.ID, before, category)
	ctx.JSON(iris.Map{"data": category})
}

type CourtInput struct {
	Name     string `json:"name" validate:"required,max=256"`
	Surface  string `json:"surface" validate:"max=64"`
	Indoor   bool   `json:"indoor"`
	Capacity int    `json:"capacity"`
	PhotoURL string `json:"photoURL"`
}

type CourtUpdateInput struct {
	Name     *string `json:"name"`
	Surface  *string `json:"surface"`
	Indoor   *bool   `json:"indoor"`
	Capacity *int    `json:"capacity"`
	PhotoURL *string `json:"photoURL"`
	IsActive *bool   `json:"isActive"`
}

type ScheduleInput struct {
	StartTime string `json:"startTime" validate:"required"`
	EndTime   string `json:"endTime" validate:"required"`
	SortOrder int    `json:"sortOrder"`
}

type ScheduleUpdateInput struct {
	StartTime *string `json:"startTime"`
	EndTime   *string `json:"endTime"`
	SortOrder *int    `json:"sortOrder"`
	IsActive  *bool   `json:"isActive"`
}

type CategoryInput struct {
	Name        string `json:"name" validate:"required,max=128"`
	Level       int    `json:"level"`
	Description string `json:"description"`
	SortOrder   int    `json:"sortOrder"`
}

type CategoryUpdateInput struct {
	Name        *string `json:"name"`
	Level       *int    `json:"level"`
	Description *string `json:"description"`
	SortOrder   *int    `json:"sortOrder"`
	IsActive    *bool   `json:"isActive"`
}
