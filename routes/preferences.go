package routes

import (
	"courtside-server/models"
	"courtside-server/services"
	"courtside-server/storage"
	"courtside-server/utils"
	"encoding/json"
	"fmt"

	"github.com/kataras/iris/v12"
	"gorm.io/datatypes"
)

// GetUserPreferences returns the user's saved preference sets
func GetUserPreferences(ctx iris.Context) {
	params := ctx.Params()
	id := params.Get("id")

	var preferences []models.Preference
	err := storage.DB.Where("user_id = ?", id).Order("id ASC").Find(&preferences).Error
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{
		"success": true,
		"data":    preferences,
		"count":   len(preferences),
	})
}

func CreatePreference(ctx iris.Context) {
	params := ctx.Params()
	id := params.Get("id")

	user := getUserByID(id, ctx)
	if user == nil {
		return
	}

	var req PreferenceInput
	err := ctx.ReadJSON(&req)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if !validatePreferenceInput(&req, ctx) {
		return
	}

	var count int64
	storage.DB.Model(&models.Preference{}).Where("user_id = ?", user.ID).Count(&count)
	if count >= models.MaxPreferenceSetsPerUser {
		utils.CreateError(iris.StatusConflict, "Limit Reached",
			fmt.Sprintf("You can save up to %d preference sets.", models.MaxPreferenceSetsPerUser), ctx)
		return
	}

	preference, marshalErr := buildPreference(user.ID, &req)
	if marshalErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if err := storage.DB.Create(preference).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"success": true, "data": preference})
}

func UpdatePreference(ctx iris.Context) {
	params := ctx.Params()
	id := params.Get("id")
	preferenceID := params.Get("preferenceID")

	var existing models.Preference
	found := storage.DB.Where("id = ? AND user_id = ?", preferenceID, id).Limit(1).Find(&existing)
	if found.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if found.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	var req PreferenceInput
	err := ctx.ReadJSON(&req)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if !validatePreferenceInput(&req, ctx) {
		return
	}

	updated, marshalErr := buildPreference(existing.UserID, &req)
	if marshalErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	existing.Days = updated.Days
	existing.ScheduleIDs = updated.ScheduleIDs
	existing.CourtIDs = updated.CourtIDs

	if err := storage.DB.Save(&existing).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "data": existing})
}

func DeletePreference(ctx iris.Context) {
	params := ctx.Params()
	id := params.Get("id")
	preferenceID := params.Get("preferenceID")

	result := storage.DB.Where("id = ? AND user_id = ?", preferenceID, id).Delete(&models.Preference{})
	if result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if result.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	ctx.StatusCode(iris.StatusNoContent)
}

// validatePreferenceInput checks every referenced day, slot and court against
// the catalogs so stale IDs never enter a preference vector.
func validatePreferenceInput(req *PreferenceInput, ctx iris.Context) bool {
	if len(req.Days) == 0 && len(req.ScheduleIDs) == 0 && len(req.CourtIDs) == 0 {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Preference set cannot be empty.", ctx)
		return false
	}

	// Repeated entries are harmless to a binary vector but would fail the
	// IN-count existence checks below, so collapse them first.
	req.Days = dedupeStrings(req.Days)
	req.ScheduleIDs = dedupeUints(req.ScheduleIDs)
	req.CourtIDs = dedupeUints(req.CourtIDs)

	for _, day := range req.Days {
		if !services.ValidDay(day) {
			utils.CreateError(iris.StatusBadRequest, "Validation Error", "Unknown day: "+day, ctx)
			return false
		}
	}

	if len(req.ScheduleIDs) > 0 {
		var count int64
		storage.DB.Model(&models.Schedule{}).Where("id IN ? AND is_active = ?", req.ScheduleIDs, true).Count(&count)
		if count != int64(len(req.ScheduleIDs)) {
			utils.CreateError(iris.StatusBadRequest, "Validation Error", "One or more schedule slots do not exist.", ctx)
			return false
		}
	}

	if len(req.CourtIDs) > 0 {
		var count int64
		storage.DB.Model(&models.Court{}).Where("id IN ? AND is_active = ?", req.CourtIDs, true).Count(&count)
		if count != int64(len(req.CourtIDs)) {
			utils.CreateError(iris.StatusBadRequest, "Validation Error", "One or more courts do not exist.", ctx)
			return false
		}
	}

	return true
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func dedupeUints(in []uint) []uint {
	seen := make(map[uint]bool, len(in))
	out := make([]uint, 0, len(in))
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func buildPreference(userID uint, req *PreferenceInput) (*models.Preference, error) {
	days, err := json.Marshal(req.Days)
	if err != nil {
		return nil, err
	}
	scheduleIDs, err := json.Marshal(req.ScheduleIDs)
	if err != nil {
		return nil, err
	}
	courtIDs, err := json.Marshal(req.CourtIDs)
	if err != nil {
		return nil, err
	}

	return &models.Preference{
		UserID:      userID,
		Days:        datatypes.JSON(days),
		ScheduleIDs: datatypes.JSON(scheduleIDs),
		CourtIDs:    datatypes.JSON(courtIDs),
	}, nil
}

type PreferenceInput struct {
	Days        []string `json:"days"`
	ScheduleIDs []uint   `json:"scheduleIDs"`
	CourtIDs    []uint   `json:"courtIDs"`
}
