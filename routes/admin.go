package routes

import (
	"courtside-server/models"
	"courtside-server/storage"
	"courtside-server/utils"
	"net/http"
	"strings"

	"github.com/kataras/iris/v12"
)

// ListUsers - GET /admin/users?role=&q=&page=&per_page=
func AdminListUsers(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 25)
	if perPage <= 0 || perPage > 100 {
		perPage = 25
	}

	var users []models.User
	q := strings.TrimSpace(ctx.URLParamDefault("q", ""))
	role := strings.TrimSpace(ctx.URLParamDefault("role", ""))

	query := storage.DB.Model(&models.User{})
	if role != "" {
		query = query.Where("role = ?", role)
	}
	if q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("lower(first_name) LIKE ? OR lower(last_name) LIKE ? OR lower(email) LIKE ?", like, like, like)
	}

	var total int64
	query.Count(&total)
	query = query.Offset((page - 1) * perPage).Limit(perPage)
	if err := query.Find(&users).Error; err != nil {
		ctx.StatusCode(http.StatusInternalServerError)
		ctx.JSON(iris.Map{"error": "server_error", "message": err.Error()})
		return
	}

	ctx.JSON(iris.Map{
		"data":  users,
		"meta":  iris.Map{"page": page, "per_page": perPage, "total": total},
		"links": iris.Map{},
	})
}

// Change role - PATCH /admin/users/:id/role (super_admin only, via middleware)
func AdminChangeUserRole(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithJSON(http.StatusBadRequest, iris.Map{"error": "invalid_id"})
		return
	}

	var body struct {
		Role string `json:"role"`
	}
	if err := ctx.ReadJSON(&body); err != nil || !validRole(body.Role) {
		ctx.StopWithJSON(http.StatusBadRequest, iris.Map{"error": "invalid_role"})
		return
	}

	var user models.User
	if err := storage.DB.First(&user, id).Error; err != nil {
		ctx.StopWithJSON(http.StatusNotFound, iris.Map{"error": "not_found"})
		return
	}

	before := user
	user.Role = body.Role
	if err := storage.DB.Save(&user).Error; err != nil {
		ctx.StopWithJSON(http.StatusInternalServerError, iris.Map{"error": "server_error"})
		return
	}

	utils.Audit(ctx, "user.role_update", "user", user.ID, before, user)

	ctx.JSON(iris.Map{"data": user})
}

// PATCH /admin/users/:id/enabled { enabled }
func AdminSetUserEnabled(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var body struct {
		Enabled *bool `json:"enabled"`
	}
	if err := ctx.ReadJSON(&body); err != nil || body.Enabled == nil {
		utils.JSONError(ctx, http.StatusUnprocessableEntity, "invalid_payload", "enabled must be true or false")
		return
	}

	var user models.User
	if err := storage.DB.First(&user, id).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "user not found")
		return
	}

	before := user
	user.Enabled = body.Enabled
	if err := storage.DB.Save(&user).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.Audit(ctx, "user.set_enabled", "user", user.ID, before, user)
	ctx.JSON(iris.Map{"data": user})
}

// GET /admin/users/:id — full user info + recent activity
func AdminGetUser(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var user models.User
	if err := storage.DB.First(&user, id).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "user not found")
		return
	}

	var reservations []models.Reservation
	storage.DB.Preload("Court").Preload("Schedule").
		Joins("JOIN reservation_players rp ON rp.reservation_id = reservations.id AND rp.deleted_at IS NULL").
		Where("rp.user_id = ?", id).Order("date DESC").Limit(20).Find(&reservations)

	var notifications []models.NotificationLog
	storage.DB.Where("user_id = ?", id).Order("sent_at DESC").Limit(20).Find(&notifications)

	ctx.JSON(iris.Map{
		"data": iris.Map{
			"user":                user,
			"recentReservations":  reservations,
			"recentNotifications": notifications,
		},
		"meta":  iris.Map{},
		"links": iris.Map{},
	})
}

// GET /admin/audit?action=&page=&per_page=
func AdminListAuditLog(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 50)
	if perPage <= 0 || perPage > 200 {
		perPage = 50
	}

	query := storage.DB.Model(&models.AuditLog{})
	if action := ctx.URLParam("action"); action != "" {
		query = query.Where("action = ?", action)
	}
	if resourceType := ctx.URLParam("resource_type"); resourceType != "" {
		query = query.Where("resource_type = ?", resourceType)
	}

	var total int64
	query.Count(&total)

	var entries []models.AuditLog
	if err := query.Order("created_at DESC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&entries).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.JSONPage(ctx, entries, page, perPage, total)
}

// PATCH /admin/reviews/:id/visibility { visible }
func AdminSetReviewVisibility(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var body struct {
		Visible *bool `json:"visible"`
	}
	if err := ctx.ReadJSON(&body); err != nil || body.Visible == nil {
		utils.JSONError(ctx, http.StatusUnprocessableEntity, "invalid_payload", "visible must be true or false")
		return
	}

	var review models.Review
	if err := storage.DB.First(&review, id).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "review not found")
		return
	}

	before := review
	review.IsVisible = *body.Visible
	if err := storage.DB.Save(&review).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	refreshRatingCache(review.SubjectID)
	utils.Audit(ctx, "review.set_visibility", "review", review.ID, before, review)
	ctx.JSON(iris.Map{"data": review})
}

func validRole(role string) bool {
	switch role {
	case "user", "staff", "admin", "super_admin":
		return true
	}
	return false
}
