package routes

import (
	"courtside-server/models"
	"courtside-server/storage"
	"courtside-server/utils"
	"strings"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

// CreateReview lets a player rate someone they actually played with. The
// reservation must be confirmed or completed and hold both users on its
// roster; the (author, subject, reservation) triple is unique.
func CreateReview(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var req CreateReviewInput
	err := ctx.ReadJSON(&req)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if req.SubjectID == claims.ID {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "You cannot review yourself.", ctx)
		return
	}

	var reservation models.Reservation
	found := storage.DB.Where("id = ?", req.ReservationID).Limit(1).Find(&reservation)
	if found.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if found.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}
	if reservation.Status != models.ReservationConfirmed && reservation.Status != models.ReservationCompleted {
		utils.CreateError(iris.StatusConflict, "Not Reviewable", "Reviews are only allowed after a confirmed game.", ctx)
		return
	}

	var rosterCount int64
	storage.DB.Model(&models.ReservationPlayer{}).
		Where("reservation_id = ? AND user_id IN ?", req.ReservationID, []uint{claims.ID, req.SubjectID}).
		Count(&rosterCount)
	if rosterCount != 2 {
		utils.CreateError(iris.StatusForbidden, "Not Reviewable", "Both players must be on the reservation roster.", ctx)
		return
	}

	review := models.Review{
		AuthorID:      claims.ID,
		SubjectID:     req.SubjectID,
		ReservationID: req.ReservationID,
		Stars:         req.Stars,
		Body:          req.Body,
		IsVisible:     true,
	}

	if err := storage.DB.Create(&review).Error; err != nil {
		if strings.Contains(err.Error(), "idx_review_triple") || strings.Contains(err.Error(), "duplicate key") {
			utils.CreateError(iris.StatusConflict, "Already Reviewed", "You already reviewed this player for this game.", ctx)
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}

	refreshRatingCache(req.SubjectID)

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"success": true, "data": review})
}

// GetUserReviews returns visible reviews about a user
func GetUserReviews(ctx iris.Context) {
	params := ctx.Params()
	id := params.Get("id")

	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("perPage", 20)
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	query := storage.DB.Model(&models.Review{}).Where("subject_id = ? AND is_visible = ?", id, true)

	var total int64
	query.Count(&total)

	var reviews []models.Review
	err := query.Preload("Author").
		Order("created_at DESC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&reviews).Error
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.JSONPage(ctx, reviews, page, perPage, total)
}

// DeleteReview removes a review. Authors delete their own; admins any.
func DeleteReview(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	params := ctx.Params()
	id := params.Get("id")

	var review models.Review
	found := storage.DB.Where("id = ?", id).Limit(1).Find(&review)
	if found.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if found.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	isAdmin := claims.Role == "admin" || claims.Role == "super_admin"
	if review.AuthorID != claims.ID && !isAdmin {
		utils.CreateError(iris.StatusForbidden, "Forbidden", "You can only delete your own reviews.", ctx)
		return
	}

	if err := storage.DB.Delete(&review).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	refreshRatingCache(review.SubjectID)

	ctx.StatusCode(iris.StatusNoContent)
}

// refreshRatingCache recomputes the denormalized rating columns on the user
// row from the visible reviews.
func refreshRatingCache(subjectID uint) {
	type agg struct {
		Avg   float64
		Count int64
	}
	var a agg
	storage.DB.Model(&models.Review{}).
		Select("COALESCE(AVG(stars), 0) AS avg, COUNT(*) AS count").
		Where("subject_id = ? AND is_visible = ?", subjectID, true).
		Scan(&a)

	storage.DB.Model(&models.User{}).Where("id = ?", subjectID).
		Updates(map[string]interface{}{"rating_avg": a.Avg, "rating_count": a.Count})
}

type CreateReviewInput struct {
	SubjectID     uint   `json:"subjectID" validate:"required"`
	ReservationID uint   `json:"reservationID" validate:"required"`
	Stars         int    `json:"stars" validate:"required,min=1,max=5"`
	Body          string `json:"body" validate:"max=2000"`
}
