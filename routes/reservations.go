package routes

import (
	"courtside-server/models"
	"courtside-server/services"
	"courtside-server/storage"
	"courtside-server/utils"
	"log"
	"strings"
	"time"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

const reservationConfirmWindow = 30 * time.Minute

// CreateReservation books a (court, date, slot) triple. The creator joins the
// roster automatically and the slot starts in the reserved state with a
// confirmation deadline.
func CreateReservation(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var req CreateReservationInput
	err := ctx.ReadJSON(&req)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	date, dateErr := time.Parse("2006-01-02", req.Date)
	if dateErr != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Date must be YYYY-MM-DD.", ctx)
		return
	}
	if date.Before(time.Now().Truncate(24 * time.Hour)) {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Cannot book a past date.", ctx)
		return
	}

	var court models.Court
	if err := storage.DB.Where("is_active = ?", true).First(&court, req.CourtID).Error; err != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Court not found.", ctx)
		return
	}
	var schedule models.Schedule
	if err := storage.DB.Where("is_active = ?", true).First(&schedule, req.ScheduleID).Error; err != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Schedule slot not found.", ctx)
		return
	}

	reservation := models.Reservation{
		CourtID:     req.CourtID,
		Date:        date,
		ScheduleID:  req.ScheduleID,
		Status:      models.ReservationReserved,
		CreatedByID: claims.ID,
		Note:        req.Note,
		ExpiresAt:   time.Now().Add(reservationConfirmWindow),
	}

	if err := storage.DB.Create(&reservation).Error; err != nil {
		// Partial unique index over active slots turns a double booking into
		// a constraint violation
		if strings.Contains(err.Error(), "idx_court_date_slot") || strings.Contains(err.Error(), "duplicate key") {
			utils.CreateError(iris.StatusConflict, "Slot Taken", "This court is already booked for that slot.", ctx)
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}

	player := models.ReservationPlayer{ReservationID: reservation.ID, UserID: claims.ID}
	if err := storage.DB.Create(&player).Error; err != nil {
		log.Printf("reservations: creator roster insert failed: %v", err)
	}

	services.ScheduleReservationReminder(reservation.ID)
	go notifyCandidates(reservation.ID)

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"success": true, "data": reservation})
}

// GetReservations lists reservations, filterable by date and court
func GetReservations(ctx iris.Context) {
	query := storage.DB.Preload("Court").Preload("Schedule").Preload("Players")

	if date := ctx.URLParam("date"); date != "" {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			utils.CreateError(iris.StatusBadRequest, "Validation Error", "Date must be YYYY-MM-DD.", ctx)
			return
		}
		query = query.Where("date = ?", parsed)
	}
	if courtID := ctx.URLParam("courtID"); courtID != "" {
		query = query.Where("court_id = ?", courtID)
	}
	if status := ctx.URLParam("status"); status != "" {
		query = query.Where("status = ?", status)
	} else {
		query = query.Where("status IN ?", []string{models.ReservationReserved, models.ReservationConfirmed})
	}

	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("perPage", 20)
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	var total int64
	query.Model(&models.Reservation{}).Count(&total)

	var reservations []models.Reservation
	err := query.Order("date ASC, schedule_id ASC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&reservations).Error
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.JSONPage(ctx, reservations, page, perPage, total)
}

func GetReservation(ctx iris.Context) {
	params := ctx.Params()
	id := params.Get("id")

	var reservation models.Reservation
	found := storage.DB.Preload("Court").Preload("Schedule").Preload("Players.User").Preload("CreatedBy").
		Where("id = ?", id).Limit(1).Find(&reservation)
	if found.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if found.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	ctx.JSON(reservation)
}

// GetUserReservations lists the slots a user plays in
func GetUserReservations(ctx iris.Context) {
	params := ctx.Params()
	id := params.Get("id")

	var reservations []models.Reservation
	err := storage.DB.Preload("Court").Preload("Schedule").
		Joins("JOIN reservation_players rp ON rp.reservation_id = reservations.id AND rp.deleted_at IS NULL").
		Where("rp.user_id = ?", id).
		Order("date DESC").
		Find(&reservations).Error
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "data": reservations, "count": len(reservations)})
}

// JoinReservation adds the requesting user to an active slot's roster
func JoinReservation(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	params := ctx.Params()
	id := params.Get("id")

	var reservation models.Reservation
	found := storage.DB.Preload("Court").Preload("Players").Where("id = ?", id).Limit(1).Find(&reservation)
	if found.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if found.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	if !reservation.Active() {
		utils.CreateError(iris.StatusConflict, "Slot Closed", "This reservation is no longer open.", ctx)
		return
	}

	capacity := 4
	if reservation.Court != nil && reservation.Court.Capacity > 0 {
		capacity = reservation.Court.Capacity
	}
	if len(reservation.Players) >= capacity {
		utils.CreateError(iris.StatusConflict, "Slot Full", "This reservation already has a full roster.", ctx)
		return
	}

	player := models.ReservationPlayer{ReservationID: reservation.ID, UserID: claims.ID}
	if err := storage.DB.Create(&player).Error; err != nil {
		// Unique (reservation, user) pair makes a double join a no-op
		if strings.Contains(err.Error(), "idx_reservation_user") || strings.Contains(err.Error(), "duplicate key") {
			ctx.JSON(iris.Map{"success": true, "joined": false, "message": "Already on the roster."})
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}

	go notifyCandidates(reservation.ID)

	ctx.JSON(iris.Map{"success": true, "joined": true})
}

// LeaveReservation removes the requesting user from the roster
func LeaveReservation(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	params := ctx.Params()
	id := params.Get("id")

	result := storage.DB.Where("reservation_id = ? AND user_id = ?", id, claims.ID).
		Delete(&models.ReservationPlayer{})
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

// ConfirmReservation flips a reserved slot to confirmed (staff and above)
func ConfirmReservation(ctx iris.Context) {
	params := ctx.Params()
	id := params.Get("id")

	var reservation models.Reservation
	found := storage.DB.Where("id = ?", id).Limit(1).Find(&reservation)
	if found.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if found.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	if reservation.Status != models.ReservationReserved {
		utils.CreateError(iris.StatusConflict, "Invalid Transition",
			"Only reserved slots can be confirmed; current status is "+reservation.Status+".", ctx)
		return
	}

	if err := storage.DB.Model(&reservation).Update("status", models.ReservationConfirmed).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Audit(ctx, "reservation.confirm", "reservation", reservation.ID, iris.Map{"status": models.ReservationReserved}, iris.Map{"status": models.ReservationConfirmed})

	ctx.JSON(iris.Map{"success": true, "status": models.ReservationConfirmed})
}

// CancelReservation cancels a slot. Only the creator or staff may cancel.
func CancelReservation(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	params := ctx.Params()
	id := params.Get("id")

	var reservation models.Reservation
	found := storage.DB.Where("id = ?", id).Limit(1).Find(&reservation)
	if found.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if found.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	isStaff := claims.Role == "staff" || claims.Role == "admin" || claims.Role == "super_admin"
	if reservation.CreatedByID != claims.ID && !isStaff {
		utils.CreateError(iris.StatusForbidden, "Forbidden", "Only the creator or staff can cancel a reservation.", ctx)
		return
	}

	if !reservation.Active() {
		utils.CreateError(iris.StatusConflict, "Invalid Transition",
			"Only active slots can be cancelled; current status is "+reservation.Status+".", ctx)
		return
	}

	previous := reservation.Status
	if err := storage.DB.Model(&reservation).Update("status", models.ReservationCancelled).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	services.CancelReservationReminder(reservation.ID)
	utils.Audit(ctx, "reservation.cancel", "reservation", reservation.ID, iris.Map{"status": previous}, iris.Map{"status": models.ReservationCancelled})

	ctx.JSON(iris.Map{"success": true, "status": models.ReservationCancelled})
}

// notifyCandidates fans out match invitations for a slot in the background.
// Trigger counts and the cooldown window keep this safe to call after every
// roster change.
func notifyCandidates(reservationID uint) {
	result, err := services.SelectAndNotify(reservationID, services.DefaultTopN(), services.DefaultRandomN())
	if err != nil {
		log.Printf("reservations: candidate fan-out for slot %d failed: %v", reservationID, err)
		return
	}
	if result.Skipped != "" {
		log.Printf("reservations: slot %d fan-out skipped: %s", reservationID, result.Skipped)
	}
}

type CreateReservationInput struct {
	CourtID    uint   `json:"courtID" validate:"required"`
	Date       string `json:"date" validate:"required"`
	ScheduleID uint   `json:"scheduleID" validate:"required"`
	Note       string `json:"note" validate:"max=512"`
}
