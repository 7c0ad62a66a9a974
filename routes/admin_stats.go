package routes

import (
	"courtside-server/models"
	"courtside-server/storage"
	"time"

	"github.com/kataras/iris/v12"
)

// GET /admin/stats
func AdminStats(ctx iris.Context) {
	var totalUsers, enabledUsers int64
	storage.DB.Model(&models.User{}).Count(&totalUsers)
	storage.DB.Model(&models.User{}).Where("enabled = ?", true).Count(&enabledUsers)

	statusCounts := map[string]int64{}
	for _, status := range []string{
		models.ReservationReserved, models.ReservationConfirmed,
		models.ReservationCancelled, models.ReservationExpired, models.ReservationCompleted,
	} {
		var n int64
		storage.DB.Model(&models.Reservation{}).Where("status = ?", status).Count(&n)
		statusCounts[status] = n
	}

	var notifSent, notifFailed int64
	storage.DB.Model(&models.NotificationLog{}).Where("status = ?", models.NotificationSent).Count(&notifSent)
	storage.DB.Model(&models.NotificationLog{}).Where("status = ?", models.NotificationFailed).Count(&notifFailed)

	var pairRows int64
	storage.DB.Model(&models.PairWeight{}).Count(&pairRows)
	var fittedUsers int64
	storage.DB.Model(&models.UserWeight{}).Count(&fittedUsers)

	since7 := time.Now().AddDate(0, 0, -7)
	since30 := time.Now().AddDate(0, 0, -30)
	var newRes7, newRes30 int64
	storage.DB.Model(&models.Reservation{}).Where("created_at >= ?", since7).Count(&newRes7)
	storage.DB.Model(&models.Reservation{}).Where("created_at >= ?", since30).Count(&newRes30)

	ctx.JSON(iris.Map{
		"data": iris.Map{
			"total_users":          totalUsers,
			"enabled_users":        enabledUsers,
			"reservations":         statusCounts,
			"notifications_sent":   notifSent,
			"notifications_failed": notifFailed,
			"pair_relations":       pairRows,
			"fitted_users":         fittedUsers,
			"new_reservations_7d":  newRes7,
			"new_reservations_30d": newRes30,
		},
		"meta":  iris.Map{},
		"links": iris.Map{},
	})
}

// GET /admin/activity
func AdminActivity(ctx iris.Context) {
	var logs []models.AuditLog
	storage.DB.Order("created_at DESC").Limit(100).Find(&logs)
	ctx.JSON(iris.Map{"data": logs, "meta": iris.Map{}, "links": iris.Map{}})
}
