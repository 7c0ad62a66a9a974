package routes

import (
	"context"
	"courtside-server/models"
	"courtside-server/services"
	"courtside-server/storage"
	"courtside-server/utils"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/kataras/iris/v12"
)

const recommendationCacheTTL = 15 * time.Minute

type recommendation struct {
	UserID     uint    `json:"userID"`
	FirstName  string  `json:"firstName"`
	LastName   string  `json:"lastName"`
	AvatarURL  string  `json:"avatarURL"`
	Score      float64 `json:"score"`
	Similarity float64 `json:"similarity"`
	History    float64 `json:"history"`
}

// GetRecommendations returns the requesting user's best-scored partners from
// the materialized relation table, cached in Redis per user.
func GetRecommendations(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	limit := ctx.URLParamIntDefault("limit", 10)
	if limit < 1 || limit > 50 {
		limit = 10
	}

	cacheKey := recommendationCacheKey(userID, limit)
	if cached, err := storage.Redis.Get(context.Background(), cacheKey).Result(); err == nil {
		var recs []recommendation
		if json.Unmarshal([]byte(cached), &recs) == nil {
			ctx.JSON(iris.Map{"success": true, "data": recs, "cached": true})
			return
		}
	}

	var weights []models.PairWeight
	err := storage.DB.Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Order("score DESC, user_a_id ASC, user_b_id ASC").
		Limit(limit).
		Find(&weights).Error
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ids := make([]uint, 0, len(weights))
	for _, w := range weights {
		if w.UserAID == userID {
			ids = append(ids, w.UserBID)
		} else {
			ids = append(ids, w.UserAID)
		}
	}

	users := make(map[uint]models.User, len(ids))
	if len(ids) > 0 {
		var rows []models.User
		if err := storage.DB.Where("id IN ?", ids).Find(&rows).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
		for _, u := range rows {
			users[u.ID] = u
		}
	}

	recs := make([]recommendation, 0, len(weights))
	for i, w := range weights {
		u, ok := users[ids[i]]
		if !ok || !u.IsEnabled() {
			continue
		}
		recs = append(recs, recommendation{
			UserID:     u.ID,
			FirstName:  u.FirstName,
			LastName:   u.LastName,
			AvatarURL:  u.AvatarURL,
			Score:      w.Score,
			Similarity: w.Similarity,
			History:    w.History,
		})
	}

	if payload, marshalErr := json.Marshal(recs); marshalErr == nil {
		storage.Redis.Set(context.Background(), cacheKey, payload, recommendationCacheTTL)
	}

	ctx.JSON(iris.Map{"success": true, "data": recs, "cached": false})
}

// GetPairScore computes the live score between the requester and another
// user, bypassing the materialized table. Useful for inspection.
func GetPairScore(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	otherID, err := strconv.Atoi(ctx.Params().Get("otherID"))
	if err != nil || otherID <= 0 {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid user ID.", ctx)
		return
	}

	pair, scoreErr := services.PairScore(userID, uint(otherID))
	if scoreErr != nil {
		utils.CreateError(iris.StatusBadRequest, "Scoring Error", scoreErr.Error(), ctx)
		return
	}

	ctx.JSON(iris.Map{
		"success":    true,
		"similarity": pair.Similarity,
		"history":    pair.History,
		"alpha":      pair.Alpha,
		"beta":       pair.Beta,
		"score":      pair.Score,
	})
}

// RecomputeRelations triggers a full relation rebuild (admin only)
func RecomputeRelations(ctx iris.Context) {
	services.RecomputeAllRelationsAsync()
	utils.Audit(ctx, "matchmaking.recompute", "pair_weight", 0, nil, nil)
	ctx.StatusCode(iris.StatusAccepted)
	ctx.JSON(iris.Map{"success": true, "message": "Relation rebuild started."})
}

// OptimizeWeights refits per-user blend weights from reservation history
// (admin only)
func OptimizeWeights(ctx iris.Context) {
	fitted, err := services.OptimizeWeights()
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	utils.Audit(ctx, "matchmaking.optimize", "user_weight", 0, nil, iris.Map{"fitted": fitted})
	ctx.JSON(iris.Map{"success": true, "fitted": fitted})
}

// NotifySlot manually runs the candidate selector for one reservation
// (staff and above)
func NotifySlot(ctx iris.Context) {
	id, err := strconv.Atoi(ctx.Params().Get("id"))
	if err != nil || id <= 0 {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid reservation ID.", ctx)
		return
	}

	top := ctx.URLParamIntDefault("top", services.DefaultTopN())
	random := ctx.URLParamIntDefault("random", services.DefaultRandomN())

	result, notifyErr := services.SelectAndNotify(uint(id), top, random)
	if notifyErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Audit(ctx, "matchmaking.notify", "reservation", uint(id), nil,
		iris.Map{"notified": len(result.Notified), "failed": len(result.Failed)})

	ctx.JSON(iris.Map{"success": true, "result": result})
}

func recommendationCacheKey(userID uint, limit int) string {
	return fmt.Sprintf("recommendations:%d:%d", userID, limit)
}
