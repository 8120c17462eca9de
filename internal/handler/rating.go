package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pr-poehali-dev/client-support-chat-2/internal/access"
	"github.com/pr-poehali-dev/client-support-chat-2/internal/model"
)

// listRatings открыт любому сотруднику: оператор смотрит свои оценки,
// ОКК и админ — чьи угодно через ?operator=.
func (a *API) listRatings(c *gin.Context) {
	claims := a.requireEmployee(c)
	if claims == nil {
		return
	}
	operator := c.Query("operator")
	if operator == "" && !access.HasAccess(claims.Roles, access.SectionQCRatings) {
		operator = claims.Name
	}
	items, err := a.ratings.Ratings(c.Request.Context(), operator)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ratings": items})
}

type createRatingRequest struct {
	Action       string `json:"action"`
	ChatID       uint64 `json:"chatId" binding:"required"`
	OperatorName string `json:"operatorName"`
	Category     string `json:"category"`
	Score        int    `json:"score" binding:"required"`
	Comment      string `json:"comment"`
}

func (a *API) createRating(c *gin.Context) {
	claims := a.requireAccess(c, access.SectionQCRatings)
	if claims == nil {
		return
	}
	var req createRatingRequest
	if !a.bind(c, &req) {
		return
	}
	rating := &model.Rating{
		ChatID:       req.ChatID,
		OperatorName: req.OperatorName,
		Category:     req.Category,
		Score:        req.Score,
		Comment:      req.Comment,
		RatedBy:      claims.Name,
	}
	if err := a.ratings.Create(c.Request.Context(), rating); err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, rating)
}

type archiveRatingRequest struct {
	Action   string `json:"action"`
	RatingID uint64 `json:"ratingId" binding:"required"`
}

func (a *API) archiveRating(c *gin.Context) {
	if a.requireAccess(c, access.SectionQCArchive) == nil {
		return
	}
	var req archiveRatingRequest
	if !a.bind(c, &req) {
		return
	}
	rating, err := a.ratings.Archive(c.Request.Context(), req.RatingID)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "rating": rating})
}

func (a *API) qcArchive(c *gin.Context) {
	if a.requireAccess(c, access.SectionQCArchive) == nil {
		return
	}
	items, err := a.ratings.QCArchive(c.Request.Context())
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"qcArchive": items})
}
