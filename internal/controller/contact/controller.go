// Package contact provides HTTP handlers for support messages sent from the contact form.
package contact

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sachin-security/sachin-security-sub000/internal/controller"
	"github.com/sachin-security/sachin-security-sub000/internal/database"
	"github.com/sachin-security/sachin-security-sub000/internal/model"
	"github.com/sachin-security/sachin-security-sub000/internal/utilities"
)

const msgMessageNotFound = "Message not found"

var supportFilters = controller.FilterSpec{
	Exact:  map[string]string{"status": "status"},
	Search: []string{"subject"},
}

// ContactController handles support message endpoints
type ContactController struct {
	DB database.Store
}

// NewContactController creates a new instance of ContactController
func NewContactController(db database.Store) *ContactController {
	return &ContactController{
		DB: db,
	}
}

func (cc *ContactController) messages() database.Collection {
	return cc.DB.Collection(model.CollectionSupport)
}

// SubmitMessageHandler stores a contact form message with status New.
// @Summary Send a support message
// @Tags Contact
// @Accept json
// @Produce json
// @Param Message body model.SupportDetails true "Contact form"
// @Success 201 {object} utilities.Envelope{data=model.SupportMessage} "Message sent"
// @Failure 400 {object} utilities.Envelope "Missing or invalid fields"
// @Failure 500 {object} utilities.Envelope "Database error"
// @Router /contact [post]
func (cc *ContactController) SubmitMessageHandler(c *gin.Context) {
	var details model.SupportDetails
	if err := utilities.BindJSON(c, &details); err != nil {
		utilities.RespondError(c, err)
		return
	}

	ctx := c.Request.Context()
	seq, err := cc.DB.NextSequence(ctx, model.SupportSequence.Collection)
	if err != nil {
		utilities.RespondError(c, utilities.Unhandled(err))
		return
	}

	now := controller.Now()
	msg := model.SupportMessage{
		ID:             model.SupportSequence.Format(seq),
		SupportDetails: details,
		Status:         model.SupportNew,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	msg.StorageID, err = cc.messages().Insert(ctx, msg)
	if err != nil {
		utilities.RespondError(c, utilities.FromStore(err, "", "Message id already exists"))
		return
	}

	c.JSON(http.StatusCreated, utilities.Envelope{
		Success: true,
		Data:    msg,
		Message: "Message sent successfully",
	})
}

// ListMessagesHandler returns support messages, newest first.
// @Summary List support messages
// @Tags Contact
// @Produce json
// @Param status query string false "New, InProgress or Resolved"
// @Param search query string false "Subject, case insensitive substring"
// @Success 200 {object} utilities.Envelope{data=[]model.SupportMessage} "Messages"
// @Failure 401 {object} utilities.Envelope "Unauthorized"
// @Failure 500 {object} utilities.Envelope "Database error"
// @Router /contact [get]
func (cc *ContactController) ListMessagesHandler(c *gin.Context) {
	var messages []model.SupportMessage
	err := cc.messages().Find(c.Request.Context(), database.Query{
		Filters: controller.Filters(c, supportFilters),
		SortBy:  "createdAt",
	}, &messages)
	if err != nil {
		utilities.RespondError(c, utilities.Unhandled(err))
		return
	}
	utilities.RespondList(c, messages)
}

// GetMessageHandler returns one support message by id.
// @Summary Get support message
// @Tags Contact
// @Produce json
// @Param id path string true "Message id, e.g. MSG0001"
// @Success 200 {object} utilities.Envelope{data=model.SupportMessage} "Message"
// @Failure 401 {object} utilities.Envelope "Unauthorized"
// @Failure 404 {object} utilities.Envelope "Message not found"
// @Router /contact/{id} [get]
func (cc *ContactController) GetMessageHandler(c *gin.Context) {
	var msg model.SupportMessage
	if err := cc.messages().FindOne(c.Request.Context(), database.ByID(c.Param("id")), &msg); err != nil {
		utilities.RespondError(c, utilities.FromStore(err, msgMessageNotFound, ""))
		return
	}
	utilities.RespondData(c, http.StatusOK, msg)
}

// UpdateMessageStatusHandler moves a support message between New, InProgress and Resolved.
// @Summary Update support message status
// @Tags Contact
// @Accept json
// @Produce json
// @Param Status body model.SupportStatusUpdate true "Message id and new status"
// @Success 200 {object} utilities.Envelope "Status updated"
// @Failure 400 {object} utilities.Envelope "Missing id or invalid status"
// @Failure 401 {object} utilities.Envelope "Unauthorized"
// @Failure 404 {object} utilities.Envelope "Message not found"
// @Router /contact [patch]
func (cc *ContactController) UpdateMessageStatusHandler(c *gin.Context) {
	var update model.SupportStatusUpdate
	if err := utilities.BindJSON(c, &update); err != nil {
		utilities.RespondError(c, err)
		return
	}

	err := cc.messages().Update(c.Request.Context(), database.ByID(update.ID), map[string]any{
		"status":    string(update.Status),
		"updatedAt": controller.Now(),
	})
	if err != nil {
		utilities.RespondError(c, utilities.FromStore(err, msgMessageNotFound, ""))
		return
	}
	utilities.RespondMessage(c, http.StatusOK, "Message status updated successfully")
}
