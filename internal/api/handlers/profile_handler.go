package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/villageofwisdom/genius-backend/internal/services"
	"github.com/villageofwisdom/genius-backend/internal/utils"
)

type ProfileHandler struct {
	profiles      services.ProfileService
	conversations services.ConversationService
	users         services.UserService
	log           *logrus.Logger
}

func NewProfileHandler(profiles services.ProfileService, conversations services.ConversationService, users services.UserService, log *logrus.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, conversations: conversations, users: users, log: log}
}

type CreateProfileRequest struct {
	StudentName  string `json:"student_name" binding:"required"`
	GradeLevel   string `json:"grade_level" binding:"required"`
	Age          *int   `json:"age"`
	School       string `json:"school"`
	Relationship string `json:"relationship" binding:"required"`
	TeacherEmail string `json:"teacher_email"`
}

// Create opens a new profile and its interview conversation in one call.
func (h *ProfileHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ProfileHandler.Create", "invalid request body", err))
		return
	}

	p, err := h.profiles.Create(c.Request.Context(), userID, services.CreateProfileInput{
		StudentName:  req.StudentName,
		GradeLevel:   req.GradeLevel,
		Age:          req.Age,
		School:       req.School,
		Relationship: req.Relationship,
		TeacherEmail: req.TeacherEmail,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	conv, err := h.conversations.CreateForProfile(c.Request.Context(), p)
	if err != nil {
		writeError(c, err)
		return
	}

	// access-code delivery is an external concern; log in place of mail
	if u, err := h.users.Get(c.Request.Context(), userID); err == nil {
		h.log.WithFields(logrus.Fields{
			"email":        u.Email,
			"student_name": p.StudentName,
			"access_code":  p.AccessCode,
		}).Info("access code issued")
	}

	c.JSON(http.StatusCreated, gin.H{
		"profile":         p,
		"conversation_id": conv.ID.Hex(),
	})
}

func (h *ProfileHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	rows, err := h.profiles.ListByUser(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profiles": rows})
}

func (h *ProfileHandler) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	p, err := h.profiles.GetOwned(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}
