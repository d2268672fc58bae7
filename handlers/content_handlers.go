package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"portfolio/api/models"
	"portfolio/api/store"
)

type ContentHandlers struct {
	ContentStore *store.ContentStore
	Logger       *zap.Logger
}

func NewContentHandlers(s *store.ContentStore, logger *zap.Logger) *ContentHandlers {
	return &ContentHandlers{ContentStore: s, Logger: logger}
}

func (h *ContentHandlers) GetAll(c *gin.Context) {
	c.JSON(http.StatusOK, h.ContentStore.GetAll())
}

func (h *ContentHandlers) GetAbout(c *gin.Context) {
	c.JSON(http.StatusOK, h.ContentStore.GetAbout())
}

func (h *ContentHandlers) GetProjects(c *gin.Context) {
	c.JSON(http.StatusOK, h.ContentStore.GetProjects())
}

func (h *ContentHandlers) GetSkills(c *gin.Context) {
	c.JSON(http.StatusOK, h.ContentStore.GetSkills())
}

func (h *ContentHandlers) GetContacts(c *gin.Context) {
	c.JSON(http.StatusOK, h.ContentStore.GetContacts())
}

func (h *ContentHandlers) UpdateAbout(c *gin.Context) {
	var about models.AboutContent
	if !h.bind(c, &about) {
		return
	}
	h.save(c, "about", about, h.ContentStore.UpdateAbout(about))
}

func (h *ContentHandlers) UpdateProjects(c *gin.Context) {
	var projects []models.Project
	if !h.bind(c, &projects) {
		return
	}
	h.save(c, "projects", projects, h.ContentStore.UpdateProjects(projects))
}

func (h *ContentHandlers) UpdateSkills(c *gin.Context) {
	var skills []models.SkillCategory
	if !h.bind(c, &skills) {
		return
	}
	h.save(c, "skills", skills, h.ContentStore.UpdateSkills(skills))
}

func (h *ContentHandlers) UpdateContacts(c *gin.Context) {
	var contacts []models.Contact
	if !h.bind(c, &contacts) {
		return
	}
	h.save(c, "contacts", contacts, h.ContentStore.UpdateContacts(contacts))
}

func (h *ContentHandlers) bind(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return false
	}
	return true
}

func (h *ContentHandlers) save(c *gin.Context, section string, body any, err error) {
	if err != nil {
		h.Logger.Error("failed to save content", zap.String("section", section), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save content"})
		return
	}
	h.Logger.Info("content updated", zap.String("section", section))
	c.JSON(http.StatusOK, body)
}
