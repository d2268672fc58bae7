// api/store/content_store.go
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	"portfolio/api/models"
)

// ContentStore serves the site content from a JSON file. Updates are
// written to disk before they become visible to readers.
type ContentStore struct {
	mu       sync.RWMutex
	filePath string
	content  models.SiteContent
	logger   *zap.Logger
}

func NewContentStore(filePath string, logger *zap.Logger) (*ContentStore, error) {
	s := &ContentStore{filePath: filePath, logger: logger}

	data, err := os.ReadFile(filePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logger.Info("content file missing, writing defaults", zap.String("path", filePath))
		s.content = DefaultContent()
		if err := s.write(s.content); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("failed to read content file: %w", err)
	default:
		if err := json.Unmarshal(data, &s.content); err != nil {
			return nil, fmt.Errorf("failed to decode content file %s: %w", filePath, err)
		}
	}
	return s, nil
}

func (s *ContentStore) write(content models.SiteContent) error {
	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode content: %w", err)
	}
	return writeFileAtomic(s.filePath, data)
}

// update applies mutate to a copy and swaps it in only if the save succeeds.
func (s *ContentStore) update(mutate func(*models.SiteContent)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.content
	mutate(&next)
	if err := s.write(next); err != nil {
		return err
	}
	s.content = next
	return nil
}

func (s *ContentStore) GetAll() models.SiteContent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := s.content
	c.Projects = append([]models.Project(nil), c.Projects...)
	c.Skills = append([]models.SkillCategory(nil), c.Skills...)
	c.Contacts = append([]models.Contact(nil), c.Contacts...)
	return c
}

func (s *ContentStore) GetAbout() models.AboutContent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.content.About
}

func (s *ContentStore) UpdateAbout(about models.AboutContent) error {
	return s.update(func(c *models.SiteContent) { c.About = about })
}

func (s *ContentStore) GetProjects() []models.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Project(nil), s.content.Projects...)
}

func (s *ContentStore) UpdateProjects(projects []models.Project) error {
	return s.update(func(c *models.SiteContent) { c.Projects = projects })
}

func (s *ContentStore) GetSkills() []models.SkillCategory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.SkillCategory(nil), s.content.Skills...)
}

func (s *ContentStore) UpdateSkills(skills []models.SkillCategory) error {
	return s.update(func(c *models.SiteContent) { c.Skills = skills })
}

func (s *ContentStore) GetContacts() []models.Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Contact(nil), s.content.Contacts...)
}

func (s *ContentStore) UpdateContacts(contacts []models.Contact) error {
	return s.update(func(c *models.SiteContent) { c.Contacts = contacts })
}

func DefaultContent() models.SiteContent {
	return models.SiteContent{
		About: models.AboutContent{
			Name:     models.Localized{"ru": "Георгий", "en": "Georgy"},
			Username: "@Kyureno",
			Title:    models.Localized{"ru": "Full-stack разработчик", "en": "Full-stack developer"},
			Bio: models.Localized{
				"ru": "Full-stack разработчик: TypeScript, React, Next.js на фронтенде, Go, Python и Node.js на бэкенде.",
				"en": "Full-stack developer: TypeScript, React and Next.js on the frontend, Go, Python and Node.js on the backend.",
			},
			Photo: "/logo.png",
			Stats: []models.Stat{
				{Value: models.Localized{"ru": "4+ лет", "en": "4+ years"}, Label: models.Localized{"ru": "в разработке", "en": "in development"}, Icon: "calendar", Color: "#3178C6"},
				{Value: models.Localized{"ru": "10+", "en": "10+"}, Label: models.Localized{"ru": "проектов", "en": "projects"}, Icon: "rocket", Color: "#8B5CF6"},
			},
		},
		Projects: []models.Project{
			{
				ID:          "portfolio",
				Title:       "Portfolio v3",
				Description: models.Localized{"ru": "Персональный сайт-портфолио", "en": "Personal portfolio website"},
				Image:       "/portfolio.jpg",
				Tags:        []string{"Next.js", "TypeScript", "Tailwind", "Go"},
				Links:       models.ProjectLinks{Github: "https://github.com/Kyureno2374/portfolio-v3"},
				Featured:    true,
				Order:       1,
			},
		},
		Skills: []models.SkillCategory{
			{
				ID:    "backend",
				Title: models.Localized{"ru": "Backend", "en": "Backend"},
				Skills: []models.Skill{
					{ID: "go", Name: "Go", Icon: "SiGo", Color: "#00ADD8"},
					{ID: "postgresql", Name: "PostgreSQL", Icon: "SiPostgresql", Color: "#4169E1"},
				},
				Order: 1,
			},
		},
		Contacts: []models.Contact{
			{ID: "telegram", Type: "social", Label: models.Localized{"ru": "Telegram", "en": "Telegram"}, Value: "@kyurenodev", Link: "https://t.me/kyurenodev", Icon: "FaTelegram", Color: "#0088cc", Order: 1},
			{ID: "github", Type: "social", Label: models.Localized{"ru": "GitHub", "en": "GitHub"}, Value: "Kyureno2374", Link: "https://github.com/Kyureno2374", Icon: "FaGithub", Color: "#333", Order: 2},
		},
	}
}
