package models

// Localized maps a language code ("ru", "en") to text.
type Localized map[string]string

type AboutContent struct {
	Name     Localized `json:"name" binding:"required"`
	Username string    `json:"username"`
	Title    Localized `json:"title"`
	Bio      Localized `json:"bio"`
	Photo    string    `json:"photo"`
	Stats    []Stat    `json:"stats"`
}

type Stat struct {
	Value Localized `json:"value"`
	Label Localized `json:"label"`
	Icon  string    `json:"icon"`
	Color string    `json:"color"`
}

type Project struct {
	ID          string       `json:"id" binding:"required"`
	Title       string       `json:"title" binding:"required"`
	Description Localized    `json:"description"`
	Image       string       `json:"image"`
	Tags        []string     `json:"tags"`
	Links       ProjectLinks `json:"links"`
	Featured    bool         `json:"featured"`
	Order       int          `json:"order"`
}

type ProjectLinks struct {
	Github string `json:"github,omitempty"`
	Demo   string `json:"demo,omitempty"`
}

type Skill struct {
	ID    string `json:"id" binding:"required"`
	Name  string `json:"name" binding:"required"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

type SkillCategory struct {
	ID     string    `json:"id" binding:"required"`
	Title  Localized `json:"title"`
	Skills []Skill   `json:"skills" binding:"dive"`
	Badge  Localized `json:"badge,omitempty"`
	Order  int       `json:"order"`
}

type Contact struct {
	ID    string    `json:"id" binding:"required"`
	Type  string    `json:"type"`
	Label Localized `json:"label"`
	Value string    `json:"value"`
	Link  string    `json:"link"`
	Icon  string    `json:"icon"`
	Color string    `json:"color"`
	Order int       `json:"order"`
}

type SiteContent struct {
	About    AboutContent    `json:"about"`
	Projects []Project       `json:"projects"`
	Skills   []SkillCategory `json:"skills"`
	Contacts []Contact       `json:"contacts"`
}
