package content

import (
	"path"
	"strings"
	"time"
)

// Module is one uploaded content unit inside a course. content_url and
// file_type are pure functions of ContentPath and are never stored; they are
// attached to the JSON view at read time.
type Module struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	CourseID    string    `json:"course_id" gorm:"column:course_id;not null;index"`
	Title       string    `json:"title" gorm:"column:title;not null"`
	ContentPath string    `json:"content_path" gorm:"column:content_path;not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"column:updated_at;default:now()"`

	ContentURL string `json:"content_url" gorm:"-"`
	FileType   string `json:"file_type" gorm:"-"`
}

func (Module) TableName() string {
	return "modules"
}

// DefaultTitle is used when a module upload carries a file but no title.
const DefaultTitle = "Untitled Module"

var fileTypes = map[string]string{
	"pdf":  "pdf",
	"doc":  "document",
	"docx": "document",
	"ppt":  "presentation",
	"pptx": "presentation",
	"mp4":  "video",
	"mp3":  "audio",
	"txt":  "text",
}

// FileType classifies a content path by extension. Unknown extensions fall
// back to the generic "file" bucket.
func FileType(contentPath string) string {
	if contentPath == "" {
		return ""
	}
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(contentPath)), ".")
	if t, ok := fileTypes[ext]; ok {
		return t
	}
	return "file"
}

// ContentURL joins the public storage base with the stored relative path.
func ContentURL(baseURL, contentPath string) string {
	if contentPath == "" {
		return ""
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(contentPath, "/")
}

// Decorate fills the derived attributes on a module view.
func (m *Module) Decorate(baseURL string) {
	m.ContentURL = ContentURL(baseURL, m.ContentPath)
	m.FileType = FileType(m.ContentPath)
}
