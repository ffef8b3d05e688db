package projects

import "time"

type Category string

const (
	CategoryWeb      Category = "web"
	CategoryAI       Category = "ai"
	CategoryMobile   Category = "mobile"
	CategoryDesktop  Category = "desktop"
	CategoryGame     Category = "game"
	CategoryEmbedded Category = "embedded"
	CategoryOther    Category = "other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryWeb, CategoryAI, CategoryMobile, CategoryDesktop, CategoryGame, CategoryEmbedded, CategoryOther:
		return true
	}
	return false
}

// Image holds the derived variants of one uploaded picture. The composite is
// all-or-nothing: either both encodings exist or the project has no image.
// The raw original is discarded after transcoding; only its byte length is kept.
type Image struct {
	OriginalSize         int
	Optimized            []byte
	OptimizedContentType string
	OptimizedSize        int
	Thumbnail            []byte
}

// Project is a single portfolio entry. Image bytes are never serialized
// inline; handlers expose them through the byte-serving endpoints instead.
type Project struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	Category    Category  `json:"category"`
	Featured    bool      `json:"featured"`
	GitHub      string    `json:"github,omitempty"`
	Live        string    `json:"live,omitempty"`
	Image       *Image    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (p *Project) HasImage() bool {
	return p.Image != nil && len(p.Image.Optimized) > 0 && len(p.Image.Thumbnail) > 0
}

// ImageRef is the outbound representation of a project image: stable URLs
// plus size metadata, never the bytes themselves.
type ImageRef struct {
	URL           string `json:"url"`
	ThumbnailURL  string `json:"thumbnailUrl"`
	ContentType   string `json:"contentType"`
	OriginalSize  int    `json:"originalSize"`
	OptimizedSize int    `json:"optimizedSize"`
}

// View is the outbound shape of a project record.
type View struct {
	Project
	Image *ImageRef `json:"image"`
}

type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
	Limit int `json:"limit"`
}

// Page is one page of listing results plus its pagination metadata.
type Page struct {
	Data       []View     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// ListFilter narrows a listing query. Nil pointer fields mean "no filter".
type ListFilter struct {
	Featured *bool
	Category *Category
	Search   string
}
