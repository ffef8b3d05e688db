package projects

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/devfolio/portfolio-backend/internal/images"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// Variant selects which derived encoding to serve.
type Variant string

const (
	VariantFull      Variant = "full"
	VariantThumbnail Variant = "thumbnail"
)

// Store is the durable persistence contract the service orchestrates over.
type Store interface {
	Insert(ctx context.Context, p *Project) error
	Get(ctx context.Context, id string) (*Project, error)
	Update(ctx context.Context, p *Project) error
	Delete(ctx context.Context, id string) (*Project, error)
	List(ctx context.Context, f ListFilter, page, limit int) ([]Project, int, error)
}

// Service orchestrates validation, transcoding, persistence and caching.
// The cache is optional; a nil cache disables it without changing results.
type Service struct {
	store      Store
	cache      Cache
	transcoder *images.Transcoder
}

func NewService(store Store, cache Cache, transcoder *images.Transcoder) *Service {
	return &Service{store: store, cache: cache, transcoder: transcoder}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*View, error) {
	in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &Project{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Tags:        in.Tags,
		Category:    Category(in.Category),
		Featured:    in.Featured,
		GitHub:      in.GitHub,
		Live:        in.Live,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// Transcoding must succeed before anything is persisted; a project is
	// never committed with a half-built image composite.
	if len(in.RawImage) > 0 {
		img, err := s.transcodeImage(in.RawImage)
		if err != nil {
			return nil, err
		}
		p.Image = img
	}

	if err := s.store.Insert(ctx, p); err != nil {
		return nil, err
	}

	s.invalidate(ctx, p.ID)
	return s.view(p), nil
}

func (s *Service) Get(ctx context.Context, id string) (*View, bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, false, ErrNotFound
	}

	if s.cache != nil {
		if v, ok := s.cache.GetRecord(ctx, id); ok {
			return v, true, nil
		}
	}

	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}

	v := s.view(p)
	if s.cache != nil {
		s.cache.SetRecord(ctx, id, v)
	}
	return v, false, nil
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*View, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}

	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Tags != nil {
		p.Tags = in.Tags
	}
	if in.Category != nil {
		p.Category = Category(*in.Category)
	}
	if in.Featured != nil {
		p.Featured = *in.Featured
	}
	if in.GitHub != nil {
		p.GitHub = *in.GitHub
	}
	if in.Live != nil {
		p.Live = *in.Live
	}

	switch {
	case len(in.RawImage) > 0:
		// New upload replaces the whole composite; old variants are discarded.
		img, err := s.transcodeImage(in.RawImage)
		if err != nil {
			return nil, err
		}
		p.Image = img
	case in.RemoveImage:
		p.Image = nil
	}

	p.UpdatedAt = time.Now().UTC()

	if err := s.store.Update(ctx, p); err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	return s.view(p), nil
}

func (s *Service) Delete(ctx context.Context, id string) (*View, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	p, err := s.store.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	return s.view(p), nil
}

func (s *Service) List(ctx context.Context, f ListFilter, page, limit int) (*Page, bool, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	if s.cache != nil {
		if cached, ok := s.cache.GetList(ctx, f, page, limit); ok {
			return cached, true, nil
		}
	}

	records, total, err := s.store.List(ctx, f, page, limit)
	if err != nil {
		return nil, false, err
	}

	views := make([]View, 0, len(records))
	for i := range records {
		views = append(views, *s.view(&records[i]))
	}

	result := &Page{
		Data: views,
		Pagination: Pagination{
			Total: total,
			Page:  page,
			Pages: (total + limit - 1) / limit,
			Limit: limit,
		},
	}

	// Write-through is best-effort; the response is built from the store
	// either way.
	if s.cache != nil {
		s.cache.SetList(ctx, f, page, limit, result)
	}
	return result, false, nil
}

// Image returns the raw bytes of the requested variant plus its content type.
func (s *Service) Image(ctx context.Context, id string, variant Variant) ([]byte, string, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, "", ErrNotFound
	}

	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if !p.HasImage() {
		return nil, "", ErrNotFound
	}

	if variant == VariantThumbnail {
		return p.Image.Thumbnail, "image/jpeg", nil
	}
	return p.Image.Optimized, p.Image.OptimizedContentType, nil
}

func (s *Service) transcodeImage(raw []byte) (*Image, error) {
	res, err := s.transcoder.Transcode(raw)
	if err != nil {
		return nil, fmt.Errorf("transcode image: %w", err)
	}
	return &Image{
		OriginalSize:         res.OriginalSize,
		Optimized:            res.Optimized,
		OptimizedContentType: res.OptimizedContentType,
		OptimizedSize:        res.OptimizedSize,
		Thumbnail:            res.Thumbnail,
	}, nil
}

func (s *Service) invalidate(ctx context.Context, id string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, id)
	}
}

// view shapes a record for the outbound representation: image bytes are
// replaced by stable URL references.
func (s *Service) view(p *Project) *View {
	v := &View{Project: *p}
	if p.HasImage() {
		v.Image = &ImageRef{
			URL:           fmt.Sprintf("/api/projects/%s/image", p.ID),
			ThumbnailURL:  fmt.Sprintf("/api/projects/%s/image/thumbnail", p.ID),
			ContentType:   p.Image.OptimizedContentType,
			OriginalSize:  p.Image.OriginalSize,
			OptimizedSize: p.Image.OptimizedSize,
		}
	}
	v.Project.Image = nil
	return v
}
