package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"blogsite/internal/blocks"
	"blogsite/internal/cache"
	"blogsite/internal/logger"
	"blogsite/internal/models"
	"blogsite/internal/repository"
	"blogsite/internal/richtext"

	"go.uber.org/zap"
)

var pageTemplates = map[models.PageType]string{
	models.PageTypeHome:       "home/home_page.html",
	models.PageTypeBlogIndex:  "blogpages/blog_index_page.html",
	models.PageTypeBlogDetail: "blogpages/blog_detail_page.html",
}

type PageService interface {
	Create(ctx context.Context, req models.PageRequest) (*models.Page, error)
	Update(ctx context.Context, id int64, req models.PageRequest) (*models.Page, error)
	Validate(ctx context.Context, req models.PageRequest) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*models.Page, error)
	List(ctx context.Context, f repository.PageFilter) ([]*models.Page, error)
	Publish(ctx context.Context, id int64) (*models.Page, error)
	Unpublish(ctx context.Context, id int64) (*models.Page, error)
	// Preview рендерит страницу в текущем (возможно, неопубликованном) состоянии.
	Preview(ctx context.Context, id int64) (*models.RenderedPage, error)
	// RenderLive отдаёт JSON опубликованной страницы, через кэш.
	RenderLive(ctx context.Context, id int64) ([]byte, error)
	RenderLiveBySlug(ctx context.Context, slug string) ([]byte, error)
	LiveBlogPosts(ctx context.Context, tag string) ([]*models.Page, error)
}

type pageService struct {
	repo     repository.PageRepo
	authors  repository.AuthorRepo
	cache    cache.PageCache
	formats  *richtext.Formats
	renderer *blocks.Renderer
	now      func() time.Time
}

func NewPageService(repo repository.PageRepo, authors repository.AuthorRepo, pc cache.PageCache, formats *richtext.Formats) PageService {
	if pc == nil {
		pc = cache.NopPageCache{}
	}
	s := &pageService{repo: repo, authors: authors, cache: pc, formats: formats, now: time.Now}
	s.renderer = blocks.NewRenderer(pageLookup{s}, func(u blocks.Unit, err error) {
		logger.Log.Warn("Блок пропущен при рендере",
			zap.String("type", string(u.Type())),
			zap.String("block_id", u.ID),
			zap.Error(err),
		)
	})
	return s
}

func pageFromRequest(req models.PageRequest) *models.Page {
	p := &models.Page{
		Type:           req.Type,
		ParentID:       req.ParentID,
		Title:          req.Title,
		Slug:           req.Slug,
		Subtitle:       req.Subtitle,
		BodyHTML:       req.BodyHTML,
		Body:           req.Body,
		CTAURL:         req.CTAURL,
		CTAExternalURL: req.CTAExternalURL,
		GalleryImages:  req.GalleryImages,
		AuthorID:       req.AuthorID,
		Tags:           req.Tags,
		Public:         true,
	}
	if req.Public != nil {
		p.Public = *req.Public
	}
	return p
}

// loadParent: отсутствующий родитель не ошибка, это решает CleanPage.
func (s *pageService) loadParent(ctx context.Context, p *models.Page) (*models.Page, error) {
	if p.ParentID == nil {
		return nil, nil
	}
	parent, err := s.repo.GetByID(ctx, *p.ParentID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return parent, err
}

func (s *pageService) clean(ctx context.Context, p *models.Page) error {
	parent, err := s.loadParent(ctx, p)
	if err != nil {
		return err
	}
	return CleanPage(p, parent)
}

func (s *pageService) Validate(ctx context.Context, req models.PageRequest) error {
	return s.clean(ctx, pageFromRequest(req))
}

func (s *pageService) Create(ctx context.Context, req models.PageRequest) (*models.Page, error) {
	log := logger.WithCtx(ctx)
	log.Info("Создание страницы", zap.String("type", string(req.Type)), zap.String("title", req.Title))

	p := pageFromRequest(req)
	if err := s.clean(ctx, p); err != nil {
		log.Warn("Валидация страницы не пройдена", zap.Error(err))
		return nil, err
	}

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			log.Warn("Slug страницы занят", zap.String("slug", p.Slug))
			return nil, slugConflict(MsgSlugInUse)
		}
		log.Error("Ошибка создания страницы (repo)", zap.Error(err))
		return nil, err
	}

	log.Info("Страница создана", zap.Int64("id", created.ID), zap.String("slug", created.Slug))
	return created, nil
}

// Update не меняет тип и место страницы в дереве.
func (s *pageService) Update(ctx context.Context, id int64, req models.PageRequest) (*models.Page, error) {
	log := logger.WithCtx(ctx)
	log.Info("Обновление страницы", zap.Int64("id", id))

	cur, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.Warn("Страница для обновления не найдена (repo)", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	req.Type = cur.Type
	req.ParentID = cur.ParentID
	if req.Public == nil {
		req.Public = &cur.Public
	}
	p := pageFromRequest(req)
	p.ID = id
	if err := s.clean(ctx, p); err != nil {
		log.Warn("Валидация страницы не пройдена", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	if err := s.repo.Update(ctx, p); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			log.Warn("Slug страницы занят", zap.Int64("id", id), zap.String("slug", p.Slug))
			return nil, slugConflict(MsgSlugInUse)
		}
		log.Error("Ошибка обновления страницы (repo)", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	log.Info("Страница обновлена", zap.Int64("id", id))
	return s.repo.GetByID(ctx, id)
}

func (s *pageService) Delete(ctx context.Context, id int64) error {
	log := logger.WithCtx(ctx)
	log.Info("Удаление страницы", zap.Int64("id", id))

	if err := s.repo.Delete(ctx, id); err != nil {
		log.Warn("Ошибка удаления страницы (repo)", zap.Int64("id", id), zap.Error(err))
		return err
	}
	s.clearCache(ctx)
	return nil
}

func (s *pageService) GetByID(ctx context.Context, id int64) (*models.Page, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *pageService) List(ctx context.Context, f repository.PageFilter) ([]*models.Page, error) {
	return s.repo.List(ctx, f)
}

// Publish заново валидирует сохранённый черновик (он мог быть сохранён до того,
// как связанные страницы удалили) и делает его опубликованной версией.
func (s *pageService) Publish(ctx context.Context, id int64) (*models.Page, error) {
	log := logger.WithCtx(ctx)
	log.Info("Публикация страницы", zap.Int64("id", id))

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.clean(ctx, p); err != nil {
		log.Warn("Страница не прошла валидацию перед публикацией", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	if err := s.repo.Publish(ctx, p, s.now()); err != nil {
		log.Error("Ошибка публикации страницы (repo)", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	s.clearCache(ctx)

	log.Info("Страница опубликована", zap.Int64("id", id))
	return s.repo.GetByID(ctx, id)
}

func (s *pageService) Unpublish(ctx context.Context, id int64) (*models.Page, error) {
	log := logger.WithCtx(ctx)
	log.Info("Снятие страницы с публикации", zap.Int64("id", id))

	if err := s.repo.Unpublish(ctx, id); err != nil {
		log.Warn("Ошибка снятия с публикации (repo)", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	s.clearCache(ctx)
	return s.repo.GetByID(ctx, id)
}

// clearCache: ошибка кэша не отменяет уже выполненную запись.
func (s *pageService) clearCache(ctx context.Context) {
	if err := s.cache.Clear(ctx); err != nil {
		logger.WithCtx(ctx).Error("Не удалось очистить кэш страниц", zap.Error(err))
		return
	}
	logger.WithCtx(ctx).Debug("Кэш страниц очищен")
}

func (s *pageService) Preview(ctx context.Context, id int64) (*models.RenderedPage, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, p)
}

func (s *pageService) RenderLive(ctx context.Context, id int64) ([]byte, error) {
	return s.cached(ctx, cache.PageKey(id), func() (*models.Page, error) {
		return s.repo.GetLive(ctx, id)
	})
}

func (s *pageService) RenderLiveBySlug(ctx context.Context, slug string) ([]byte, error) {
	return s.cached(ctx, cache.SlugKey(slug), func() (*models.Page, error) {
		return s.repo.GetLiveBySlug(ctx, slug)
	})
}

func (s *pageService) cached(ctx context.Context, key string, load func() (*models.Page, error)) ([]byte, error) {
	log := logger.WithCtx(ctx)

	buf, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		log.Warn("Ошибка чтения кэша страниц", zap.String("key", key), zap.Error(err))
	}
	if ok {
		log.Debug("Страница из кэша", zap.String("key", key))
		return buf, nil
	}

	p, err := load()
	if err != nil {
		return nil, err
	}
	if !p.Public {
		return nil, ErrNotFound
	}

	rendered, err := s.render(ctx, p)
	if err != nil {
		log.Error("Ошибка рендера страницы", zap.Int64("id", p.ID), zap.Error(err))
		return nil, err
	}
	buf, err = json.Marshal(rendered)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, buf); err != nil {
		log.Warn("Ошибка записи кэша страниц", zap.String("key", key), zap.Error(err))
	}
	return buf, nil
}

func (s *pageService) render(ctx context.Context, p *models.Page) (*models.RenderedPage, error) {
	out := &models.RenderedPage{Page: p, Template: pageTemplates[p.Type], Blocks: []blocks.Rendered{}}

	switch p.Type {
	case models.PageTypeHome, models.PageTypeBlogIndex:
		html, err := s.formats.ExpandEmbeds(p.BodyHTML)
		if err != nil {
			return nil, fmt.Errorf("page %d body_html: %w", p.ID, err)
		}
		out.BodyHTML = html
	}

	if p.Type == models.PageTypeBlogIndex {
		children, err := s.repo.List(ctx, repository.PageFilter{
			Type: models.PageTypeBlogDetail, ParentID: &p.ID, LiveOnly: true, PublicOnly: true,
		})
		if err != nil {
			return nil, err
		}
		out.Children = make([]blocks.PageInfo, 0, len(children))
		for _, c := range children {
			out.Children = append(out.Children, toPageInfo(c))
		}
	}

	if p.Type == models.PageTypeBlogDetail {
		rendered, err := s.renderer.Render(ctx, p.Body, map[string]any{"page": toPageInfo(p)})
		if err != nil {
			return nil, err
		}
		out.Blocks = rendered

		if p.AuthorID != nil {
			a, err := s.authors.GetLive(ctx, *p.AuthorID)
			switch {
			case errors.Is(err, repository.ErrNotFound):
			case err != nil:
				return nil, err
			default:
				out.Author = a
			}
		}
	}
	return out, nil
}

func (s *pageService) LiveBlogPosts(ctx context.Context, tag string) ([]*models.Page, error) {
	return s.repo.List(ctx, repository.PageFilter{
		Type: models.PageTypeBlogDetail, Tag: tag, LiveOnly: true, PublicOnly: true,
	})
}

func toPageInfo(p *models.Page) blocks.PageInfo {
	return blocks.PageInfo{ID: p.ID, Title: p.Title, Slug: p.Slug, URL: "/" + p.Slug + "/"}
}

var _ blocks.Pages = pageLookup{}

// pageLookup отдаёт блокам данные о страницах при рендере.
type pageLookup struct{ s *pageService }

// PageInfo берёт опубликованную версию, а для неопубликованной страницы черновик.
func (l pageLookup) PageInfo(ctx context.Context, id int64) (*blocks.PageInfo, error) {
	p, err := l.s.repo.GetLive(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		p, err = l.s.repo.GetByID(ctx, id)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, blocks.ErrPageNotFound
	}
	if err != nil {
		return nil, err
	}
	info := toPageInfo(p)
	return &info, nil
}

func (l pageLookup) LiveBlogPosts(ctx context.Context) ([]blocks.PageInfo, error) {
	posts, err := l.s.LiveBlogPosts(ctx, "")
	if err != nil {
		return nil, err
	}
	out := make([]blocks.PageInfo, 0, len(posts))
	for _, p := range posts {
		out = append(out, toPageInfo(p))
	}
	return out, nil
}
