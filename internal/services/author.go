package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"blogsite/internal/blocks"
	"blogsite/internal/cache"
	"blogsite/internal/logger"
	"blogsite/internal/models"
	"blogsite/internal/repository"
	"blogsite/internal/reqctx"

	"go.uber.org/zap"
)

const (
	MsgExpireInPast   = "Expiry date/time must be in the future."
	MsgGoLiveAfterExp = "Go live date/time must be before expiry date/time."
)

// PreviewMode — режим предпросмотра сниппета. Пустое имя — режим по умолчанию.
type PreviewMode struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Template string `json:"-"`
}

var authorPreviewModes = []PreviewMode{
	{Name: "", Label: "Default", Template: "blogpages/author_preview.html"},
	{Name: "dark", Label: "Dark mode", Template: "blogpages/author_preview_dark.html"},
}

type AuthorService interface {
	Create(ctx context.Context, req models.AuthorRequest) (*models.Author, error)
	Update(ctx context.Context, id int64, req models.AuthorRequest) (*models.Author, error)
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*models.Author, error)
	GetLive(ctx context.Context, id int64) (*models.Author, error)
	List(ctx context.Context, liveOnly bool) ([]*models.Author, error)
	Publish(ctx context.Context, id int64) (*models.Author, error)
	Unpublish(ctx context.Context, id int64) (*models.Author, error)
	Lock(ctx context.Context, id int64, editor string) (*models.Author, error)
	Unlock(ctx context.Context, id int64, editor string) (*models.Author, error)
	PreviewModes() []PreviewMode
	Preview(ctx context.Context, id int64, mode string) (*models.AuthorPreview, error)
	// ApplySchedule публикует запланированных через Publish авторов, у которых
	// наступил go_live_at, и снимает тех, у кого истёк expire_at.
	ApplySchedule(ctx context.Context) (published, expired []int64, err error)
}

type authorService struct {
	repo  repository.AuthorRepo
	cache cache.PageCache
	now   func() time.Time
}

func NewAuthorService(repo repository.AuthorRepo, pc cache.PageCache) AuthorService {
	if pc == nil {
		pc = cache.NopPageCache{}
	}
	return &authorService{repo: repo, cache: pc, now: time.Now}
}

func (s *authorService) clean(req models.AuthorRequest) (*models.Author, error) {
	errs := &blocks.StructuredValidationError{}

	a := &models.Author{
		Name:     strings.TrimSpace(req.Name),
		Bio:      strings.TrimSpace(req.Bio),
		GoLiveAt: req.GoLiveAt,
		ExpireAt: req.ExpireAt,
	}
	if required(errs, "name", a.Name) {
		maxLength(errs, "name", a.Name, titleMaxLength)
	}
	if a.ExpireAt != nil && !a.ExpireAt.After(s.now()) {
		errs.Add("expire_at", &blocks.FieldValidationError{Message: MsgExpireInPast})
	}
	if a.GoLiveAt != nil && a.ExpireAt != nil && !a.GoLiveAt.Before(*a.ExpireAt) {
		errs.Add("go_live_at", &blocks.FieldValidationError{Message: MsgGoLiveAfterExp})
	}
	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}
	return a, nil
}

// checkLock: заблокированный сниппет может менять только тот, кто его заблокировал.
func checkLock(ctx context.Context, a *models.Author) error {
	if !a.Locked {
		return nil
	}
	editor, _ := reqctx.GetEditor(ctx)
	if a.LockedBy != nil && *a.LockedBy == editor {
		return nil
	}
	return ErrLocked
}

func (s *authorService) Create(ctx context.Context, req models.AuthorRequest) (*models.Author, error) {
	log := logger.WithCtx(ctx)
	log.Info("Создание автора", zap.String("name", req.Name))

	a, err := s.clean(req)
	if err != nil {
		log.Warn("Валидация автора не пройдена", zap.Error(err))
		return nil, err
	}

	created, err := s.repo.Create(ctx, a)
	if err != nil {
		log.Error("Ошибка создания автора (repo)", zap.Error(err))
		return nil, err
	}
	log.Info("Автор создан (черновик)", zap.Int64("id", created.ID))
	return created, nil
}

func (s *authorService) Update(ctx context.Context, id int64, req models.AuthorRequest) (*models.Author, error) {
	log := logger.WithCtx(ctx)
	log.Info("Обновление автора", zap.Int64("id", id))

	cur, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkLock(ctx, cur); err != nil {
		log.Warn("Автор заблокирован другим редактором", zap.Int64("id", id), zap.Stringp("locked_by", cur.LockedBy))
		return nil, err
	}

	a, err := s.clean(req)
	if err != nil {
		log.Warn("Валидация автора не пройдена", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	a.ID = id

	if err := s.repo.Update(ctx, a); err != nil {
		log.Error("Ошибка обновления автора (repo)", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *authorService) Delete(ctx context.Context, id int64) error {
	log := logger.WithCtx(ctx)
	log.Info("Удаление автора", zap.Int64("id", id))

	cur, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := checkLock(ctx, cur); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		log.Error("Ошибка удаления автора (repo)", zap.Int64("id", id), zap.Error(err))
		return err
	}
	s.clearCache(ctx)
	return nil
}

func (s *authorService) GetByID(ctx context.Context, id int64) (*models.Author, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *authorService) GetLive(ctx context.Context, id int64) (*models.Author, error) {
	return s.repo.GetLive(ctx, id)
}

func (s *authorService) List(ctx context.Context, liveOnly bool) ([]*models.Author, error) {
	return s.repo.List(ctx, liveOnly)
}

// Publish с go_live_at в будущем ставит текущий черновик в расписание;
// опубликует его ApplySchedule.
func (s *authorService) Publish(ctx context.Context, id int64) (*models.Author, error) {
	log := logger.WithCtx(ctx)

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkLock(ctx, a); err != nil {
		return nil, err
	}
	now := s.now()
	if a.GoLiveAt != nil && a.GoLiveAt.After(now) {
		if err := s.repo.Schedule(ctx, a); err != nil {
			log.Error("Ошибка планирования публикации автора (repo)", zap.Int64("id", id), zap.Error(err))
			return nil, err
		}
		log.Info("Публикация автора запланирована", zap.Int64("id", id), zap.Time("go_live_at", *a.GoLiveAt))
		return s.repo.GetByID(ctx, id)
	}
	if err := s.repo.Publish(ctx, a, now); err != nil {
		log.Error("Ошибка публикации автора (repo)", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	s.clearCache(ctx)

	log.Info("Автор опубликован", zap.Int64("id", id))
	return s.repo.GetByID(ctx, id)
}

func (s *authorService) Unpublish(ctx context.Context, id int64) (*models.Author, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkLock(ctx, a); err != nil {
		return nil, err
	}
	if err := s.repo.Unpublish(ctx, id); err != nil {
		return nil, err
	}
	s.clearCache(ctx)

	logger.WithCtx(ctx).Info("Автор снят с публикации", zap.Int64("id", id))
	return s.repo.GetByID(ctx, id)
}

func (s *authorService) Lock(ctx context.Context, id int64, editor string) (*models.Author, error) {
	log := logger.WithCtx(ctx)
	editor = strings.TrimSpace(editor)
	if editor == "" {
		errs := &blocks.StructuredValidationError{}
		errs.Add("editor", &blocks.FieldValidationError{Message: blocks.MsgRequired})
		return nil, errs
	}

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Locked && (a.LockedBy == nil || *a.LockedBy != editor) {
		log.Warn("Автор уже заблокирован", zap.Int64("id", id), zap.Stringp("locked_by", a.LockedBy))
		return nil, ErrLocked
	}
	if err := s.repo.SetLock(ctx, id, &editor, s.now()); err != nil {
		return nil, err
	}

	log.Info("Автор заблокирован", zap.Int64("id", id), zap.String("editor", editor))
	return s.repo.GetByID(ctx, id)
}

func (s *authorService) Unlock(ctx context.Context, id int64, editor string) (*models.Author, error) {
	log := logger.WithCtx(ctx)

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.Locked {
		return a, nil
	}
	if a.LockedBy != nil && *a.LockedBy != strings.TrimSpace(editor) {
		log.Warn("Снять блокировку может только её владелец", zap.Int64("id", id), zap.Stringp("locked_by", a.LockedBy))
		return nil, ErrLocked
	}
	if err := s.repo.SetLock(ctx, id, nil, s.now()); err != nil {
		return nil, err
	}

	log.Info("Блокировка автора снята", zap.Int64("id", id))
	return s.repo.GetByID(ctx, id)
}

func (s *authorService) PreviewModes() []PreviewMode {
	return append([]PreviewMode(nil), authorPreviewModes...)
}

func (s *authorService) Preview(ctx context.Context, id int64, mode string) (*models.AuthorPreview, error) {
	var tmpl string
	for _, m := range authorPreviewModes {
		if m.Name == mode {
			tmpl = m.Template
			break
		}
	}
	if tmpl == "" {
		return nil, ErrInvalidPreviewMode
	}

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.AuthorPreview{Mode: mode, Template: tmpl, Author: a}, nil
}

func (s *authorService) ApplySchedule(ctx context.Context) ([]int64, []int64, error) {
	log := logger.WithCtx(ctx)
	now := s.now()

	due, err := s.repo.DueForPublish(ctx, now)
	if err != nil {
		return nil, nil, err
	}
	var published []int64
	for _, id := range due {
		if err := s.repo.PublishScheduled(ctx, id, now); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return published, nil, err
		}
		published = append(published, id)
	}

	expired, err := s.repo.ExpireDue(ctx, now)
	if err != nil {
		return published, nil, err
	}

	if len(published) > 0 || len(expired) > 0 {
		log.Info("Расписание авторов применено",
			zap.Int64s("published", published),
			zap.Int64s("expired", expired),
		)
		s.clearCache(ctx)
	}
	return published, expired, nil
}

func (s *authorService) clearCache(ctx context.Context) {
	if err := s.cache.Clear(ctx); err != nil {
		logger.WithCtx(ctx).Error("Не удалось очистить кэш страниц", zap.Error(err))
	}
}
