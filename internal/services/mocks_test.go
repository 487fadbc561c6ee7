package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"blogsite/internal/models"
	"blogsite/internal/repository"
)

// Мок-репозиторий страниц в памяти. live хранит опубликованные снимки;
// для страниц фикстуры с Live снимок делается сразу.
type mockPageRepo struct {
	mu     sync.Mutex
	pages  map[int64]*models.Page
	live   map[int64]*models.Page
	nextID int64
	gets   int
}

func newMockPageRepo(pages ...*models.Page) *mockPageRepo {
	m := &mockPageRepo{pages: map[int64]*models.Page{}, live: map[int64]*models.Page{}}
	for _, p := range pages {
		m.pages[p.ID] = p
		if p.Live {
			m.live[p.ID] = clonePage(p)
		}
		if p.ID > m.nextID {
			m.nextID = p.ID
		}
	}
	return m
}

func clonePage(p *models.Page) *models.Page {
	c := *p
	return &c
}

// slugTaken повторяет UNIQUE (parent_id, slug).
func (m *mockPageRepo) slugTaken(p *models.Page) bool {
	for id, o := range m.pages {
		if id == p.ID || o.Slug != p.Slug {
			continue
		}
		if (o.ParentID == nil) == (p.ParentID == nil) && (o.ParentID == nil || *o.ParentID == *p.ParentID) {
			return true
		}
	}
	return false
}

func (m *mockPageRepo) Create(_ context.Context, p *models.Page) (*models.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.slugTaken(p) {
		return nil, repository.ErrConflict
	}
	m.nextID++
	c := clonePage(p)
	c.ID = m.nextID
	m.pages[c.ID] = c
	return clonePage(c), nil
}

func (m *mockPageRepo) Update(_ context.Context, p *models.Page) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.pages[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if m.slugTaken(p) {
		return repository.ErrConflict
	}
	c := clonePage(p)
	c.Live = cur.Live
	c.HasUnpublishedChanges = true
	m.pages[p.ID] = c
	return nil
}

func (m *mockPageRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.pages[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.pages, id)
	delete(m.live, id)
	return nil
}

func (m *mockPageRepo) GetByID(_ context.Context, id int64) (*models.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	p, ok := m.pages[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clonePage(p), nil
}

func (m *mockPageRepo) liveView(p *models.Page) *models.Page {
	snap, ok := m.live[p.ID]
	if !ok {
		return clonePage(p)
	}
	c := clonePage(snap)
	c.ID, c.Type, c.ParentID = p.ID, p.Type, p.ParentID
	c.Live, c.Public, c.HasUnpublishedChanges = p.Live, p.Public, p.HasUnpublishedChanges
	c.FirstPublishedAt, c.LastPublishedAt = p.FirstPublishedAt, p.LastPublishedAt
	return c
}

func (m *mockPageRepo) GetLive(_ context.Context, id int64) (*models.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	p, ok := m.pages[id]
	if !ok || !p.Live {
		return nil, repository.ErrNotFound
	}
	return m.liveView(p), nil
}

func (m *mockPageRepo) GetLiveBySlug(_ context.Context, slug string) (*models.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.pages {
		if !p.Live {
			continue
		}
		if v := m.liveView(p); v.Slug == slug {
			return v, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockPageRepo) List(_ context.Context, f repository.PageFilter) ([]*models.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Page
	for _, p := range m.pages {
		if f.LiveOnly && p.Live {
			p = m.liveView(p)
		}
		if f.Type != "" && p.Type != f.Type {
			continue
		}
		if f.ParentID != nil && (p.ParentID == nil || *p.ParentID != *f.ParentID) {
			continue
		}
		if f.LiveOnly && !p.Live {
			continue
		}
		if f.PublicOnly && !p.Public {
			continue
		}
		if f.Tag != "" && !hasTag(p.Tags, f.Tag) {
			continue
		}
		out = append(out, clonePage(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func (m *mockPageRepo) Publish(_ context.Context, p *models.Page, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.pages[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	cur.Live = true
	cur.HasUnpublishedChanges = false
	cur.LastPublishedAt = &at
	m.live[p.ID] = clonePage(p)
	return nil
}

func (m *mockPageRepo) Unpublish(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pages[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Live = false
	p.HasUnpublishedChanges = true
	delete(m.live, id)
	return nil
}

// Мок-репозиторий авторов: live и scheduled хранят снимки.
type mockAuthorRepo struct {
	mu        sync.Mutex
	authors   map[int64]*models.Author
	live      map[int64]*models.Author
	scheduled map[int64]*models.Author
	nextID    int64
}

func newMockAuthorRepo(authors ...*models.Author) *mockAuthorRepo {
	m := &mockAuthorRepo{
		authors:   map[int64]*models.Author{},
		live:      map[int64]*models.Author{},
		scheduled: map[int64]*models.Author{},
	}
	for _, a := range authors {
		m.authors[a.ID] = a
		if a.Live {
			m.live[a.ID] = cloneAuthor(a)
		}
		if a.ID > m.nextID {
			m.nextID = a.ID
		}
	}
	return m
}

func cloneAuthor(a *models.Author) *models.Author {
	c := *a
	return &c
}

func (m *mockAuthorRepo) Create(_ context.Context, a *models.Author) (*models.Author, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	c := cloneAuthor(a)
	c.ID = m.nextID
	m.authors[c.ID] = c
	return cloneAuthor(c), nil
}

func (m *mockAuthorRepo) Update(_ context.Context, a *models.Author) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.authors[a.ID]
	if !ok {
		return repository.ErrNotFound
	}
	cur.Name, cur.Bio, cur.GoLiveAt, cur.ExpireAt = a.Name, a.Bio, a.GoLiveAt, a.ExpireAt
	cur.HasUnpublishedChanges = true
	return nil
}

func (m *mockAuthorRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.authors[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.authors, id)
	delete(m.live, id)
	delete(m.scheduled, id)
	return nil
}

func (m *mockAuthorRepo) GetByID(_ context.Context, id int64) (*models.Author, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.authors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneAuthor(a), nil
}

func (m *mockAuthorRepo) liveView(a *models.Author) *models.Author {
	c := cloneAuthor(a)
	if snap, ok := m.live[a.ID]; ok {
		c.Name, c.Bio = snap.Name, snap.Bio
	}
	return c
}

func (m *mockAuthorRepo) GetLive(_ context.Context, id int64) (*models.Author, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.authors[id]
	if !ok || !a.Live {
		return nil, repository.ErrNotFound
	}
	return m.liveView(a), nil
}

func (m *mockAuthorRepo) List(_ context.Context, liveOnly bool) ([]*models.Author, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Author
	for _, a := range m.authors {
		if liveOnly {
			if !a.Live {
				continue
			}
			out = append(out, m.liveView(a))
			continue
		}
		out = append(out, cloneAuthor(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockAuthorRepo) setLive(a *models.Author, snap *models.Author, at time.Time) {
	m.live[a.ID] = snap
	delete(m.scheduled, a.ID)
	a.Live, a.Expired, a.Scheduled = true, false, false
	a.HasUnpublishedChanges = snap.Name != a.Name || snap.Bio != a.Bio
	a.LastPublishedAt = &at
	a.GoLiveAt = nil
}

func (m *mockAuthorRepo) Publish(_ context.Context, a *models.Author, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.authors[a.ID]
	if !ok {
		return repository.ErrNotFound
	}
	m.setLive(cur, cloneAuthor(a), at)
	return nil
}

func (m *mockAuthorRepo) Unpublish(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.authors[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.Live, a.Scheduled, a.HasUnpublishedChanges = false, false, true
	delete(m.live, id)
	delete(m.scheduled, id)
	return nil
}

func (m *mockAuthorRepo) Schedule(_ context.Context, a *models.Author) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.authors[a.ID]
	if !ok {
		return repository.ErrNotFound
	}
	m.scheduled[a.ID] = cloneAuthor(a)
	cur.Scheduled = true
	return nil
}

func (m *mockAuthorRepo) PublishScheduled(_ context.Context, id int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.authors[id]
	snap, scheduled := m.scheduled[id]
	if !ok || !scheduled {
		return repository.ErrNotFound
	}
	m.setLive(a, snap, at)
	return nil
}

func (m *mockAuthorRepo) SetLock(_ context.Context, id int64, lockedBy *string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.authors[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.Locked = lockedBy != nil
	a.LockedBy = lockedBy
	a.LockedAt = nil
	if lockedBy != nil {
		a.LockedAt = &at
	}
	return nil
}

func (m *mockAuthorRepo) DueForPublish(_ context.Context, now time.Time) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []int64
	for id, snap := range m.scheduled {
		if snap.GoLiveAt != nil && !snap.GoLiveAt.After(now) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (m *mockAuthorRepo) ExpireDue(_ context.Context, now time.Time) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []int64
	for id, a := range m.authors {
		if a.Live && a.ExpireAt != nil && !a.ExpireAt.After(now) {
			a.Live = false
			a.Expired = true
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// Мок-репозиторий тегов
type mockTagRepo struct {
	tags   map[int64]models.Tag
	nextID int64
}

func (m *mockTagRepo) slugTaken(slug string, except int64) bool {
	for id, t := range m.tags {
		if t.Slug == slug && id != except {
			return true
		}
	}
	return false
}

func (m *mockTagRepo) Create(_ context.Context, t *models.Tag) (int64, error) {
	if m.slugTaken(t.Slug, 0) {
		return 0, repository.ErrConflict
	}
	m.nextID++
	c := *t
	c.ID = m.nextID
	m.tags[c.ID] = c
	return c.ID, nil
}

func (m *mockTagRepo) Update(_ context.Context, t *models.Tag) error {
	if _, ok := m.tags[t.ID]; !ok {
		return repository.ErrNotFound
	}
	if m.slugTaken(t.Slug, t.ID) {
		return repository.ErrConflict
	}
	m.tags[t.ID] = *t
	return nil
}

func (m *mockTagRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.tags[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.tags, id)
	return nil
}

func (m *mockTagRepo) GetByID(_ context.Context, id int64) (*models.Tag, error) {
	t, ok := m.tags[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (m *mockTagRepo) Search(_ context.Context, q string) ([]models.Tag, error) {
	var out []models.Tag
	for _, t := range m.tags {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Мок-кэш страниц
type mockCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	clears  int
	failGet error
}

func newMockCache() *mockCache { return &mockCache{data: map[string][]byte{}} }

func (c *mockCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet != nil {
		return nil, false, c.failGet
	}
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *mockCache) Set(_ context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *mockCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = map[string][]byte{}
	c.clears++
	return nil
}
