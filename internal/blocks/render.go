package blocks

import (
	"context"
	"errors"
	"fmt"
)

// ErrPageNotFound возвращает Pages, если страница по id не найдена.
var ErrPageNotFound = errors.New("page not found")

// PageInfo — то, что блокам нужно знать о странице.
type PageInfo struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
	URL   string `json:"url"`
}

// Pages — чтение страниц для контекста рендера.
type Pages interface {
	PageInfo(ctx context.Context, id int64) (*PageInfo, error)
	LiveBlogPosts(ctx context.Context) ([]PageInfo, error)
}

type Rendered struct {
	Type     Type           `json:"type"`
	ID       string         `json:"id"`
	Template string         `json:"template"`
	Value    Value          `json:"value"`
	Context  map[string]any `json:"context,omitempty"`
}

// SkipFunc получает блоки, которые не удалось отрендерить.
type SkipFunc func(u Unit, err error)

type Renderer struct {
	pages  Pages
	onSkip SkipFunc
}

func NewRenderer(pages Pages, onSkip SkipFunc) *Renderer {
	return &Renderer{pages: pages, onSkip: onSkip}
}

// Render считает контекст для каждого блока. Если CTA ссылается на удалённую
// страницу, блок выпадает из вывода, а onSkip получает ошибку; прочие ошибки прерывают рендер.
func (r *Renderer) Render(ctx context.Context, s Stream, parent map[string]any) ([]Rendered, error) {
	out := make([]Rendered, 0, len(s))
	for _, u := range s {
		def, ok := Lookup(u.Type())
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrUnknownBlockType, u.Type())
		}
		item := Rendered{Type: def.Type, ID: u.ID, Template: def.Template, Value: u.Value}
		if def.context != nil {
			c, err := def.context(ctx, r.pages, u.Value, parent)
			if errors.Is(err, ErrPageNotFound) {
				if r.onSkip != nil {
					r.onSkip(u, err)
				}
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("render %s %s: %w", def.Type, u.ID, err)
			}
			item.Context = c
		}
		out = append(out, item)
	}
	return out, nil
}

func copyContext(parent map[string]any) map[string]any {
	out := make(map[string]any, len(parent)+1)
	for k, v := range parent {
		out[k] = v
	}
	return out
}

// ButtonCopy — текст кнопки CTA: свой текст или «Go to <заголовок страницы>».
func ButtonCopy(buttonText, pageTitle string) string {
	if buttonText != "" {
		return buttonText
	}
	return "Go to " + pageTitle
}

func callToActionContext(ctx context.Context, pages Pages, v Value, parent map[string]any) (map[string]any, error) {
	cta := v.(CallToAction)
	page, err := pages.PageInfo(ctx, int64(cta.Page))
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, ErrPageNotFound
	}
	out := copyContext(parent)
	out["page"] = page
	out["button_copy"] = ButtonCopy(cta.ButtonText, page.Title)
	return out, nil
}

// imageContext каждый раз заново читает живые публичные посты, без кеша.
func imageContext(ctx context.Context, pages Pages, _ Value, parent map[string]any) (map[string]any, error) {
	posts, err := pages.LiveBlogPosts(ctx)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []PageInfo{}
	}
	out := copyContext(parent)
	out["blog_posts"] = posts
	return out, nil
}
