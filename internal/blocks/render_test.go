package blocks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePages struct {
	pages      map[int64]PageInfo
	posts      []PageInfo
	postsCalls int
	postsErr   error
}

func (f *fakePages) PageInfo(_ context.Context, id int64) (*PageInfo, error) {
	p, ok := f.pages[id]
	if !ok {
		return nil, ErrPageNotFound
	}
	return &p, nil
}

func (f *fakePages) LiveBlogPosts(_ context.Context) ([]PageInfo, error) {
	f.postsCalls++
	return f.posts, f.postsErr
}

func TestButtonCopy(t *testing.T) {
	assert.Equal(t, "Go to About", ButtonCopy("", "About"))
	assert.Equal(t, "Click", ButtonCopy("Click", "About"))
}

func TestRenderer_CallToAction(t *testing.T) {
	pages := &fakePages{pages: map[int64]PageInfo{3: {ID: 3, Title: "About", Slug: "about"}}}
	r := NewRenderer(pages, nil)

	out, err := r.Render(context.Background(), Stream{
		{ID: "a", Value: CallToAction{Text: "<p>x</p>", Page: 3}},
		{ID: "b", Value: CallToAction{Text: "<p>x</p>", Page: 3, ButtonText: "Click"}},
	}, map[string]any{"site": "blog"})
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "Go to About", out[0].Context["button_copy"])
	assert.Equal(t, "Click", out[1].Context["button_copy"])
	assert.Equal(t, "blog", out[0].Context["site"])
	assert.Equal(t, "blocks/call_to_action_1.html", out[0].Template)
}

func TestRenderer_CallToActionMissingPageSkipsBlock(t *testing.T) {
	var skipped []string
	r := NewRenderer(&fakePages{}, func(u Unit, err error) {
		assert.ErrorIs(t, err, ErrPageNotFound)
		skipped = append(skipped, u.ID)
	})

	out, err := r.Render(context.Background(), Stream{
		{ID: "cta", Value: CallToAction{Text: "<p>x</p>", Page: 99}},
		{ID: "txt", Value: Text("hello")},
	}, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "txt", out[0].ID)
	assert.Equal(t, []string{"cta"}, skipped)
}

func TestRenderer_ImageInjectsLivePostsEachTime(t *testing.T) {
	pages := &fakePages{posts: []PageInfo{{ID: 10, Title: "First"}}}
	r := NewRenderer(pages, nil)

	out, err := r.Render(context.Background(), Stream{
		{ID: "i1", Value: ImageRef(1)},
		{ID: "i2", Value: ImageRef(2)},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, pages.postsCalls)
	assert.Equal(t, []PageInfo{{ID: 10, Title: "First"}}, out[0].Context["blog_posts"])
}

func TestRenderer_ImageNoPosts(t *testing.T) {
	r := NewRenderer(&fakePages{}, nil)

	out, err := r.Render(context.Background(), Stream{{ID: "i1", Value: ImageRef(1)}}, nil)
	require.NoError(t, err)
	assert.Equal(t, []PageInfo{}, out[0].Context["blog_posts"])
}

func TestRenderer_QueryErrorFails(t *testing.T) {
	r := NewRenderer(&fakePages{postsErr: errors.New("db down")}, nil)

	_, err := r.Render(context.Background(), Stream{{ID: "i1", Value: ImageRef(1)}}, nil)
	assert.ErrorContains(t, err, "db down")
}

func TestRenderer_PlainBlocksHaveNoContext(t *testing.T) {
	r := NewRenderer(&fakePages{}, nil)

	out, err := r.Render(context.Background(), Stream{{ID: "t", Value: Text("hello")}, {ID: "i", Value: Info{}}}, nil)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Nil(t, out[0].Context)
	assert.Equal(t, "blocks/info_block.html", out[1].Template)
}
