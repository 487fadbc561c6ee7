package richtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainText(t *testing.T) {
	assert.Equal(t, "has WordPress in it", PlainText("<p>has <b>WordPress</b> in it</p>"))
	assert.Equal(t, "a & b", PlainText("<p>a &amp; b</p>"))
	assert.Equal(t, "", PlainText("<p></p>"))
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, IsEmpty(""))
	assert.True(t, IsEmpty("<p> </p>"))
	assert.False(t, IsEmpty("<p>x</p>"))
	assert.False(t, IsEmpty(`<p><embed embedtype="image" id="1" format="thumbnail" alt=""/></p>`))
}

func TestPolicy_SanitizeBoldItalicOnly(t *testing.T) {
	p := NewPolicy(FeatureBold, FeatureItalic)

	got := p.Sanitize(`<p><b>bold</b> <i>it</i> <a href="https://example.com">link</a></p>`)
	assert.Equal(t, "<p><b>bold</b> <i>it</i> link</p>", got)
	assert.Equal(t, []Feature{FeatureBold, FeatureItalic}, p.Features())
}

func TestPolicy_DefaultFeaturesKeepLinks(t *testing.T) {
	p := NewPolicy()

	got := p.Sanitize(`<p><a href="https://example.com">link</a></p>`)
	assert.Contains(t, got, `href="https://example.com"`)
	assert.Equal(t, DefaultFeatures, p.Features())
}

func TestFormats_Default(t *testing.T) {
	f := DefaultFormats()

	thumb, ok := f.Get("thumbnail")
	require.True(t, ok)
	assert.Equal(t, "richtext-image thumbnail-150", thumb.Label)
	assert.Equal(t, "fill-150x150", thumb.Classname)
	assert.Equal(t, "width-150", thumb.FilterSpec)
	assert.Len(t, f.List(), 1)
}

func TestFormats_ExpandEmbeds(t *testing.T) {
	f := DefaultFormats()

	got, err := f.ExpandEmbeds(`<p>before</p><embed embedtype="image" id="7" format="thumbnail" alt="cat"/><p>after</p>`)
	require.NoError(t, err)
	assert.Equal(t, `<p>before</p><img alt="cat" class="fill-150x150" src="/images/7/width-150/"><p>after</p>`, got)
}

func TestFormats_ExpandEmbedsDropsUnknownFormat(t *testing.T) {
	f := DefaultFormats()

	got, err := f.ExpandEmbeds(`<p>x</p><embed embedtype="image" id="7" format="huge" alt=""/>`)
	require.NoError(t, err)
	assert.Equal(t, `<p>x</p>`, got)
}

func TestFormats_NoEmbedsUntouched(t *testing.T) {
	f := DefaultFormats()

	got, err := f.ExpandEmbeds(`<p>plain</p>`)
	require.NoError(t, err)
	assert.Equal(t, `<p>plain</p>`, got)
}
