package blocks

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const storedBody = `[
	{"type": "text", "value": "Hello", "id": "a1"},
	{"type": "info", "value": null, "id": "a2"},
	{"type": "faq_list", "value": [{"type": "item", "value": {"question": "Q", "answer": "<p>A</p>"}, "id": "i1"}], "id": "a3"},
	{"type": "faq_list", "value": [{"question": "Q", "answer": "<p>A</p>"}], "id": "a4"},
	{"type": "image", "value": 5, "id": "a5"},
	{"type": "carousel", "value": [
		{"type": "image", "value": 5, "id": "c1"},
		{"type": "quotation", "value": {"text": "T", "author": "Au"}, "id": "c2"}
	], "id": "a6"},
	{"type": "call_to_action", "value": {"text": "<p>Go</p>", "page": 3, "button_text": ""}, "id": "a7"},
	{"type": "page_ref", "value": null, "id": "a8"},
	{"type": "faq_entry", "value": {"question": "Q", "answer": "<p>A</p>"}, "id": "a9"},
	{"type": "author_ref", "value": 2, "id": "a10"},
	{"type": "document_ref", "value": 8, "id": "a11"}
]`

func TestStream_RoundTripKeepsStoredShape(t *testing.T) {
	s, err := ParseStream([]byte(storedBody))
	require.NoError(t, err)
	require.Len(t, s, 11)

	assert.Equal(t, Text("Hello"), s[0].Value)
	assert.Equal(t, Info{}, s[1].Value)
	assert.False(t, s[2].Value.(FAQList).Legacy())
	assert.True(t, s[3].Value.(FAQList).Legacy())
	assert.Equal(t, ImageRef(5), s[4].Value)
	assert.Equal(t, PageRef(0), s[7].Value)

	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, storedBody, string(out))
}

func TestFAQList_MixedFormatsRoundTrip(t *testing.T) {
	const stored = `[
		{"question": "Old", "answer": "<p>A</p>"},
		{"type": "item", "value": {"question": "New", "answer": "<p>B</p>"}, "id": "i2"}
	]`

	var l FAQList
	require.NoError(t, json.Unmarshal([]byte(stored), &l))
	require.Len(t, l.Items, 2)
	assert.True(t, l.Items[0].Legacy)
	assert.False(t, l.Items[1].Legacy)
	assert.Equal(t, "i2", l.Items[1].ID)
	assert.False(t, l.Legacy())

	Stream{{ID: "b1", Value: l}}.EnsureIDs()
	assert.Empty(t, l.Items[0].ID)

	out, err := json.Marshal(l)
	require.NoError(t, err)
	assert.JSONEq(t, stored, string(out))
}

func TestParseStream_Empty(t *testing.T) {
	for _, in := range []string{"", "null", "[]"} {
		s, err := ParseStream([]byte(in))
		require.NoError(t, err)
		assert.Empty(t, s)
	}

	out, err := json.Marshal(Stream(nil))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(out))
}

func TestParseStream_UnknownType(t *testing.T) {
	_, err := ParseStream([]byte(`[{"type": "video", "value": 1, "id": "x"}]`))
	assert.ErrorIs(t, err, ErrUnknownBlockType)

	_, err = ParseStream([]byte(`[{"type": "carousel", "value": [{"type": "video", "value": 1}], "id": "x"}]`))
	assert.ErrorIs(t, err, ErrUnknownBlockType)
}

func TestParseStream_WrongValueShape(t *testing.T) {
	_, err := ParseStream([]byte(`[{"type": "text", "value": 12, "id": "x"}]`))
	assert.Error(t, err)
}

func TestStream_EnsureIDs(t *testing.T) {
	s := Stream{
		{Value: Text("hi")},
		{Value: FAQList{Items: []FAQItem{{Entry: FAQEntry{Question: "Q", Answer: "A"}}}}},
		{Value: carousel(1, 1)},
		{ID: "keep", Value: Info{}},
	}

	s.EnsureIDs()

	assert.NotEmpty(t, s[0].ID)
	assert.NotEmpty(t, s[1].Value.(FAQList).Items[0].ID)
	for _, it := range s[2].Value.(Carousel).Items {
		assert.NotEmpty(t, it.ID)
	}
	assert.Equal(t, "keep", s[3].ID)
}

func TestStreamBlock_CollectsAllUnitErrors(t *testing.T) {
	b := StreamBlock{}
	s := Stream{
		{ID: "0", Value: Text("x")},
		{ID: "1", Value: Text("fine")},
		{ID: "2", Value: faqList("clean", "WordPress")},
		{ID: "3", Value: carousel(2, 1)},
	}

	_, err := b.Clean(s)
	require.Error(t, err)

	var se *StructuredValidationError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, []string{"0", "2", "3"}, se.Keys())

	var faqErr *StructuredValidationError
	require.ErrorAs(t, se.Fields["2"], &faqErr)
	assert.Equal(t, []string{"1"}, faqErr.Keys())
	assert.EqualError(t, se.Fields["3"], MsgCarouselEq)
}

func TestStreamBlock_BlockCounts(t *testing.T) {
	b := StreamBlock{BlockCounts: map[Type]Count{TypeImage: {Max: 1}}}

	_, err := b.Clean(Stream{{Value: ImageRef(1)}})
	require.NoError(t, err)

	_, err = b.Clean(Stream{{Value: ImageRef(1)}, {Value: Text("hello")}, {Value: ImageRef(2)}})
	require.Error(t, err)

	var se *StructuredValidationError
	require.ErrorAs(t, err, &se)
	require.Len(t, se.NonField, 1)
	assert.EqualError(t, se.NonField[0], "Image: The maximum number of items is 1")
	assert.Empty(t, se.Fields)
}

func TestStreamBlock_MinMaxAndAllowed(t *testing.T) {
	b := StreamBlock{Allowed: []Type{TypeText}, MinNum: 1, MaxNum: 2}

	_, err := b.Clean(Stream{})
	require.Error(t, err)

	_, err = b.Clean(Stream{{Value: Text("ok")}, {Value: Text("ok")}, {Value: Text("ok")}})
	require.Error(t, err)

	_, err = b.Clean(Stream{{Value: Info{}}})
	var se *StructuredValidationError
	require.ErrorAs(t, err, &se)
	assert.EqualError(t, se.Fields["0"], MsgNotAllowed)
}

func TestStreamBlock_ReturnsCleanedValues(t *testing.T) {
	b := StreamBlock{}

	got, err := b.Clean(Stream{{ID: "a", Value: Text("  padded  ")}})
	require.NoError(t, err)
	assert.Equal(t, Stream{{ID: "a", Value: Text("padded")}}, got)
}

func TestErrorTree_JSON(t *testing.T) {
	se := &StructuredValidationError{}
	se.Add("0", &FieldValidationError{Message: MsgWordpress})
	inner := &StructuredValidationError{}
	inner.Add("question", &FieldValidationError{Message: MsgRequired})
	se.Add("2", inner)
	se.AddNonField(maxNumError(5))

	out, err := json.Marshal(se)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"0": "wordpress is not allowed!",
		"2": {"question": "This field is required."},
		"__all__": ["The maximum number of items is 5"]
	}`, string(out))

	assert.True(t, IsValidationError(se))
	assert.Contains(t, se.Error(), "0: wordpress is not allowed!")
}

func TestStructuredValidationError_ErrOrNil(t *testing.T) {
	var nilErr *StructuredValidationError
	assert.NoError(t, nilErr.ErrOrNil())
	assert.NoError(t, (&StructuredValidationError{}).ErrOrNil())
}

func TestDefinitions_Order(t *testing.T) {
	defs := Definitions()
	require.Len(t, defs, 10)
	assert.Equal(t, TypeText, defs[0].Type)
	assert.Equal(t, TypeCallToAction, defs[9].Type)
	assert.Equal(t, "CTA #1", defs[9].Label)
	assert.True(t, defs[9].HasContext())
	assert.False(t, defs[0].HasContext())
}
