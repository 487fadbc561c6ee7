package blocks

import (
	"context"
	"encoding/json"
	"fmt"
)

// ContextFunc дополняет контекст рендера блока. parent не изменяется.
type ContextFunc func(ctx context.Context, pages Pages, v Value, parent map[string]any) (map[string]any, error)

// Definition связывает тег типа с декодером, валидатором и поставщиком контекста.
type Definition struct {
	Type     Type   `json:"type"`
	Label    string `json:"label"`
	Group    string `json:"group,omitempty"`
	Template string `json:"template"`

	decode  func(raw json.RawMessage) (Value, error)
	clean   func(v Value) (Value, error)
	context ContextFunc
}

const groupStandalone = "Standalone blocks"

// order задаёт порядок блоков в палитре редактора.
var order = []Type{
	TypeText, TypeInfo, TypeFAQEntry, TypeFAQList, TypeImage,
	TypeDocumentRef, TypePageRef, TypeAuthorRef, TypeCarousel, TypeCallToAction,
}

var registry = map[Type]Definition{
	TypeText: {
		Type: TypeText, Label: "Text", Group: groupStandalone, Template: "blocks/text_block.html",
		decode: decodeAs[Text], clean: cleanText,
	},
	TypeInfo: {
		Type: TypeInfo, Label: "General Information", Group: groupStandalone, Template: "blocks/info_block.html",
		decode: func(json.RawMessage) (Value, error) { return Info{}, nil },
		clean:  func(v Value) (Value, error) { return v, nil },
	},
	TypeFAQEntry: {
		Type: TypeFAQEntry, Label: "FAQ", Template: "blocks/faq_block.html",
		decode: decodeAs[FAQEntry], clean: cleanFAQEntryValue,
	},
	TypeFAQList: {
		Type: TypeFAQList, Label: "Frequently Asked Questions 2", Template: "blocks/faq_list_block.html",
		decode: decodeAs[FAQList], clean: cleanFAQList,
	},
	TypeImage: {
		Type: TypeImage, Label: "Image", Group: groupStandalone, Template: "blocks/image_block.html",
		decode: decodeAs[ImageRef], clean: cleanRef, context: imageContext,
	},
	TypeDocumentRef: {
		Type: TypeDocumentRef, Label: "Document", Template: "blocks/document_block.html",
		decode: decodeAs[DocumentRef], clean: cleanRef,
	},
	TypePageRef: {
		Type: TypePageRef, Label: "Page", Template: "blocks/page_block.html",
		decode: decodeAs[PageRef], clean: cleanRef,
	},
	TypeAuthorRef: {
		Type: TypeAuthorRef, Label: "Author", Template: "blocks/author_block.html",
		decode: decodeAs[AuthorRef], clean: cleanRef,
	},
	TypeCarousel: {
		Type: TypeCarousel, Label: "Carousel", Template: "blocks/carousel_block.html",
		decode: decodeAs[Carousel], clean: cleanCarousel,
	},
	TypeCallToAction: {
		Type: TypeCallToAction, Label: "CTA #1", Template: "blocks/call_to_action_1.html",
		decode: decodeAs[CallToAction], clean: cleanCallToAction, context: callToActionContext,
	},
}

func decodeAs[T Value](raw json.RawMessage) (Value, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func Lookup(t Type) (Definition, bool) {
	d, ok := registry[t]
	return d, ok
}

// Definitions возвращает все типы блоков в порядке палитры.
func Definitions() []Definition {
	out := make([]Definition, 0, len(order))
	for _, t := range order {
		out = append(out, registry[t])
	}
	return out
}

// Clean проверяет значение и возвращает очищенную копию.
func (d Definition) Clean(v Value) (Value, error) {
	if v == nil || v.BlockType() != d.Type {
		return nil, fmt.Errorf("%s: unexpected value %T", d.Type, v)
	}
	return d.clean(v)
}

func (d Definition) HasContext() bool { return d.context != nil }
