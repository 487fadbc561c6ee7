package blocks

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	MsgRequired     = "This field is required."
	MsgWordpress    = "wordpress is not allowed!"
	MsgCarouselBoth = "At least one image or quotation must be present"
	MsgCarouselEq   = "Number of images and quotations must be equal"
	MsgNotAllowed   = "Block type is not allowed here."
)

var ErrUnknownBlockType = errors.New("unknown block type")

// FieldValidationError — одно сообщение для одного поля.
type FieldValidationError struct {
	Message string
}

func NewFieldError(format string, args ...any) *FieldValidationError {
	return &FieldValidationError{Message: fmt.Sprintf(format, args...)}
}

func (e *FieldValidationError) Error() string { return e.Message }

func (e *FieldValidationError) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Message)
}

// StructuredValidationError собирает ошибки по подполям или индексам.
// NonField — ошибки, относящиеся к значению целиком (например, лимиты количества).
type StructuredValidationError struct {
	Fields   map[string]error
	NonField []error
}

func (e *StructuredValidationError) Add(key string, err error) {
	if err == nil {
		return
	}
	if e.Fields == nil {
		e.Fields = map[string]error{}
	}
	e.Fields[key] = err
}

func (e *StructuredValidationError) AddNonField(err error) {
	if err != nil {
		e.NonField = append(e.NonField, err)
	}
}

func (e *StructuredValidationError) Empty() bool {
	return len(e.Fields) == 0 && len(e.NonField) == 0
}

// ErrOrNil нужен, чтобы не вернуть typed nil в error.
func (e *StructuredValidationError) ErrOrNil() error {
	if e == nil || e.Empty() {
		return nil
	}
	return e
}

// Keys возвращает ключи полей; индексы идут по возрастанию и раньше имён.
func (e *StructuredValidationError) Keys() []string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, aErr := strconv.Atoi(keys[i])
		b, bErr := strconv.Atoi(keys[j])
		switch {
		case aErr == nil && bErr == nil:
			return a < b
		case aErr == nil:
			return true
		case bErr == nil:
			return false
		}
		return keys[i] < keys[j]
	})
	return keys
}

func (e *StructuredValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields)+len(e.NonField))
	for _, err := range e.NonField {
		parts = append(parts, err.Error())
	}
	for _, k := range e.Keys() {
		parts = append(parts, k+": "+e.Fields[k].Error())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *StructuredValidationError) MarshalJSON() ([]byte, error) {
	return json.Marshal(ErrorTree(e))
}

func IndexKey(i int) string { return strconv.Itoa(i) }

// IsValidationError — true для ошибок, которые надо показать редактору, а не логировать как сбой.
func IsValidationError(err error) bool {
	var fe *FieldValidationError
	var se *StructuredValidationError
	return errors.As(err, &fe) || errors.As(err, &se)
}

// ErrorTree превращает ошибку валидации в JSON-дружественное дерево:
// строка для FieldValidationError, map для StructuredValidationError.
func ErrorTree(err error) any {
	var se *StructuredValidationError
	if errors.As(err, &se) {
		out := map[string]any{}
		for k, v := range se.Fields {
			out[k] = ErrorTree(v)
		}
		if len(se.NonField) > 0 {
			msgs := make([]string, 0, len(se.NonField))
			for _, nf := range se.NonField {
				msgs = append(msgs, nf.Error())
			}
			out["__all__"] = msgs
		}
		return out
	}
	if err == nil {
		return nil
	}
	return err.Error()
}
