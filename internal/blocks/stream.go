package blocks

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Stream хранит блоки в порядке рендера.
type Stream []Unit

func (s Stream) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Unit(s))
}

func (s *Stream) UnmarshalJSON(data []byte) error {
	var units []Unit
	if err := json.Unmarshal(data, &units); err != nil {
		return err
	}
	*s = units
	return nil
}

// ParseStream читает сохранённый документ; пустой ввод — пустой документ.
func ParseStream(data []byte) (Stream, error) {
	if len(data) == 0 || string(data) == "null" {
		return Stream{}, nil
	}
	var s Stream
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return s, nil
}

// EnsureIDs проставляет uuid блокам и вложенным элементам без id.
func (s Stream) EnsureIDs() {
	for i := range s {
		if s[i].ID == "" {
			s[i].ID = uuid.NewString()
		}
		switch v := s[i].Value.(type) {
		case FAQList:
			for j := range v.Items {
				if !v.Items[j].Legacy && v.Items[j].ID == "" {
					v.Items[j].ID = uuid.NewString()
				}
			}
		case Carousel:
			for j := range v.Items {
				if v.Items[j].ID == "" {
					v.Items[j].ID = uuid.NewString()
				}
			}
		}
	}
}

// Count — ограничение на число блоков одного типа; 0 — без ограничения.
type Count struct {
	Min int `json:"min_num,omitempty"`
	Max int `json:"max_num,omitempty"`
}

// StreamBlock описывает поле-документ конкретного типа страницы.
type StreamBlock struct {
	Allowed     []Type
	MinNum      int
	MaxNum      int
	BlockCounts map[Type]Count
}

func (b StreamBlock) allowed(t Type) bool {
	if len(b.Allowed) == 0 {
		return true
	}
	for _, a := range b.Allowed {
		if a == t {
			return true
		}
	}
	return false
}

// Clean прогоняет каждый блок через валидатор его типа, затем проверяет лимиты.
// Все ошибки собираются в одну StructuredValidationError.
func (b StreamBlock) Clean(s Stream) (Stream, error) {
	errs := &StructuredValidationError{}
	out := make(Stream, 0, len(s))
	counts := map[Type]int{}

	for i, u := range s {
		if u.Value == nil {
			errs.Add(IndexKey(i), &FieldValidationError{Message: MsgRequired})
			continue
		}
		t := u.Type()
		def, ok := Lookup(t)
		if !ok || !b.allowed(t) {
			errs.Add(IndexKey(i), &FieldValidationError{Message: MsgNotAllowed})
			continue
		}
		counts[t]++
		v, err := def.Clean(u.Value)
		if err != nil {
			errs.Add(IndexKey(i), err)
			continue
		}
		out = append(out, Unit{ID: u.ID, Value: v})
	}

	if b.MinNum > 0 && len(s) < b.MinNum {
		errs.AddNonField(minNumError(b.MinNum))
	}
	if b.MaxNum > 0 && len(s) > b.MaxNum {
		errs.AddNonField(maxNumError(b.MaxNum))
	}
	for _, t := range order {
		c, ok := b.BlockCounts[t]
		if !ok {
			continue
		}
		label := registry[t].Label
		if c.Min > 0 && counts[t] < c.Min {
			errs.AddNonField(fmt.Errorf("%s: %w", label, minNumError(c.Min)))
		}
		if c.Max > 0 && counts[t] > c.Max {
			errs.AddNonField(fmt.Errorf("%s: %w", label, maxNumError(c.Max)))
		}
	}

	if err := errs.ErrOrNil(); err != nil {
		return s, err
	}
	return out, nil
}
