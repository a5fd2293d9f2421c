package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pingcap/errors"

	"fileindex/pkg/models"
)

// Field is an attribute a query can compare against.
type Field int

// Queryable fields.
const (
	FieldFileName Field = iota + 1
	FieldFileSize
	FieldContentType
)

var fieldNames = map[string]Field{
	models.AttrFileName:    FieldFileName,
	models.AttrFileSize:    FieldFileSize,
	models.AttrContentType: FieldContentType,
}

// ParseField looks up a field by its query name.
func ParseField(name string) (Field, bool) {
	f, ok := fieldNames[name]
	return f, ok
}

func (f Field) String() string {
	switch f {
	case FieldFileName:
		return models.AttrFileName
	case FieldFileSize:
		return models.AttrFileSize
	case FieldContentType:
		return models.AttrContentType
	}
	return "Field(" + strconv.Itoa(int(f)) + ")"
}

// Attributes is what a matcher reads from a record. *models.Record
// implements it.
type Attributes interface {
	FileName() (string, error)
	FileSize() (int64, error)
	ContentType() (string, error)
}

// Matcher is a boolean predicate over Attributes. The set of matchers is
// closed: TrueMatcher, FalseMatcher, AndMatcher, OrMatcher and
// FieldMatcher. Evaluate one with Match.
type Matcher interface {
	fmt.Stringer
	matcher()
}

// TrueMatcher matches every record.
type TrueMatcher struct{}

// FalseMatcher matches no record.
type FalseMatcher struct{}

// AndMatcher matches when every element matches. It never matches when it
// has no elements.
type AndMatcher struct {
	Elements []Matcher
}

// OrMatcher matches when any element matches. It never matches when it has
// no elements.
type OrMatcher struct {
	Elements []Matcher
}

// FieldMatcher matches when Field equals the stored value exactly. Number
// is used for file_size, Text for the others.
type FieldMatcher struct {
	Field  Field
	Text   string
	Number int64
}

func (TrueMatcher) matcher()  {}
func (FalseMatcher) matcher() {}
func (AndMatcher) matcher()   {}
func (OrMatcher) matcher()    {}
func (FieldMatcher) matcher() {}

// FileNameMatcher tests file_name == name.
func FileNameMatcher(name string) FieldMatcher {
	return FieldMatcher{Field: FieldFileName, Text: name}
}

// FileSizeMatcher tests file_size == size.
func FileSizeMatcher(size int64) FieldMatcher {
	return FieldMatcher{Field: FieldFileSize, Number: size}
}

// ContentTypeMatcher tests content_type == contentType.
func ContentTypeMatcher(contentType string) FieldMatcher {
	return FieldMatcher{Field: FieldContentType, Text: contentType}
}

// Match evaluates m against r. An attribute that cannot be resolved fails
// the whole evaluation.
func Match(m Matcher, r Attributes) (bool, error) {
	switch m := m.(type) {
	case TrueMatcher:
		return true, nil
	case FalseMatcher:
		return false, nil
	case AndMatcher:
		if len(m.Elements) == 0 {
			return false, nil
		}
		for _, el := range m.Elements {
			ok, err := Match(el, r)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case OrMatcher:
		for _, el := range m.Elements {
			ok, err := Match(el, r)
			if err != nil || ok {
				return ok, err
			}
		}
		return false, nil
	case FieldMatcher:
		return matchField(m, r)
	}
	return false, errors.Errorf("unknown matcher %T", m)
}

func matchField(m FieldMatcher, r Attributes) (bool, error) {
	switch m.Field {
	case FieldFileName:
		name, err := r.FileName()
		return err == nil && name == m.Text, err
	case FieldFileSize:
		size, err := r.FileSize()
		return err == nil && size == m.Number, err
	case FieldContentType:
		contentType, err := r.ContentType()
		return err == nil && contentType == m.Text, err
	}
	return false, errors.Errorf("unknown field %s", m.Field)
}

func (TrueMatcher) String() string  { return "TrueMatcher()" }
func (FalseMatcher) String() string { return "FalseMatcher()" }

func (m AndMatcher) String() string {
	return "AndMatcher(elements=" + joinMatchers(m.Elements) + ")"
}

func (m OrMatcher) String() string {
	return "OrMatcher(elements=" + joinMatchers(m.Elements) + ")"
}

func (m FieldMatcher) String() string {
	switch m.Field {
	case FieldFileName:
		return "FileNameMatcher(" + m.Text + ")"
	case FieldFileSize:
		return "FileSizeMatcher(" + strconv.FormatInt(m.Number, 10) + ")"
	case FieldContentType:
		return "ContentTypeMatcher(" + m.Text + ")"
	}
	return "FieldMatcher(" + m.Field.String() + ")"
}

func joinMatchers(elements []Matcher) string {
	parts := make([]string, 0, len(elements))
	for _, el := range elements {
		parts = append(parts, el.String())
	}
	return strings.Join(parts, ",")
}
