package syntax

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Extension is a JSON document that adds registrations on top of a built-in
// profile, e.g. project-specific keywords or extra number suffixes:
//
//	{
//	  "name": "runtime+game",
//	  "keywords": ["goto"],
//	  "prefixOperators": ["$$"],
//	  "numberAnnotations": ["f"],
//	  "translations": {"binary": {"@>": "vec.dot(A, B)"}}
//	}
type Extension struct {
	Name                   string       `json:"name,omitempty"`
	Keywords               []string     `json:"keywords,omitempty"`
	NonStandardKeywords    []string     `json:"nonStandardKeywords,omitempty"`
	KeywordValues          []string     `json:"keywordValues,omitempty"`
	PrefixOperators        []string     `json:"prefixOperators,omitempty"`
	PostfixOperators       []string     `json:"postfixOperators,omitempty"`
	PrimaryBinaryOperators []string     `json:"primaryBinaryOperators,omitempty"`
	BinaryOperatorTiers    [][]string   `json:"binaryOperatorTiers,omitempty"`
	Symbols                []string     `json:"symbols,omitempty"`
	NumberAnnotations      []string     `json:"numberAnnotations,omitempty"`
	Translations           Translations `json:"translations,omitempty"`
}

// Translations groups extension templates by operator arity.
type Translations struct {
	Prefix  map[string]string `json:"prefix,omitempty"`
	Postfix map[string]string `json:"postfix,omitempty"`
	Binary  map[string]string `json:"binary,omitempty"`
}

const extensionSchemaURL = "schema://nattlua/profile-extension.json"

const extensionSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": false,
  "$defs": {
    "words": {
      "type": "array",
      "items": {"type": "string", "minLength": 1, "pattern": "^\\S+$"},
      "uniqueItems": true
    },
    "templates": {
      "type": "object",
      "additionalProperties": {"type": "string", "minLength": 1}
    }
  },
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "keywords": {"$ref": "#/$defs/words"},
    "nonStandardKeywords": {"$ref": "#/$defs/words"},
    "keywordValues": {"$ref": "#/$defs/words"},
    "prefixOperators": {"$ref": "#/$defs/words"},
    "postfixOperators": {"$ref": "#/$defs/words"},
    "primaryBinaryOperators": {"$ref": "#/$defs/words"},
    "binaryOperatorTiers": {
      "type": "array",
      "minItems": 1,
      "items": {"allOf": [{"$ref": "#/$defs/words"}, {"minItems": 1}]}
    },
    "symbols": {"$ref": "#/$defs/words"},
    "numberAnnotations": {"$ref": "#/$defs/words"},
    "translations": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "prefix": {"$ref": "#/$defs/templates"},
        "postfix": {"$ref": "#/$defs/templates"},
        "binary": {"$ref": "#/$defs/templates"}
      }
    }
  }
}`

var (
	extensionSchemaOnce     sync.Once
	compiledExtensionSchema *jsonschema.Schema
	extensionSchemaErr      error
)

func extensionValidator() (*jsonschema.Schema, error) {
	extensionSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource(extensionSchemaURL, strings.NewReader(extensionSchema)); err != nil {
			extensionSchemaErr = err
			return
		}
		compiledExtensionSchema, extensionSchemaErr = compiler.Compile(extensionSchemaURL)
	})
	return compiledExtensionSchema, extensionSchemaErr
}

// DecodeExtension reads and validates an extension document.
func DecodeExtension(r io.Reader) (*Extension, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading profile extension: %w", err)
	}

	validator, err := extensionValidator()
	if err != nil {
		return nil, fmt.Errorf("compiling profile extension schema: %w", err)
	}

	var doc interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("profile extension is not valid JSON: %w", err)
	}
	if err := validator.Validate(doc); err != nil {
		return nil, fmt.Errorf("invalid profile extension: %w", err)
	}

	var ext Extension
	if err := json.Unmarshal(data, &ext); err != nil {
		return nil, fmt.Errorf("decoding profile extension: %w", err)
	}
	return &ext, nil
}

// Apply builds a new profile from base plus the extension's registrations.
// Binary tiers, when present, replace the base priority table.
func (e *Extension) Apply(base *Profile) (*Profile, error) {
	name := e.Name
	if name == "" {
		name = base.Name() + "+ext"
	}
	b := NewBuilderFrom(base, name)

	for _, tmpls := range []struct {
		set   map[string]string
		slots int
	}{
		{e.Translations.Prefix, 1},
		{e.Translations.Postfix, 1},
		{e.Translations.Binary, 2},
	} {
		for op, text := range tmpls.set {
			if _, err := ParseTemplate(op, text, tmpls.slots); err != nil {
				return nil, err
			}
		}
	}

	b.AddKeywords(e.Keywords...)
	b.AddNonStandardKeywords(e.NonStandardKeywords...)
	b.AddKeywordValues(e.KeywordValues...)
	b.AddPrefixOperators(e.PrefixOperators...)
	b.AddPostfixOperators(e.PostfixOperators...)
	b.AddPrimaryBinaryOperators(e.PrimaryBinaryOperators...)
	b.AddSymbolCharacters(e.Symbols...)
	b.AddNumberAnnotations(e.NumberAnnotations...)
	if len(e.BinaryOperatorTiers) > 0 {
		b.SetBinaryOperatorTiers(e.BinaryOperatorTiers...)
	}
	b.AddPrefixOperatorTranslation(e.Translations.Prefix)
	b.AddPostfixOperatorTranslation(e.Translations.Postfix)
	b.AddBinaryOperatorTranslation(e.Translations.Binary)

	return b.Build(), nil
}

// LoadExtension decodes an extension document and applies it to base.
func LoadExtension(r io.Reader, base *Profile) (*Profile, error) {
	ext, err := DecodeExtension(r)
	if err != nil {
		return nil, err
	}
	return ext.Apply(base)
}
