package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/buger/jsonparser"
	"github.com/mitchellh/mapstructure"

	"github.com/spigell/skillmatch/internal/ai"
	"github.com/spigell/skillmatch/internal/skilltree"
)

// Document is the decoded analysis answer.
type Document struct {
	Data         skilltree.Data
	Requirements []string
}

type skillLists struct {
	SoftSkills     []string `mapstructure:"soft_skills"`
	Domains        []string `mapstructure:"domains"`
	Certifications []string `mapstructure:"certifications"`
	Methodologies  []string `mapstructure:"methodologies"`
}

type document struct {
	Skills       skillLists `mapstructure:"skills"`
	Requirements []string   `mapstructure:"requirements"`
}

// Parse decodes an analysis answer. Technical subcategories keep the order in
// which they appear in the document; a repeated key keeps its first position
// and its last value.
func Parse(raw string) (*Document, error) {
	cleaned := ai.ExtractJSON(raw)
	if err := skillSchema.Validate(cleaned); err != nil {
		return nil, err
	}

	var generic map[string]any
	if err := json.Unmarshal([]byte(cleaned), &generic); err != nil {
		return nil, &ai.MalformedResponseError{Reason: err.Error(), Raw: raw}
	}

	var decoded document
	if err := mapstructure.Decode(generic, &decoded); err != nil {
		return nil, &ai.MalformedResponseError{Reason: fmt.Sprintf("decode skills: %v", err), Raw: raw}
	}

	technical, err := technicalCategories([]byte(cleaned))
	if err != nil {
		return nil, &ai.MalformedResponseError{Reason: fmt.Sprintf("decode technical skills: %v", err), Raw: raw}
	}

	doc := &Document{
		Data: skilltree.Data{
			Technical:      technical,
			SoftSkills:     decoded.Skills.SoftSkills,
			Domains:        decoded.Skills.Domains,
			Certifications: decoded.Skills.Certifications,
			Methodologies:  decoded.Skills.Methodologies,
		},
		Requirements: decoded.Requirements,
	}

	if err := doc.Data.Validate(); err != nil {
		return nil, &ai.MalformedResponseError{Reason: err.Error(), Raw: raw}
	}
	for i, r := range doc.Requirements {
		if strings.TrimSpace(r) == "" {
			return nil, &ai.MalformedResponseError{Reason: fmt.Sprintf("requirements[%d] is empty", i), Raw: raw}
		}
	}

	return doc, nil
}

func technicalCategories(data []byte) ([]skilltree.Category, error) {
	var categories []skilltree.Category
	position := make(map[string]int)

	err := jsonparser.ObjectEach(data, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		name, err := jsonparser.ParseString(key)
		if err != nil {
			return err
		}

		var skills []string
		if dataType == jsonparser.Array {
			skills, err = stringArray(value)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
		}

		if i, ok := position[name]; ok {
			categories[i].Skills = skills
			return nil
		}
		position[name] = len(categories)
		categories = append(categories, skilltree.Category{Key: name, Skills: skills})
		return nil
	}, "skills", "technical")

	if errors.Is(err, jsonparser.KeyPathNotFoundError) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func stringArray(value []byte) ([]string, error) {
	var (
		out      []string
		parseErr error
	)
	_, err := jsonparser.ArrayEach(value, func(item []byte, dataType jsonparser.ValueType, _ int, err error) {
		if parseErr != nil {
			return
		}
		if err != nil {
			parseErr = err
			return
		}
		if dataType != jsonparser.String {
			parseErr = fmt.Errorf("unexpected %s item", dataType)
			return
		}
		s, err := jsonparser.ParseString(item)
		if err != nil {
			parseErr = err
			return
		}
		out = append(out, s)
	})
	if err != nil {
		return nil, err
	}
	return out, parseErr
}
