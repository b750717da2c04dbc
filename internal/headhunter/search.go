package headhunter

import (
	"context"
	"fmt"
	"net/url"
	"reflect"
	"strconv"

	"github.com/mitchellh/mapstructure"
)

const SearchPath = "/vacancies"

// SearchParams is the vacancy query. Fields are sent under their hhparam tag,
// or the yaml tag when there is none.
type SearchParams struct {
	Text        string   `yaml:"text"`
	Areas       []int    `hhparam:"area"`
	OrderBy     string   `yaml:"order_by" mapstructure:"order_by"`
	Employer    uint     `yaml:"employer_id" mapstructure:"employer_id"`
	SearchField string   `yaml:"search_field" mapstructure:"search_field"`
	Schedules   []string `hhparam:"schedule"`
	PerPage     string   `yaml:"per_page" mapstructure:"per_page"`
	Experience  string   `yaml:"experience"`
	Period      uint     `yaml:"period"`
	// Limit caps the number of returned vacancies. It is not sent to the API.
	Limit int `yaml:"-"`
}

func (c *Client) search(ctx context.Context, params *SearchParams) (*Vacancies, error) {
	query := *params
	if query.PerPage == "" {
		query.PerPage = perPage
	}

	items, err := c.listAll(ctx, c.APIURL+SearchPath, buildParams(&query), query.Limit)
	if err != nil {
		return nil, fmt.Errorf("search vacancies: %w", err)
	}

	vacancies, err := decodeVacancies(items)
	if err != nil {
		return nil, err
	}
	return &Vacancies{Items: vacancies}, nil
}

// decodeVacancies maps loosely typed listing items onto vacancies through their
// json tags. Numbers sent as strings and the other way round are accepted.
func decodeVacancies(items []map[string]any) ([]*Vacancy, error) {
	var vacancies []*Vacancy

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &vacancies,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(items); err != nil {
		return nil, fmt.Errorf("decode vacancies: %w", err)
	}
	return vacancies, nil
}

func buildParams(params *SearchParams) url.Values {
	q := url.Values{}
	value := reflect.ValueOf(params).Elem()

	for _, field := range reflect.VisibleFields(value.Type()) {
		key := field.Tag.Get("hhparam")
		if key == "" {
			key = field.Tag.Get("yaml")
		}
		if key == "" || key == "-" {
			continue
		}

		switch v := value.FieldByIndex(field.Index).Interface().(type) {
		case []int:
			for _, item := range v {
				q.Add(key, strconv.Itoa(item))
			}
		case []string:
			for _, item := range v {
				q.Add(key, item)
			}
		default:
			if s := fmt.Sprint(v); s != "" && s != "0" {
				q.Set(key, s)
			}
		}
	}

	return q
}
