package types

import (
	"github.com/intunedeck/intunedeck/internal/errors"
	"github.com/samber/lo"
)

const (
	FilterDefaultLimit  = 50
	FilterMaxLimit      = 1000
	FilterDefaultOffset = 0
)

// QueryFilter holds the common list-endpoint parameters.
type QueryFilter struct {
	Limit  *int    `json:"limit,omitempty" form:"limit"`
	Offset *int    `json:"offset,omitempty" form:"offset"`
	Search *string `json:"search,omitempty" form:"search"`
}

// NewDefaultQueryFilter creates a filter with default values
func NewDefaultQueryFilter() *QueryFilter {
	return &QueryFilter{
		Limit:  lo.ToPtr(FilterDefaultLimit),
		Offset: lo.ToPtr(FilterDefaultOffset),
	}
}

func (f *QueryFilter) GetLimit() int {
	if f == nil || f.Limit == nil {
		return FilterDefaultLimit
	}
	return *f.Limit
}

func (f *QueryFilter) GetOffset() int {
	if f == nil || f.Offset == nil {
		return FilterDefaultOffset
	}
	return *f.Offset
}

func (f *QueryFilter) GetSearch() string {
	if f == nil || f.Search == nil {
		return ""
	}
	return *f.Search
}

func (f *QueryFilter) Validate() error {
	if f == nil {
		return nil
	}
	if f.Limit != nil && (*f.Limit < 1 || *f.Limit > FilterMaxLimit) {
		return errors.New(errors.ErrCodeValidation, "limit must be between 1 and 1000")
	}
	if f.Offset != nil && *f.Offset < 0 {
		return errors.New(errors.ErrCodeValidation, "offset must not be negative")
	}
	return nil
}
