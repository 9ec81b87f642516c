package util

import (
	"math"
	"strconv"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// MaxPage keeps the offset of any page within int.
const MaxPage = math.MaxInt / MaxPageSize

// Calculate turns a 1-based page and a page size into offset and limit.
// Sizes above MaxPageSize and pages above MaxPage are clamped, so a huge
// page lands past the last row instead of wrapping around.
func Calculate(page, size int) (offset, limit int) {
	switch {
	case page < 1:
		page = 1
	case page > MaxPage:
		page = MaxPage
	}
	switch {
	case size <= 0:
		size = DefaultPageSize
	case size > MaxPageSize:
		size = MaxPageSize
	}
	offset = (page - 1) * size
	return offset, size
}

func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}
