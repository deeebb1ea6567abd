package utils

import (
	"errors"
	"strconv"
	"strings"
)

var ErrInvalidID = errors.New("id must be a positive integer")

// ParseID parse path param thành id BIGSERIAL
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}

// ParseOptionalID: chuỗi rỗng → nil
func ParseOptionalID(s string) (*int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	id, err := ParseID(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
