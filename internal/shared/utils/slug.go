package utils

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxSlugProbes giới hạn số lần thử base-1, base-2, ... trước khi chuyển
// sang hậu tố ngẫu nhiên.
const MaxSlugProbes = 100

const randomSuffixAttempts = 5

// MaxSlugLength khớp cột slug VARCHAR(255)
const MaxSlugLength = 255

var (
	ErrEmptySlug     = errors.New("slug is empty")
	ErrSlugExhausted = errors.New("no free slug candidate")
)

// ExistsFunc báo slug đã có chủ hay chưa. excludeID (update) là node đang
// được sửa, không tính là xung đột với chính nó.
type ExistsFunc func(ctx context.Context, slug string, excludeID *int64) (bool, error)

// Slugify: "Tiểu Thuyết & Truyện ngắn" → "tieu-thuyet-truyen-ngan"
func Slugify(input string) string {
	ascii := RemoveDiacritics(input)
	lower := strings.ToLower(ascii)

	var b strings.Builder
	b.Grow(len(lower))

	pendingHyphen := false
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}

	return b.String()
}

var stripMarks = runes.Remove(runes.In(unicode.Mn))

// RemoveDiacritics đưa ký tự có dấu về chữ Latin gốc.
// đ/Đ không phân rã được qua NFD nên map tay; phần còn lại (kể cả dấu thanh
// tiếng Việt) được xử lý bằng NFD + bỏ combining marks.
func RemoveDiacritics(input string) string {
	replaced := strings.Map(func(r rune) rune {
		switch r {
		case 'đ':
			return 'd'
		case 'Đ':
			return 'D'
		case 'ø':
			return 'o'
		case 'Ø':
			return 'O'
		case 'ł':
			return 'l'
		case 'Ł':
			return 'L'
		}
		return r
	}, input)

	t := transform.Chain(norm.NFD, stripMarks, norm.NFC)
	out, _, err := transform.String(t, replaced)
	if err != nil {
		return replaced
	}
	return out
}

// GenerateUniqueSlug trả về baseSlug nếu còn trống, nếu không thì
// baseSlug-1, baseSlug-2, ... Sau MaxSlugProbes lần thử sẽ dùng hậu tố ngẫu nhiên.
func GenerateUniqueSlug(ctx context.Context, baseSlug string, exists ExistsFunc, excludeID *int64) (string, error) {
	baseSlug = truncateSlug(baseSlug, MaxSlugLength)
	if baseSlug == "" {
		return "", ErrEmptySlug
	}

	taken, err := exists(ctx, baseSlug, excludeID)
	if err != nil {
		return "", fmt.Errorf("check slug %q: %w", baseSlug, err)
	}
	if !taken {
		return baseSlug, nil
	}

	for i := 1; i <= MaxSlugProbes; i++ {
		candidate := withSuffix(baseSlug, fmt.Sprintf("-%d", i))
		taken, err := exists(ctx, candidate, excludeID)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
	}

	for i := 0; i < randomSuffixAttempts; i++ {
		candidate := withSuffix(baseSlug, "-"+strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
		taken, err := exists(ctx, candidate, excludeID)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrSlugExhausted, baseSlug)
}

// withSuffix cắt base để base+suffix không vượt MaxSlugLength
func withSuffix(base, suffix string) string {
	return truncateSlug(base, MaxSlugLength-len(suffix)) + suffix
}

// truncateSlug cắt theo byte (slug chỉ gồm ASCII) rồi bỏ hyphen thừa ở cuối
func truncateSlug(slug string, max int) string {
	if len(slug) > max {
		slug = slug[:max]
	}
	return strings.TrimRight(slug, "-")
}

// GenerateSlugFromTitle = Slugify + GenerateUniqueSlug
func GenerateSlugFromTitle(ctx context.Context, title string, exists ExistsFunc, excludeID *int64) (string, error) {
	return GenerateUniqueSlug(ctx, Slugify(title), exists, excludeID)
}
