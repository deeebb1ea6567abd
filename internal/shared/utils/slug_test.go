package utils

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"":                           "",
		"Tech":                       "tech",
		"  Hello   World  ":          "hello-world",
		"Tiểu Thuyết":                "tieu-thuyet",
		"Nguyễn Nhật Ánh":            "nguyen-nhat-anh",
		"Đường sắt Bắc–Nam":          "duong-sat-bac-nam",
		"Crème brûlée!":              "creme-brulee",
		"My App 2.0":                 "my-app-2-0",
		"--already--slugged--":       "already-slugged",
		"C++ & Go / Rust":            "c-go-rust",
		"!!!":                        "",
		"Sách   Kỹ năng---Sống":      "sach-ky-nang-song",
		"Øresund Łódź":               "oresund-lodz",
		"Trẻ em (0-6 tuổi)":          "tre-em-0-6-tuoi",
		"UPPER lower MiXeD":          "upper-lower-mixed",
		"tab\tand\nnewline":          "tab-and-newline",
		"emoji 🚀 rocket":             "emoji-rocket",
		"trailing punctuation...":    "trailing-punctuation",
		"số 1 Việt Nam":              "so-1-viet-nam",
		"ưu đãi hấp dẫn":             "uu-dai-hap-dan",
		"Ỹ Ỵ ỷ":                      "y-y-y",
		"日本語":                        "",
		"mixed 日本 text":              "mixed-text",
		"a":                          "a",
		" - ":                        "",
		"100% cotton":                "100-cotton",
		"email@example.com":          "email-example-com",
		"Ñandú":                      "nandu",
		"Über":                       "uber",
		"điện thoại & máy tính bảng": "dien-thoai-may-tinh-bang",
	}

	for in, want := range cases {
		assert.Equalf(t, want, Slugify(in), "Slugify(%q)", in)
	}
}

func TestSlugifyIsIdempotent(t *testing.T) {
	for _, in := range []string{"Tiểu Thuyết", "hello-world", "A  B  C"} {
		once := Slugify(in)
		assert.Equal(t, once, Slugify(once))
	}
}

func takenSet(slugs ...string) (ExistsFunc, *int) {
	set := map[string]bool{}
	for _, s := range slugs {
		set[s] = true
	}
	calls := 0
	return func(_ context.Context, slug string, _ *int64) (bool, error) {
		calls++
		return set[slug], nil
	}, &calls
}

func TestGenerateUniqueSlugFree(t *testing.T) {
	exists, calls := takenSet()

	got, err := GenerateUniqueSlug(context.Background(), "tech", exists, nil)
	require.NoError(t, err)
	assert.Equal(t, "tech", got)
	assert.Equal(t, 1, *calls)
}

func TestGenerateUniqueSlugProbesSuffixes(t *testing.T) {
	exists, _ := takenSet("tech", "tech-1", "tech-2")

	got, err := GenerateUniqueSlug(context.Background(), "tech", exists, nil)
	require.NoError(t, err)
	assert.Equal(t, "tech-3", got)
}

func TestGenerateUniqueSlugPassesExcludeID(t *testing.T) {
	self := int64(7)
	var seen []*int64
	exists := func(_ context.Context, slug string, excludeID *int64) (bool, error) {
		seen = append(seen, excludeID)
		return false, nil
	}

	_, err := GenerateUniqueSlug(context.Background(), "tech", exists, &self)
	require.NoError(t, err)
	require.Len(t, seen, 1)
	assert.Equal(t, &self, seen[0])
}

func TestGenerateUniqueSlugFallsBackToRandomSuffix(t *testing.T) {
	taken := []string{"tech"}
	for i := 1; i <= MaxSlugProbes; i++ {
		taken = append(taken, fmt.Sprintf("tech-%d", i))
	}
	exists, _ := takenSet(taken...)

	got, err := GenerateUniqueSlug(context.Background(), "tech", exists, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "tech-"))
	assert.Len(t, got, len("tech-")+8)
	assert.NotContains(t, taken, got)
}

func TestGenerateUniqueSlugFitsColumnWidth(t *testing.T) {
	name := strings.Repeat("a", 255)
	exists, _ := takenSet(name)

	got, err := GenerateSlugFromTitle(context.Background(), name, exists, nil)
	require.NoError(t, err)
	assert.Len(t, got, MaxSlugLength)
	assert.True(t, strings.HasSuffix(got, "-1"))
	assert.Equal(t, strings.Repeat("a", 253)+"-1", got)

	// Cắt ngay sau hyphen thì hyphen đó bị bỏ
	base := strings.Repeat("a", 252) + "-b"
	exists, _ = takenSet(base)
	got, err = GenerateUniqueSlug(context.Background(), base, exists, nil)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("a", 252)+"-1", got)
	assert.LessOrEqual(t, len(got), MaxSlugLength)
}

func TestGenerateUniqueSlugExhausted(t *testing.T) {
	exists := func(context.Context, string, *int64) (bool, error) { return true, nil }

	_, err := GenerateUniqueSlug(context.Background(), "tech", exists, nil)
	assert.ErrorIs(t, err, ErrSlugExhausted)
}

func TestGenerateUniqueSlugPropagatesLookupError(t *testing.T) {
	boom := errors.New("db down")
	exists := func(context.Context, string, *int64) (bool, error) { return false, boom }

	_, err := GenerateUniqueSlug(context.Background(), "tech", exists, nil)
	assert.ErrorIs(t, err, boom)
}

func TestGenerateSlugFromTitle(t *testing.T) {
	exists, _ := takenSet("tieu-thuyet")

	got, err := GenerateSlugFromTitle(context.Background(), "Tiểu Thuyết", exists, nil)
	require.NoError(t, err)
	assert.Equal(t, "tieu-thuyet-1", got)

	_, err = GenerateSlugFromTitle(context.Background(), "***", exists, nil)
	assert.ErrorIs(t, err, ErrEmptySlug)
}
