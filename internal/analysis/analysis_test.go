package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResidual(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
		want     []string
	}{
		{
			name:     "Script element",
			fragment: "<script>alert(1)</script>",
			want:     []string{"script"},
		},
		{
			name:     "Event handler",
			fragment: "<img src=x onerror=alert(1)>",
			want:     []string{"img[onerror]"},
		},
		{
			name:     "Javascript URL with whitespace",
			fragment: `<a href=" java	script:alert(1)">x</a>`,
			want:     []string{"a[href=javascript:]"},
		},
		{
			name:     "Iframe srcdoc",
			fragment: `<iframe srcdoc="&lt;script&gt;alert(1)&lt;/script&gt;"></iframe>`,
			want:     []string{"iframe[srcdoc]"},
		},
		{
			name:     "Multiple constructs deduplicated",
			fragment: `<svg onload=alert(1)><svg onload=alert(2)><b onclick=x>`,
			want:     []string{"svg[onload]", "b[onclick]"},
		},
		{
			name:     "Sanitized markup",
			fragment: `<img src="x"><b>bold</b>`,
			want:     nil,
		},
		{
			name:     "Empty",
			fragment: "",
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Residual(tt.fragment))
		})
	}
}

func TestStripped(t *testing.T) {
	assert.Nil(t, Stripped("<b>same</b>", "<b>same</b>"))

	removed := Stripped(`<img src="x" onerror="alert(1)">`, `<img src="x">`)
	assert.NotEmpty(t, removed)
	assert.Contains(t, removed[0], "onerror")

	assert.Equal(t, []string{"<script>alert(1)</script>"}, Stripped("<script>alert(1)</script>", ""))
}

func TestReferenceSanitize(t *testing.T) {
	assert.Equal(t, "", ReferenceSanitize("<script>alert(1)</script>"))
	assert.NotContains(t, ReferenceSanitize("<img src=x onerror=alert(1)>"), "onerror")
	assert.Equal(t, "<b>hello</b>", ReferenceSanitize("<b>hello</b>"))
}

func TestPrefix(t *testing.T) {
	assert.Equal(t, "abc", Prefix("abcdef", 3))
	assert.Equal(t, "ab", Prefix("ab", 200))
	assert.Equal(t, "éé", Prefix("ééé", 2))
	assert.Equal(t, "", Prefix("abc", 0))
}
