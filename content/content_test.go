package content

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   Prompt
		blanks int
	}{
		{
			name: "single blank",
			text: "Capital of France is {}",
			want: Prompt{
				{Kind: Text, Text: "Capital of France is "},
				{Kind: Blank},
			},
			blanks: 1,
		},
		{
			name: "leading and inner blanks",
			text: "{} + {} = 4",
			want: Prompt{
				{Kind: Blank},
				{Kind: Text, Text: " + "},
				{Kind: Blank},
				{Kind: Text, Text: " = 4"},
			},
			blanks: 2,
		},
		{
			name: "no placeholder gets a free-form blank",
			text: "What is 2+2?",
			want: Prompt{
				{Kind: Text, Text: "What is 2+2?"},
				{Kind: Blank},
			},
			blanks: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.text)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.blanks, got.Blanks())
		})
	}
}

func TestPromptRenderAndString(t *testing.T) {
	p := Parse("{} + {} = 4")
	assert.Equal(t, "___ + ___ = 4", p.Render())
	assert.Equal(t, "{} + {} = 4", p.String())
}

func TestNewTemplateValidates(t *testing.T) {
	_, err := NewTemplate("{} + {} = 4", "2")
	require.ErrorIs(t, err, ErrAnswerMismatch)

	tmpl, err := NewTemplate("{} + {} = 4", "2", "2")
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "2"}, tmpl.Answer)
}

func TestTemplateCheck(t *testing.T) {
	tmpl, err := NewTemplate("Capital of France is {}", "Paris")
	require.NoError(t, err)

	assert.True(t, tmpl.Check(Response{"Paris"}))
	assert.True(t, tmpl.Check(Response{"  paris "}))
	assert.False(t, tmpl.Check(Response{"Lyon"}))
	assert.False(t, tmpl.Check(Response{}))
	assert.False(t, tmpl.Check(Response{"Paris", "extra"}))
}

func TestTemplateEqual(t *testing.T) {
	a, err := NewTemplate("{} is blue", "sky")
	require.NoError(t, err)
	b, err := NewTemplate("{} is blue", "sky")
	require.NoError(t, err)
	c, err := NewTemplate("{} is blue", "sea")
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), c.Key())
}

func TestKindJSON(t *testing.T) {
	data, err := json.Marshal(Block{Kind: Blank})
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"blank"}`, string(data))

	var b Block
	require.NoError(t, json.Unmarshal([]byte(`{"kind":"text","text":"hi"}`), &b))
	assert.Equal(t, Block{Kind: Text, Text: "hi"}, b)

	assert.Error(t, json.Unmarshal([]byte(`{"kind":"image"}`), &b))
	assert.Equal(t, "Kind(9)", Kind(9).String())
}
