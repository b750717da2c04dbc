package ai

import "testing"

func TestExtractJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "plain object",
			input:  `  {"fit": true}  `,
			expect: `{"fit": true}`,
		},
		{
			name:   "json fence",
			input:  "```json\n{\"matches\": []}\n```",
			expect: `{"matches": []}`,
		},
		{
			name:   "bare fence",
			input:  "```\n[\"a\", \"b\"]\n```",
			expect: `["a", "b"]`,
		},
		{
			name:   "single line fence",
			input:  "```json{\"a\":1}```",
			expect: `{"a":1}`,
		},
		{
			name:   "missing closing fence",
			input:  "```json\n{\"a\":1}",
			expect: `{"a":1}`,
		},
		{
			name:   "upper case tag",
			input:  "```JSON\n[]\n```\n",
			expect: `[]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ExtractJSON(tt.input); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}
