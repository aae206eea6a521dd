package common

import "testing"

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "bare object",
			in:   `{"intent": "greeting", "ticket_id": null}`,
			want: `{"intent": "greeting", "ticket_id": null}`,
		},
		{
			name: "object wrapped in prose",
			in:   "Sure! Here is the classification:\n{\"intent\": \"greeting\", \"ticket_id\": null}\nLet me know if you need more.",
			want: `{"intent": "greeting", "ticket_id": null}`,
		},
		{
			name: "object in code fence",
			in:   "```json\n{\"query\": \"wal archiving\"}\n```",
			want: `{"query": "wal archiving"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.in)
			if err != nil {
				t.Fatalf("ExtractJSON failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("ExtractJSON = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractJSONArray(t *testing.T) {
	got, err := ExtractJSON(`The results are [1, 2, 3] as requested.`)
	if err != nil {
		t.Fatalf("ExtractJSON failed: %v", err)
	}
	if got != "[1, 2, 3]" {
		t.Errorf("ExtractJSON = %q", got)
	}
}

func TestExtractJSONNoJSON(t *testing.T) {
	for _, in := range []string{"", "plain prose with no structure", "{broken"} {
		if got, err := ExtractJSON(in); err == nil {
			t.Errorf("ExtractJSON(%q) unexpectedly succeeded with %q", in, got)
		}
	}
}
