package delivery

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "simple", input: "Newsletter", want: "newsletter"},
		{name: "spaces", input: "Spring Launch 2026", want: "spring-launch-2026"},
		{name: "mixed separators", input: "beta_users.v2", want: "beta-users-v2"},
		{name: "strips other characters", input: "Hello, World!", want: "hello-world"},
		{name: "empty falls back", input: "!!!", want: "audience"},
		{name: "trims surrounding dashes", input: " -padded- ", want: "padded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := slugify(tt.input); got != tt.want {
				t.Errorf("slugify(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
