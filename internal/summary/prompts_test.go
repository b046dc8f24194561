package summary

import "testing"

// TestNormalizeStyleKey covers separator and character cleanup.
func TestNormalizeStyleKey(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"short", "short"},
		{"Action Items", "action_items"},
		{"  bullet-points  ", "bullet_points"},
		{"Déjà!!Vu", "djvu"},
		{"___", ""},
		{"", ""},
	}

	for _, tc := range cases {
		if got := NormalizeStyleKey(tc.in); got != tc.want {
			t.Fatalf("NormalizeStyleKey(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

// TestMergePromptTemplates checks override layering over defaults.
func TestMergePromptTemplates(t *testing.T) {
	merged := MergePromptTemplates(map[string]string{
		"Short":     "Custom short prompt.",
		"new style": "Prompt for a new style.",
		"bullet":    "   ",
		"":          "ignored",
	})

	if merged["short"] != "Custom short prompt." {
		t.Fatalf("short = %q", merged["short"])
	}
	if merged["new_style"] != "Prompt for a new style." {
		t.Fatalf("new_style = %q", merged["new_style"])
	}
	if merged["bullet"] != defaultTemplates["bullet"] {
		t.Fatalf("blank override should keep default, got %q", merged["bullet"])
	}
	if merged["detailed"] != defaultTemplates["detailed"] {
		t.Fatal("untouched defaults should survive the merge")
	}
}

// TestDefaultPromptTemplatesIsACopy guards against aliasing the package map.
func TestDefaultPromptTemplatesIsACopy(t *testing.T) {
	first := DefaultPromptTemplates()
	first["short"] = "mutated"

	if DefaultPromptTemplates()["short"] == "mutated" {
		t.Fatal("DefaultPromptTemplates must return a fresh copy")
	}
}
