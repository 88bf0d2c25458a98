package i18n_test

import (
	"strings"
	"testing"

	"github.com/twinlab/twin/internal/app/i18n"
)

func TestRender_Substitution(t *testing.T) {
	got := i18n.Render("en", "inbox.welcome.subject", i18n.Vars{Name: "Ada"})
	if got != "Welcome, Ada!" {
		t.Errorf("expected greeting with name, got %q", got)
	}

	body := i18n.Render("en", "inbox.welcome.body", i18n.Vars{Name: "Ada", Email: "ada@example.com"})
	if !strings.Contains(body, "ada@example.com") {
		t.Errorf("expected email substituted, got %q", body)
	}
}

func TestRender_German(t *testing.T) {
	got := i18n.Render("de", "inbox.welcome.subject", i18n.Vars{Name: "Ada"})
	if got != "Willkommen, Ada!" {
		t.Errorf("expected German greeting, got %q", got)
	}
}

func TestRender_FallbackToEnglish(t *testing.T) {
	// Unknown language falls back to the English catalog.
	got := i18n.Render("fr", "inbox.levelup.subject", i18n.Vars{})
	if got != "Level up!" {
		t.Errorf("expected English fallback, got %q", got)
	}
}

func TestRender_LiteralPassThrough(t *testing.T) {
	// Non-key strings render as themselves, placeholders included.
	got := i18n.Render("en", "You did it, {name}!", i18n.Vars{Name: "Ada"})
	if got != "You did it, Ada!" {
		t.Errorf("expected literal with substitution, got %q", got)
	}
}

func TestLanguages(t *testing.T) {
	langs := i18n.Languages()
	found := map[string]bool{}
	for _, l := range langs {
		found[l] = true
	}
	if !found["en"] || !found["de"] {
		t.Errorf("expected en and de, got %v", langs)
	}
}
