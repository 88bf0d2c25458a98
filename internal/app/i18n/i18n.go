// Package i18n resolves (language, key) pairs to display strings with
// {name}/{email} placeholder substitution. Lookup is data, not
// dispatch: a literal string that is not a catalog key renders as
// itself, so inbox messages can carry either.
package i18n

import "strings"

// catalog maps language → key → template.
var catalog = map[string]map[string]string{
	"en": {
		"inbox.sender.twin": "Your Twin",

		"inbox.welcome.subject": "Welcome, {name}!",
		"inbox.welcome.body":    "Your virtual twin is up and running. Day plans, habits and rewards all live here. A confirmation went out to {email}.",

		"inbox.levelup.subject": "Level up!",
		"inbox.levelup.body":    "Nice work, {name} — your twin just reached a new level. Energy fully restored.",

		"inbox.streak3.subject": "3-day streak!",
		"inbox.streak3.body":    "{name}, you kept a habit going three days in a row. Bonus experience awarded.",
	},
	"de": {
		"inbox.sender.twin": "Dein Twin",

		"inbox.welcome.subject": "Willkommen, {name}!",
		"inbox.welcome.body":    "Dein virtueller Twin ist startklar. Tagespläne, Gewohnheiten und Belohnungen findest du hier. Eine Bestätigung ging an {email}.",

		"inbox.levelup.subject": "Level aufgestiegen!",
		"inbox.levelup.body":    "Stark, {name} — dein Twin hat ein neues Level erreicht. Energie voll aufgeladen.",

		"inbox.streak3.subject": "3-Tage-Serie!",
		"inbox.streak3.body":    "{name}, du hast eine Gewohnheit drei Tage in Folge durchgehalten. Bonuspunkte gutgeschrieben.",
	},
}

// Vars are the placeholder values substituted after lookup.
type Vars struct {
	Name  string
	Email string
}

// Render resolves key in the given language, falling back to English,
// then to the key itself, and substitutes placeholders.
func Render(lang, key string, vars Vars) string {
	tmpl := key
	if m, ok := catalog[lang]; ok {
		if s, ok := m[key]; ok {
			tmpl = s
		} else if s, ok := catalog["en"][key]; ok {
			tmpl = s
		}
	} else if s, ok := catalog["en"][key]; ok {
		tmpl = s
	}

	tmpl = strings.ReplaceAll(tmpl, "{name}", vars.Name)
	tmpl = strings.ReplaceAll(tmpl, "{email}", vars.Email)
	return tmpl
}

// Languages returns the languages the catalog knows about.
func Languages() []string {
	out := make([]string, 0, len(catalog))
	for lang := range catalog {
		out = append(out, lang)
	}
	return out
}
