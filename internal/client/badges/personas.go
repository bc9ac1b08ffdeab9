package badges

// Persona is an avatar choice offered during anonymous setup.
type Persona struct {
	Key         string
	Name        string
	Glyph       string
	Description string
}

var UnknownPersona = Persona{Key: "unknown", Name: "Unknown Persona", Glyph: "👤", Description: "No persona selected."}

var personas = map[string]Persona{
	"owl":    {"owl", "Wise Owl", "🦉", "Reads every bill before voting."},
	"fox":    {"fox", "Clever Fox", "🦊", "Finds the story behind the headline."},
	"bee":    {"bee", "Busy Bee", "🐝", "Shows up to every town hall."},
	"turtle": {"turtle", "Steady Turtle", "🐢", "Slow, careful and always informed."},
	"eagle":  {"eagle", "Watchful Eagle", "🦅", "Keeps an eye on public promises."},
	"dove":   {"dove", "Peaceful Dove", "🕊️", "Brings people to the same table."},
}

func ResolvePersona(key string) Persona {
	if p, ok := personas[key]; ok {
		return p
	}
	return UnknownPersona
}

// PersonaByGlyph finds the persona whose glyph is g.
func PersonaByGlyph(g string) (Persona, bool) {
	for _, p := range personas {
		if p.Glyph == g {
			return p, true
		}
	}
	return Persona{}, false
}

// Personas returns the catalogue in a stable order.
func Personas() []Persona {
	keys := []string{"owl", "fox", "bee", "turtle", "eagle", "dove"}
	out := make([]Persona, 0, len(keys))
	for _, k := range keys {
		out = append(out, personas[k])
	}
	return out
}
