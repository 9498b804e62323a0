package pages

import (
	"hash/fnv"

	"singlepages/internal/domain"
	"singlepages/internal/providers/content"
)

const recommendedCount = 2

type affiliate struct {
	name        string
	description string
	link        string
	features    []string
}

var affiliates = []affiliate{
	{
		name:        "Parship",
		description: "Eine der führenden Partnervermittlungen für Singles in {{ .City }}",
		link:        "https://singleboersen-aktuell.de/go/target.php?v=parship",
		features: []string{
			"Eine der größten Mitgliederdatenbanken",
			"Hohe Erfolgsquote durch bewährtes Matching",
			"Hoher Anteil an Akademikern",
			"Geeignet für berufstätige Singles mit wenig Zeit",
			"Sehr guter Kundenservice",
		},
	},
	{
		name:        "ElitePartner",
		description: "Hoher Anteil an Akademikern unter den Singles in {{ .City }}",
		link:        "https://singleboersen-aktuell.de/go/target.php?v=elitepartner",
		features: []string{
			"Hoher Anteil an Akademikern",
			"Hohe Erfolgsquote von 42 % mit wissenschaftlichem Matching",
			"Geeignet für berufstätige Singles mit Niveau",
		},
	},
	{
		name:        "LemonSwan",
		description: "Moderne wissenschaftliche Partnervermittlung für {{ .City }}",
		link:        "https://singleboersen-aktuell.de/go/target.php?v=lemonswan",
		features: []string{
			"Aktuellstes, wissenschaftlich fundiertes Matching",
			"Hoher Anteil an Akademikern",
			"Geeignet für berufstätige Singles",
			"Alle Profile werden von Hand geprüft",
			"Kostenlose Premium-Mitgliedschaft für Alleinerziehende und Studenten",
		},
	},
}

// RecommendedSites picks two affiliates for a city. The choice depends only
// on the slug so regenerated pages keep the same recommendations.
func RecommendedSites(data content.PromptData) []domain.RecommendedSite {
	h := fnv.New32a()
	_, _ = h.Write([]byte(data.Slug))
	start := int(h.Sum32() % uint32(len(affiliates)))

	sites := make([]domain.RecommendedSite, 0, recommendedCount)
	for i := 0; i < recommendedCount; i++ {
		a := affiliates[(start+i)%len(affiliates)]
		description, err := content.RenderTemplate(a.name, a.description, data)
		if err != nil {
			description = a.description
		}
		sites = append(sites, domain.RecommendedSite{
			Name:        a.name,
			Description: description,
			Link:        a.link,
			Features:    append([]string(nil), a.features...),
		})
	}
	return sites
}
