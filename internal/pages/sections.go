package pages

import "singlepages/internal/domain"

const sectionSuffix = " Do not write a concluding paragraph. Do not return the title."

// DefaultSections is the ordered topic list of a city page. The first entry
// becomes the introduction.
var DefaultSections = []domain.Section{
	{
		Title: "{{ .City }} – Die Stadt der Singles",
		PromptTemplate: "Write a welcoming introduction about singles in {{ .City }}, focusing on the city's appeal for singles and dating. " +
			"Include why {{ .City }} is an exciting place for singles." + sectionSuffix,
	},
	{
		Title: "{{ .City }}: Eine Stadt für Lebensfreude und Begegnungen",
		PromptTemplate: "Describe {{ .City }}'s unique characteristics, culture, and lifestyle that make it attractive for singles. " +
			"Include specific details about the city's atmosphere and what makes it special for dating." + sectionSuffix,
	},
	{
		Title: "Die besten Orte, um andere Singles zu treffen",
		PromptTemplate: "List and describe the best places in {{ .City }} for singles to meet, including popular bars, cafes, cultural venues, and outdoor spaces. " +
			"Be specific about locations and what makes them good for meeting people. Use one bullet lists where appropriate." + sectionSuffix,
	},
	{
		Title: "Singles in {{ .City }}",
		PromptTemplate: "Provide information about the single population in {{ .City }}, including demographics, age distribution, and interesting statistics about singles in the city. " +
			"Be concise." + sectionSuffix,
	},
	{
		Title: "Veranstaltungen und Netzwerke für Singles in {{ .City }}",
		PromptTemplate: "Detail the various events, meetups, and networking opportunities available for singles in {{ .City }}. " +
			"Include specific events and organizations that cater to singles." + sectionSuffix,
	},
	{
		Title: "Tipps für erfolgreiches Dating in {{ .City }}",
		PromptTemplate: "Give helpful and actionable tips for successful dating in {{ .City }} considering the regional mentality and customs{{ with .Region }} of {{ . }}{{ end }}. " +
			"Promote authenticity and openness as the keys to success. Share some {{ .City }} specific insights for more online dating success." + sectionSuffix,
	},
	{
		Title: "Fazit: Warum {{ .City }} ideal für Singles ist",
		PromptTemplate: "Provide a summary of the advantages for singles in {{ .City }}. " +
			"Encouragement to use the potential of the city and online dating to meet new people. " +
			`Close with a call-to-action: "Trau dich, {{ .City }}s Single-Welt zu entdecken!".` + sectionSuffix,
	},
}

// DefaultImageQueries are the stock photo searches run for every page.
var DefaultImageQueries = []string{
	"{{ .City }}",
	"{{ .City }} city",
}
