package pages

import (
	"fmt"
	"strings"
)

func pageTitle(city string, year int) string {
	return fmt.Sprintf("Singles in %s - Die besten Dating-Portale %d", city, year)
}

func metaDescription(city string) string {
	return fmt.Sprintf("Entdecke die Dating-Szene in %s. Finde die besten Orte zum Kennenlernen und die top Dating-Portale für Singles in %s.", city, city)
}

func canonicalURL(siteBaseURL, slug string) string {
	return strings.TrimRight(siteBaseURL, "/") + CacheKey(slug)
}

func keywords(city string) string {
	return strings.Join([]string{
		"Single " + city,
		"Singles " + city,
		"Wieviele Singles in " + city,
		"Singles in " + city,
		"Single in " + city,
		"Singles aus " + city,
		"Single aus " + city,
		city + "er Singles",
		city + " Singles",
	}, ", ")
}
