package consumer

import "time"

// seasonFor deriva a temporada a partir da data do jogo.
// MLB usa o ano-calendário; as demais ligas viram a temporada em agosto
func seasonFor(sport string, t time.Time) int {
	if sport == "mlb" {
		return t.Year()
	}
	if t.Month() >= time.August {
		return t.Year()
	}
	return t.Year() - 1
}

// weekFor calcula a semana da temporada para ligas de futebol americano.
// A semana 1 começa na primeira quinta-feira de setembro; fora disso retorna 0
func weekFor(sport string, t time.Time) int {
	if sport != "nfl" && sport != "ncaaf" {
		return 0
	}
	start := firstThursdayOfSeptember(seasonFor(sport, t))
	if t.Before(start) {
		return 0
	}
	week := int(t.Sub(start).Hours()/(24*7)) + 1
	if week > 25 {
		return 0
	}
	return week
}

// firstThursdayOfSeptember retorna a primeira quinta-feira de setembro em UTC
func firstThursdayOfSeptember(year int) time.Time {
	d := time.Date(year, time.September, 1, 0, 0, 0, 0, time.UTC)
	for d.Weekday() != time.Thursday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}
