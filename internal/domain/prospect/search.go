package prospect

import "strings"

// Filter critères de recherche de la liste des prospects
type Filter struct {
	Query       string
	Statut      string
	Secteur     string
	Wilaya      string
	Temperature string
}

// Matches recherche insensible à la casse sur raison sociale, contact, téléphone et email
func Matches(p *Prospect, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, field := range []string{p.RaisonSociale, p.Contact, p.Telephone, p.Email} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// Search applique le filtre à une collection déjà chargée
func Search(list []Prospect, f Filter) []Prospect {
	out := make([]Prospect, 0, len(list))
	for i := range list {
		p := &list[i]
		if f.Statut != "" && f.Statut != "all" && string(p.Statut) != f.Statut {
			continue
		}
		if f.Secteur != "" && p.Secteur != f.Secteur {
			continue
		}
		if f.Wilaya != "" && p.Wilaya != f.Wilaya {
			continue
		}
		if f.Temperature != "" && string(p.Temperature) != f.Temperature {
			continue
		}
		if !Matches(p, f.Query) {
			continue
		}
		out = append(out, *p)
	}
	return out
}

// Stats répartition par statut
type Stats struct {
	Total     int `json:"total"`
	Prospects int `json:"prospects"`
	Actifs    int `json:"actifs"`
	Inactifs  int `json:"inactifs"`
}

// ComputeStats compte les prospects par statut
func ComputeStats(list []Prospect) Stats {
	s := Stats{Total: len(list)}
	for _, p := range list {
		switch p.Statut {
		case StatusProspect:
			s.Prospects++
		case StatusActif:
			s.Actifs++
		case StatusInactif:
			s.Inactifs++
		}
	}
	return s
}
