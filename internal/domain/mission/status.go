package mission

// Status statut du cycle de vie d'une mission
type Status string

const (
	StatusCreee     Status = "creee"
	StatusPlanifiee Status = "planifiee"
	StatusEnCours   Status = "en_cours"
	StatusCloturee  Status = "cloturee" // clôturée par le chef, en attente de validation
	StatusValidee   Status = "validee"  // clôture définitive
)

// AllStatuses liste les statuts dans l'ordre du cycle de vie
var AllStatuses = []Status{StatusCreee, StatusPlanifiee, StatusEnCours, StatusCloturee, StatusValidee}

// transitions table centrale des changements de statut autorisés
var transitions = map[Status]map[Status]bool{
	StatusCreee:     {StatusPlanifiee: true, StatusEnCours: true},
	StatusPlanifiee: {StatusCreee: true, StatusEnCours: true},
	StatusEnCours:   {StatusCloturee: true},
	StatusCloturee:  {StatusValidee: true},
	StatusValidee:   {},
}

// CanTransition indique si le passage from -> to est autorisé
func CanTransition(from, to Status) bool {
	next, ok := transitions[from]
	if !ok {
		return false
	}
	return next[to]
}

// ParseStatus convertit une chaîne en Status
func ParseStatus(s string) (Status, bool) {
	st := Status(s)
	_, ok := transitions[st]
	return st, ok
}

// IsValid indique si le statut est connu
func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// NotStarted regroupe creee et planifiee
func (s Status) NotStarted() bool {
	return s == StatusCreee || s == StatusPlanifiee
}

// IsClosed vrai pour cloturee et validee
func (s Status) IsClosed() bool {
	return s == StatusCloturee || s == StatusValidee
}

// Bucket retourne le groupe de filtrage (creee et planifiee sont regroupés)
func (s Status) Bucket() Status {
	if s == StatusPlanifiee {
		return StatusCreee
	}
	return s
}

// MatchesFilter applique le filtre de statut des listes
func (s Status) MatchesFilter(filter string) bool {
	if filter == "" || filter == "all" {
		return true
	}
	return s.Bucket() == Status(filter).Bucket()
}

// Label libellé affiché
func (s Status) Label() string {
	switch s {
	case StatusCreee:
		return "Créée"
	case StatusPlanifiee:
		return "Planifiée"
	case StatusEnCours:
		return "En cours"
	case StatusCloturee:
		return "Clôturée (en attente de validation)"
	case StatusValidee:
		return "Validée"
	default:
		return string(s)
	}
}
