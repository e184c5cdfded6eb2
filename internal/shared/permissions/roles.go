package permissions

import "slices"

// Role rôle applicatif d'un utilisateur
type Role string

const (
	RoleSuperAdmin   Role = "super_admin"
	RoleAdmin        Role = "admin"
	RoleChefMission  Role = "chef_mission"
	RoleTechnicien   Role = "technicien"
	RoleCommercial   Role = "commercial"
	RoleComptabilite Role = "comptabilite"
	RoleClient       Role = "client"
)

// AllRoles liste des rôles reconnus
var AllRoles = []Role{
	RoleSuperAdmin, RoleAdmin, RoleChefMission, RoleTechnicien,
	RoleCommercial, RoleComptabilite, RoleClient,
}

func (r Role) IsValid() bool { return slices.Contains(AllRoles, r) }

// IsAdmin vrai pour admin et super_admin
func (r Role) IsAdmin() bool { return r == RoleAdmin || r == RoleSuperAdmin }

// Label libellé affiché
func (r Role) Label() string {
	switch r {
	case RoleSuperAdmin:
		return "Super Administrateur"
	case RoleAdmin:
		return "Administrateur"
	case RoleChefMission:
		return "Chef de Mission"
	case RoleTechnicien:
		return "Technicien"
	case RoleCommercial:
		return "Commercial"
	case RoleComptabilite:
		return "Comptabilité"
	case RoleClient:
		return "Client"
	}
	return string(r)
}

// Actor utilisateur authentifié porté explicitement dans chaque vérification
type Actor struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Nom    string `json:"nom"`
	Role   Role   `json:"role"`
}

func (a Actor) IsAdmin() bool { return a.Role.IsAdmin() }

// IsAuthenticated vrai si l'acteur porte un identifiant et un rôle connu
func (a Actor) IsAuthenticated() bool { return a.UserID != "" && a.Role.IsValid() }

// HasRole vrai si l'acteur possède l'un des rôles
func (a Actor) HasRole(roles ...Role) bool { return slices.Contains(roles, a.Role) }

// CanManageUsers création des comptes utilisateurs
func CanManageUsers(a Actor) bool { return a.IsAdmin() }

// CanManageApplications écriture du catalogue d'applications
func CanManageApplications(a Actor) bool { return a.IsAdmin() }

// CanDeleteProspect suppression définitive d'un prospect ou client
func CanDeleteProspect(a Actor) bool { return a.IsAdmin() }

// CanChangeClientStatus bascule actif <-> inactif
func CanChangeClientStatus(a Actor) bool { return a.IsAdmin() }

// CanReadJournal consultation du journal d'audit
func CanReadJournal(a Actor) bool { return a.IsAdmin() }

// CanRunRenewals déclenchement manuel du renouvellement des abonnements
func CanRunRenewals(a Actor) bool { return a.IsAdmin() }

// CanManageBilling saisie des installations et paiements
func CanManageBilling(a Actor) bool {
	return a.IsAdmin() || a.HasRole(RoleCommercial, RoleComptabilite, RoleTechnicien)
}

// CanManageProspects saisie des prospects et de leur historique
func CanManageProspects(a Actor) bool {
	return a.IsAdmin() || a.HasRole(RoleCommercial, RoleChefMission, RoleTechnicien)
}
