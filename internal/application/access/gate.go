// Package access implementa el gate de acceso: predicados puros sobre la
// sesión, sin I/O. Qué vistas puede entrar una sesión y qué pestañas del
// panel de administración ve cada rol son lookups sobre tablas estáticas,
// no cadenas de condicionales.
package access

import (
	"github.com/vallmark/storefront-client/internal/application/session"
	"github.com/vallmark/storefront-client/internal/domain/entity"
)

// Tab pestaña del panel de administración.
type Tab string

const (
	TabOverview       Tab = "overview"
	TabUserManagement Tab = "user_management"
	TabProducts       Tab = "products"
	TabCategories     Tab = "categories"
	TabOrders         Tab = "orders"
	TabCustomers      Tab = "customers"
	TabCampaigns      Tab = "campaigns"
	TabCommissions    Tab = "commissions"
	TabSettings       Tab = "settings"
)

// AllTabs orden de presentación de las pestañas.
var AllTabs = []Tab{
	TabOverview, TabUserManagement, TabProducts, TabCategories, TabOrders,
	TabCustomers, TabCampaigns, TabCommissions, TabSettings,
}

// roleSet conjunto de roles para lookup O(1).
type roleSet map[entity.Role]struct{}

func roles(rs ...entity.Role) roleSet {
	set := make(roleSet, len(rs))
	for _, r := range rs {
		set[r] = struct{}{}
	}
	return set
}

func (s roleSet) has(r entity.Role) bool {
	_, ok := s[r]
	return ok
}

// adminConsoleRoles roles con acceso al panel de administración: todos menos customer.
var adminConsoleRoles = roles(
	entity.RoleSalesperson, entity.RoleStoreAdmin, entity.RoleSalesManager,
	entity.RoleMarketingManager, entity.RoleSupportExecutive,
	entity.RoleStoreOwner, entity.RoleAdmin, entity.RoleSuperAdmin,
)

// managerRoles el conjunto recurrente admin/super_admin/store_owner/managers.
var managerRoles = roles(
	entity.RoleAdmin, entity.RoleSuperAdmin, entity.RoleStoreOwner,
	entity.RoleSalesManager, entity.RoleMarketingManager,
)

// tabVisibility vector de visibilidad de pestañas por rol (tabla estática).
var tabVisibility = map[Tab]roleSet{
	TabOverview:       adminConsoleRoles,
	TabUserManagement: roles(entity.RoleSuperAdmin),
	TabProducts: roles(
		entity.RoleAdmin, entity.RoleSuperAdmin, entity.RoleStoreOwner,
		entity.RoleSalesManager, entity.RoleMarketingManager, entity.RoleSalesperson,
	),
	TabCategories: managerRoles,
	TabOrders: roles(
		entity.RoleAdmin, entity.RoleSuperAdmin, entity.RoleStoreOwner,
		entity.RoleSalesManager, entity.RoleMarketingManager, entity.RoleSalesperson,
	),
	TabCustomers: managerRoles,
	TabCampaigns: managerRoles,
	TabCommissions: roles(
		entity.RoleAdmin, entity.RoleSuperAdmin, entity.RoleStoreOwner,
		entity.RoleSalesManager, entity.RoleMarketingManager, entity.RoleSalesperson,
	),
	TabSettings: roles(entity.RoleAdmin, entity.RoleSuperAdmin, entity.RoleStoreOwner),
}

// IsAuthenticated hay usuario en la sesión.
func IsAuthenticated(s session.Snapshot) bool {
	return s.User != nil
}

// IsAdmin el rol es admin o super_admin.
func IsAdmin(s session.Snapshot) bool {
	return s.User != nil && (s.User.Role == entity.RoleAdmin || s.User.Role == entity.RoleSuperAdmin)
}

// Route vista protegida: ruta + conjunto de roles requerido. Un conjunto
// vacío exige solo sesión iniciada.
type Route struct {
	Path  string
	Roles []entity.Role
}

// Decision resultado del gate. Cuando niega a una sesión sin usuario,
// RedirectTo conserva la ruta pedida para retomarla tras el login.
type Decision struct {
	Allowed    bool
	RedirectTo string // ruta de login con la original preservada; "" si Allowed
}

// CanEnter decide la admisión a una ruta. Determinista: para una sesión fija
// depende únicamente del rol del usuario.
func CanEnter(route Route, s session.Snapshot) Decision {
	if s.User == nil {
		return Decision{Allowed: false, RedirectTo: "/login?next=" + route.Path}
	}
	if len(route.Roles) == 0 {
		return Decision{Allowed: true}
	}
	for _, r := range route.Roles {
		if s.User.Role == r {
			return Decision{Allowed: true}
		}
	}
	return Decision{Allowed: false, RedirectTo: "/login?next=" + route.Path}
}

// TabVisible indica si el rol ve la pestaña (lookup puro en la tabla).
func TabVisible(tab Tab, role entity.Role) bool {
	return tabVisibility[tab].has(role)
}

// VisibleTabs devuelve el vector de pestañas visibles para el rol, en orden
// de presentación.
func VisibleTabs(role entity.Role) []Tab {
	out := make([]Tab, 0, len(AllTabs))
	for _, tab := range AllTabs {
		if TabVisible(tab, role) {
			out = append(out, tab)
		}
	}
	return out
}

// CommissionsOwnOnly el salesperson ve solo sus propias comisiones.
func CommissionsOwnOnly(role entity.Role) bool {
	return role == entity.RoleSalesperson
}

// CanEnterAdminConsole el rol tiene acceso al panel de administración.
func CanEnterAdminConsole(s session.Snapshot) bool {
	return s.User != nil && adminConsoleRoles.has(s.User.Role)
}
