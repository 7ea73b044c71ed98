package nav

// Package nav holds the static navigation catalog and the authorization logic
// that filters it down to what the signed-in role may see.

import (
	domainacl "github.com/lapor-kampus/lapor-ui-api/internal/domain/acl"
	domainauth "github.com/lapor-kampus/lapor-ui-api/internal/domain/auth"
)

// Category groups navigation items in the sidebar.
type Category string

const (
	CategoryDashboard Category = "Dashboard"
	CategoryLaporan   Category = "Laporan"
	CategoryKelola    Category = "Kelola"
	CategoryTambah    Category = "Tambah"
	CategoryTambahWbs Category = "TambahWbs"
	CategoryAkun      Category = "Akun"
)

// categoryOrder fixes the rendering order of groups.
var categoryOrder = []Category{
	CategoryDashboard,
	CategoryLaporan,
	CategoryKelola,
	CategoryTambah,
	CategoryTambahWbs,
	CategoryAkun,
}

// Item is one navigation destination. The catalog is static and never mutated
// at runtime; authorization filters a copy per request.
type Item struct {
	Key      string   `json:"key"`
	Title    string   `json:"title"`
	Href     string   `json:"href"`
	Icon     string   `json:"icon"`
	Category Category `json:"category"`

	// Subject is the ACL subject gating this item (empty for role-gated
	// and always-visible categories).
	Subject string `json:"-"`

	eligible map[domainauth.Role]bool
}

// EligibleFor reports whether the role may ever see this item.
func (i Item) EligibleFor(r domainauth.Role) bool { return i.eligible[r] }

// Group is an ordered, category-labelled slice of authorized items.
type Group struct {
	Category Category `json:"category"`
	Items    []Item   `json:"items"`
}

func roles(rs ...domainauth.Role) map[domainauth.Role]bool {
	m := make(map[domainauth.Role]bool, len(rs))
	for _, r := range rs {
		m[r] = true
	}
	return m
}

var (
	petugasRoles = []domainauth.Role{
		domainauth.RolePetugas, domainauth.RolePetugasSuper, domainauth.RoleKepalaPetugasUnit,
	}
	wbsRoles = []domainauth.Role{
		domainauth.RolePetugasWBS, domainauth.RoleKepalaWBS,
	}
	reporterRoles = []domainauth.Role{
		domainauth.RoleMahasiswa, domainauth.RoleDosen, domainauth.RoleTenagaKependidikan,
	}
)

// catalog is the static menu-item catalog.
var catalog = []Item{
	{
		Key: "pelaporan", Title: "Pelaporan", Href: "/petugas/pelaporan", Icon: "report",
		Category: CategoryLaporan, Subject: "PELAPORAN",
		eligible: roles(append(petugasRoles, domainauth.RoleAdmin)...),
	},
	{
		Key: "pelaporan-wbs", Title: "Pelaporan WBS", Href: "/petugas-wbs/pelaporan", Icon: "report",
		Category: CategoryLaporan, Subject: "PELAPORAN_WBS",
		eligible: roles(append(wbsRoles, domainauth.RoleAdmin)...),
	},
	{
		Key: "unit", Title: "Unit", Href: "/admin/unit", Icon: "apartment",
		Category: CategoryKelola, Subject: "UNIT",
		eligible: roles(domainauth.RoleAdmin),
	},
	{
		Key: "kategori", Title: "Kategori", Href: "/admin/kategori", Icon: "category",
		Category: CategoryKelola, Subject: "KATEGORI",
		eligible: roles(domainauth.RoleAdmin),
	},
	{
		Key: "kategori-wbs", Title: "Kategori WBS", Href: "/admin/kategori-wbs", Icon: "category",
		Category: CategoryKelola, Subject: "KATEGORI_WBS",
		eligible: roles(domainauth.RoleAdmin),
	},
	{
		Key: "pengguna", Title: "Pengguna", Href: "/admin/users", Icon: "group",
		Category: CategoryKelola, Subject: "USER",
		eligible: roles(domainauth.RoleAdmin),
	},
	{
		Key: "tambah-petugas", Title: "Tambah Petugas", Href: "/petugas/tambah", Icon: "person-add",
		Category: CategoryTambah,
		eligible: roles(domainauth.RoleKepalaPetugasUnit),
	},
	{
		Key: "tambah-petugas-wbs", Title: "Tambah Petugas WBS", Href: "/petugas-wbs/tambah", Icon: "person-add",
		Category: CategoryTambahWbs,
		eligible: roles(domainauth.RoleKepalaWBS),
	},
	{
		Key: "akun", Title: "Akun Saya", Href: "/dashboard/akun", Icon: "account",
		Category: CategoryAkun,
		eligible: roles(reporterRoles...),
	},
	{
		Key: "akun-petugas", Title: "Akun Saya", Href: "/petugas/akun", Icon: "account",
		Category: CategoryAkun,
		eligible: roles(petugasRoles...),
	},
	{
		Key: "akun-wbs", Title: "Akun Saya", Href: "/petugas-wbs/akun", Icon: "account",
		Category: CategoryAkun,
		eligible: roles(wbsRoles...),
	},
	{
		Key: "akun-admin", Title: "Akun Saya", Href: "/admin/akun", Icon: "account",
		Category: CategoryAkun,
		eligible: roles(domainauth.RoleAdmin),
	},
}

// Catalog returns a copy of the static catalog, mainly for tests.
func Catalog() []Item {
	out := make([]Item, len(catalog))
	copy(out, catalog)
	return out
}

// Authorize filters the catalog down to the items the role may see, grouped
// and ordered by category:
//
//   - the role's landing dashboard item is always prepended (roles absent
//     from the landing table get none);
//   - Akun items are always included for eligible roles;
//   - once permissions have resolved, Tambah / TambahWbs gate purely on role
//     identity, not on any subject grant;
//   - every other item requires full read/create/update/delete on its subject
//     in the resolved permission set.
//
// A nil permission set means "unresolved" and yields the minimal safe set:
// dashboard and account only, never the full catalog.
func Authorize(role domainauth.Role, perms domainacl.PermissionSet) []Group {
	byCategory := make(map[Category][]Item, len(categoryOrder))

	if home, ok := domainauth.Landing(role); ok {
		byCategory[CategoryDashboard] = []Item{{
			Key: "dashboard", Title: "Dashboard", Href: home, Icon: "dashboard",
			Category: CategoryDashboard,
		}}
	}

	for _, item := range catalog {
		if !item.EligibleFor(role) {
			continue
		}
		if !admissible(item, role, perms) {
			continue
		}
		byCategory[item.Category] = append(byCategory[item.Category], item)
	}

	groups := make([]Group, 0, len(byCategory))
	for _, cat := range categoryOrder {
		if items := byCategory[cat]; len(items) > 0 {
			groups = append(groups, Group{Category: cat, Items: items})
		}
	}
	return groups
}

// admissible applies the per-category gate for one eligible item.
func admissible(item Item, role domainauth.Role, perms domainacl.PermissionSet) bool {
	if item.Category == CategoryAkun {
		// Every authenticated user may reach their own account page.
		return true
	}
	// Unresolved permissions admit nothing past dashboard and account,
	// role-gated entries included.
	if perms == nil {
		return false
	}
	switch item.Category {
	case CategoryTambah:
		return role == domainauth.RoleKepalaPetugasUnit
	case CategoryTambahWbs:
		return role == domainauth.RoleKepalaWBS
	default:
		return perms.HasFullCRUD(item.Subject)
	}
}
