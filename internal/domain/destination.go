package domain

// Destination names a logical area of the front-end.
type Destination string

const (
	DestinationLogin          Destination = "login"
	DestinationAreaSelector   Destination = "area_selector"
	DestinationAdminArea      Destination = "admin"
	DestinationSellerArea     Destination = "vendedor"
	DestinationConsultantArea Destination = "consultor"
)

// Path returns the route serving the destination.
func (d Destination) Path() string {
	switch d {
	case DestinationAreaSelector:
		return "/dashboard-selector"
	case DestinationAdminArea:
		return "/admin"
	case DestinationSellerArea:
		return "/vendedor"
	case DestinationConsultantArea:
		return "/consultor"
	default:
		return "/login"
	}
}

// MenuItem is one navigation entry of an area.
type MenuItem struct {
	Title    string     `json:"title"`
	Path     string     `json:"path,omitempty"`
	SubItems []MenuItem `json:"sub_items,omitempty"`
}

// AreaMenu returns the navigation menu shown for a role.
func AreaMenu(role Role) []MenuItem {
	switch role {
	case RoleAdmin:
		return []MenuItem{
			{Title: "Dashboard", Path: "/admin"},
			{Title: "Gestión de Usuarios", SubItems: []MenuItem{
				{Title: "Lista de usuarios", Path: "/admin/users"},
				{Title: "Crear usuario", Path: "/admin/users/create"},
				{Title: "Gestión de roles", Path: "/admin/users/roles"},
			}},
			{Title: "Gestión de Productos", SubItems: []MenuItem{
				{Title: "Inventario", Path: "/admin/products"},
				{Title: "Tipos de IVA", Path: "/admin/taxes"},
				{Title: "Gestión de Marcas", Path: "/admin/products/brands"},
				{Title: "Crear Producto", Path: "/admin/products/create"},
			}},
		}
	case RoleVendedor:
		return []MenuItem{
			{Title: "Dashboard", Path: "/vendedor"},
			{Title: "Ventas", Path: "/vendedor/sales"},
			{Title: "Nueva Venta", Path: "/vendedor/sales/new"},
		}
	case RoleConsultor:
		return []MenuItem{
			{Title: "Dashboard", Path: "/consultor"},
			{Title: "Reportes", Path: "/consultor/reports"},
		}
	default:
		return nil
	}
}
