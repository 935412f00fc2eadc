package entity

import "time"

// Tipos de bodega.
const (
	WarehouseTypeMain         = "main"
	WarehouseTypeRegional     = "regional"
	WarehouseTypeDistribution = "distribution"
	WarehouseTypeStorage      = "storage"
	WarehouseTypeOther        = "other"
)

// Estados de bodega.
const (
	WarehouseStatusActive      = "active"
	WarehouseStatusInactive    = "inactive"
	WarehouseStatusMaintenance = "maintenance"
)

// Warehouse representa una bodega donde se almacena inventario.
type Warehouse struct {
	ID        string
	Name      string
	Code      string // único, en mayúsculas
	Address   string
	Type      string // main, regional, distribution, storage, other
	Status    string // active, inactive, maintenance
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidWarehouseType indica si t es un tipo de bodega conocido.
func ValidWarehouseType(t string) bool {
	switch t {
	case WarehouseTypeMain, WarehouseTypeRegional, WarehouseTypeDistribution, WarehouseTypeStorage, WarehouseTypeOther:
		return true
	}
	return false
}

// ValidWarehouseStatus indica si s es un estado de bodega conocido.
func ValidWarehouseStatus(s string) bool {
	switch s {
	case WarehouseStatusActive, WarehouseStatusInactive, WarehouseStatusMaintenance:
		return true
	}
	return false
}
