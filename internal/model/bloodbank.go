package model

import "time"

// BloodTypes lists the eight canonical blood types tracked by every
// blood-bank inventory. Order is the display order used by dashboards.
var BloodTypes = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

// ValidBloodType reports whether bt is one of the eight canonical types.
func ValidBloodType(bt string) bool {
	for _, t := range BloodTypes {
		if t == bt {
			return true
		}
	}
	return false
}

// UnitVolumeML is the whole-unit volume used when crediting inventory
// from a completed donation: floor(volume_ml / 450) units are added.
const UnitVolumeML = 450

// BloodBank is a storage facility holding per-type unit counts.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – facility name.
//  Address   – street address.
//  Phone     – contact phone.
//  CreatedAt – creation timestamp.
type BloodBank struct {
	ID        uint64    // blood_banks.id
	Name      string    // blood_banks.name
	Address   string    // blood_banks.address
	Phone     string    // blood_banks.phone
	CreatedAt time.Time // blood_banks.created_at
}

// InventoryEntry is the unit count for one blood type at one bank.
// Units never go below zero; removals clamp at zero.
type InventoryEntry struct {
	BloodBankID uint64 // blood_inventory.blood_bank_id
	BloodType   string // blood_inventory.blood_type
	Units       uint32 // blood_inventory.units
}
