package repository

import (
	"context"
	"database/sql"

	"github.com/hemolink/blood-bank-api/internal/model"
)

// BloodBankRepo persists blood banks and their per-type inventory counts.
// Inventory rows are keyed (blood_bank_id, blood_type) and unit counts are
// clamped at zero on removal.
type BloodBankRepo struct {
	db *sql.DB
}

// NewBloodBankRepo returns a new BloodBankRepo bound to the given database.
func NewBloodBankRepo(db *sql.DB) *BloodBankRepo { return &BloodBankRepo{db: db} }

// Create inserts a blood bank together with zeroed inventory rows for all
// eight canonical blood types, in one transaction-joined sequence.
func (r *BloodBankRepo) Create(ctx context.Context, b *model.BloodBank) error {
	const q = `INSERT INTO blood_banks (name, address, phone) VALUES (?, ?, ?)`
	result, err := exec(ctx, r.db).ExecContext(ctx, q, b.Name, b.Address, b.Phone)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	const inv = `INSERT INTO blood_inventory (blood_bank_id, blood_type, units) VALUES (?, ?, 0)`
	for _, bt := range model.BloodTypes {
		if _, err := exec(ctx, r.db).ExecContext(ctx, inv, b.ID, bt); err != nil {
			return err
		}
	}
	return nil
}

// Update overwrites name, address and phone.
func (r *BloodBankRepo) Update(ctx context.Context, b *model.BloodBank) error {
	const q = `UPDATE blood_banks SET name = ?, address = ?, phone = ? WHERE id = ?`
	_, err := exec(ctx, r.db).ExecContext(ctx, q, b.Name, b.Address, b.Phone, b.ID)
	return err
}

// Delete removes a bank and its inventory rows.
func (r *BloodBankRepo) Delete(ctx context.Context, id uint64) error {
	if _, err := exec(ctx, r.db).ExecContext(ctx, `DELETE FROM blood_inventory WHERE blood_bank_id = ?`, id); err != nil {
		return err
	}
	_, err := exec(ctx, r.db).ExecContext(ctx, `DELETE FROM blood_banks WHERE id = ?`, id)
	return err
}

// GetByID returns a single bank. sql.ErrNoRows when absent.
func (r *BloodBankRepo) GetByID(ctx context.Context, id uint64) (model.BloodBank, error) {
	const q = `SELECT id, name, address, phone, created_at FROM blood_banks WHERE id = ?`
	var b model.BloodBank
	err := exec(ctx, r.db).QueryRowContext(ctx, q, id).Scan(&b.ID, &b.Name, &b.Address, &b.Phone, &b.CreatedAt)
	return b, err
}

// List returns all banks ordered by name.
func (r *BloodBankRepo) List(ctx context.Context) ([]model.BloodBank, error) {
	const q = `SELECT id, name, address, phone, created_at FROM blood_banks ORDER BY name`
	rows, err := exec(ctx, r.db).QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.BloodBank, 0)
	for rows.Next() {
		var b model.BloodBank
		if err := rows.Scan(&b.ID, &b.Name, &b.Address, &b.Phone, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Inventory returns the bank's unit counts in canonical blood-type order.
func (r *BloodBankRepo) Inventory(ctx context.Context, bankID uint64) ([]model.InventoryEntry, error) {
	const q = `SELECT blood_bank_id, blood_type, units FROM blood_inventory
	           WHERE blood_bank_id = ?
	           ORDER BY FIELD(blood_type, 'A+','A-','B+','B-','AB+','AB-','O+','O-')`
	rows, err := exec(ctx, r.db).QueryContext(ctx, q, bankID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.InventoryEntry, 0, len(model.BloodTypes))
	for rows.Next() {
		var e model.InventoryEntry
		if err := rows.Scan(&e.BloodBankID, &e.BloodType, &e.Units); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// AdjustInventory adds delta units to one blood type at one bank, clamping
// the result at zero. The row is created on first use so banks predating a
// schema backfill still work. sql.ErrNoRows is returned when the bank does
// not exist.
func (r *BloodBankRepo) AdjustInventory(ctx context.Context, bankID uint64, bloodType string, delta int) error {
	var id uint64
	if err := exec(ctx, r.db).QueryRowContext(ctx, `SELECT id FROM blood_banks WHERE id = ?`, bankID).Scan(&id); err != nil {
		return err
	}
	const q = `INSERT INTO blood_inventory (blood_bank_id, blood_type, units)
	           VALUES (?, ?, GREATEST(?, 0))
	           ON DUPLICATE KEY UPDATE units = GREATEST(CAST(units AS SIGNED) + ?, 0)`
	_, err := exec(ctx, r.db).ExecContext(ctx, q, bankID, bloodType, delta, delta)
	return err
}

// TotalsByType sums inventory across all banks per blood type for the
// admin dashboard.
func (r *BloodBankRepo) TotalsByType(ctx context.Context) (map[string]uint32, error) {
	const q = `SELECT blood_type, COALESCE(SUM(units), 0) FROM blood_inventory GROUP BY blood_type`
	rows, err := exec(ctx, r.db).QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]uint32, len(model.BloodTypes))
	for rows.Next() {
		var bt string
		var units uint32
		if err := rows.Scan(&bt, &units); err != nil {
			return nil, err
		}
		out[bt] = units
	}
	return out, rows.Err()
}
