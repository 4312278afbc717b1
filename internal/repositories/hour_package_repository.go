package repositories

import (
	"context"
	"database/sql"

	"mindaudit/internal/models"
)

type HourPackageRepository struct {
	DB *sql.DB
}

func scanHourPackage(scanner interface{ Scan(dest ...any) error }) (models.HourPackage, error) {
	var p models.HourPackage
	var hours, price float64
	var discount sql.NullFloat64
	var updated sql.NullTime
	err := scanner.Scan(&p.ID, &p.Name, &hours, &price, &discount, &p.Active, &p.CreatedAt, &updated)
	if err != nil {
		return models.HourPackage{}, err
	}
	p.Hours = models.HoursFromDecimal(hours)
	p.PriceCents = models.HoursFromDecimal(price)
	if discount.Valid {
		bp := models.HoursFromDecimal(discount.Float64)
		p.DiscountPercentBP = &bp
	}
	if updated.Valid {
		t := updated.Time
		p.UpdatedAt = &t
	}
	return p, nil
}

const hourPackageColumns = `id, name, hours, price, discount_percent, active, created_at, updated_at`

func (r *HourPackageRepository) GetByID(ctx context.Context, id int) (models.HourPackage, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+hourPackageColumns+` FROM hour_packages WHERE id = ?`, id)
	p, err := scanHourPackage(row)
	if err == sql.ErrNoRows {
		return models.HourPackage{}, models.ErrPackageNotFound
	}
	return p, err
}

func (r *HourPackageRepository) ListActive(ctx context.Context) ([]models.HourPackage, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+hourPackageColumns+` FROM hour_packages WHERE active = 1 ORDER BY hours`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.HourPackage
	for rows.Next() {
		p, err := scanHourPackage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *HourPackageRepository) Create(ctx context.Context, p models.HourPackage) (models.HourPackage, error) {
	var discount any
	if p.DiscountPercentBP != nil {
		discount = models.HoursToDecimal(*p.DiscountPercentBP)
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO hour_packages (name, hours, price, discount_percent, active) VALUES (?, ?, ?, ?, ?)`,
		p.Name, models.HoursToDecimal(p.Hours), models.HoursToDecimal(p.PriceCents), discount, p.Active)
	if err != nil {
		return models.HourPackage{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.HourPackage{}, err
	}
	return r.GetByID(ctx, int(id))
}

func (r *HourPackageRepository) Update(ctx context.Context, p models.HourPackage) (models.HourPackage, error) {
	var discount any
	if p.DiscountPercentBP != nil {
		discount = models.HoursToDecimal(*p.DiscountPercentBP)
	}
	res, err := r.DB.ExecContext(ctx,
		`UPDATE hour_packages SET name = ?, hours = ?, price = ?, discount_percent = ?, active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		p.Name, models.HoursToDecimal(p.Hours), models.HoursToDecimal(p.PriceCents), discount, p.Active, p.ID)
	if err != nil {
		return models.HourPackage{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.HourPackage{}, err
	}
	if affected == 0 {
		return models.HourPackage{}, models.ErrPackageNotFound
	}
	return r.GetByID(ctx, p.ID)
}
