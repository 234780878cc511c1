package postgres

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/order-console/internal/domains/ordering/domain"
	"github.com/Apurer/order-console/internal/domains/ordering/ports"
)

var _ ports.SnapshotProvider = (*Catalog)(nil)

// Catalog reads product and customer snapshots from PostgreSQL using GORM.
type Catalog struct {
	db *gorm.DB
}

// NewCatalog wires a PostgreSQL-backed catalog. Caller manages DB lifecycle and
// schema.
func NewCatalog(db *gorm.DB) *Catalog {
	return &Catalog{db: db}
}

// SaveProduct inserts or updates a product.
func (c *Catalog) SaveProduct(ctx context.Context, p domain.ProductSnapshot) error {
	if err := c.ensureDB(); err != nil {
		return err
	}
	record := toProductRecord(p)
	return c.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"name":           record.Name,
				"sku":            record.SKU,
				"sale_price":     record.SalePrice,
				"stock_quantity": record.StockQuantity,
				"is_active":      record.IsActive,
				"updated_at":     gorm.Expr("NOW()"),
			}),
		}).Create(&record).Error
}

// SaveCustomer inserts or updates a customer.
func (c *Catalog) SaveCustomer(ctx context.Context, cu domain.CustomerSnapshot) error {
	if err := c.ensureDB(); err != nil {
		return err
	}
	record := toCustomerRecord(cu)
	return c.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"full_name":  record.FullName,
				"email":      record.Email,
				"phone":      record.Phone,
				"is_active":  record.IsActive,
				"updated_at": gorm.Expr("NOW()"),
			}),
		}).Create(&record).Error
}

func (c *Catalog) GetProduct(ctx context.Context, id int64) (*domain.ProductSnapshot, error) {
	if err := c.ensureDB(); err != nil {
		return nil, err
	}
	var record productRecord
	if err := c.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrProductNotFound
		}
		return nil, err
	}
	p := record.toDomain()
	return &p, nil
}

func (c *Catalog) GetCustomer(ctx context.Context, id int64) (*domain.CustomerSnapshot, error) {
	if err := c.ensureDB(); err != nil {
		return nil, err
	}
	var record customerRecord
	if err := c.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrCustomerNotFound
		}
		return nil, err
	}
	cu := record.toDomain()
	return &cu, nil
}

// SearchProducts matches name or SKU case-insensitively.
func (c *Catalog) SearchProducts(ctx context.Context, q ports.SearchQuery) ([]domain.ProductSnapshot, error) {
	if err := c.ensureDB(); err != nil {
		return nil, err
	}
	tx := c.db.WithContext(ctx).Model(&productRecord{})
	if pattern := likePattern(q.Query); pattern != "" {
		tx = tx.Where("name ILIKE ? OR sku ILIKE ?", pattern, pattern)
	}
	if q.ActiveOnly {
		tx = tx.Where("is_active = ?", true)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	var records []productRecord
	if err := tx.Order("name ASC, id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	out := make([]domain.ProductSnapshot, 0, len(records))
	for i := range records {
		out = append(out, records[i].toDomain())
	}
	return out, nil
}

// SearchCustomers matches full name or email case-insensitively.
func (c *Catalog) SearchCustomers(ctx context.Context, q ports.SearchQuery) ([]domain.CustomerSnapshot, error) {
	if err := c.ensureDB(); err != nil {
		return nil, err
	}
	tx := c.db.WithContext(ctx).Model(&customerRecord{})
	if pattern := likePattern(q.Query); pattern != "" {
		tx = tx.Where("full_name ILIKE ? OR email ILIKE ?", pattern, pattern)
	}
	if q.ActiveOnly {
		tx = tx.Where("is_active = ?", true)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	var records []customerRecord
	if err := tx.Order("full_name ASC, id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	out := make([]domain.CustomerSnapshot, 0, len(records))
	for i := range records {
		out = append(out, records[i].toDomain())
	}
	return out, nil
}

func (c *Catalog) ensureDB() error {
	if c == nil || c.db == nil {
		return errors.New("postgres catalog not configured")
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return ""
	}
	return "%" + likeEscaper.Replace(query) + "%"
}
