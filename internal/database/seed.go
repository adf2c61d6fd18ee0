package database

import (
	"github.com/meiduo/storefront-backend/internal/domain"

	"gorm.io/gorm"
)

var defaultCatalog = []domain.SKU{
	{Name: "Huawei P30", Caption: "6.1 inch OLED, 128GB", Price: 3788, Stock: 50, OnSale: true},
	{Name: "iPhone 11", Caption: "6.1 inch LCD, 128GB", Price: 5499, Stock: 40, OnSale: true},
	{Name: "Mi 9 SE", Caption: "5.97 inch AMOLED, 64GB", Price: 1799, Stock: 80, OnSale: true},
	{Name: "Kindle Paperwhite", Caption: "8GB, waterproof", Price: 998, Stock: 120, OnSale: true},
	{Name: "Nintendo Switch", Caption: "neon red/blue", Price: 2099, Stock: 30, OnSale: true},
}

type SeedReport struct {
	CreatedSKUs int  `json:"created_skus"`
	Noop        bool `json:"noop"`
}

func Seed(db *gorm.DB) error {
	_, err := SeedSync(db)
	return err
}

// SeedSync inserts the default catalog, skipping SKUs that already exist by
// name, and reports what it created.
func SeedSync(db *gorm.DB) (*SeedReport, error) {
	report := &SeedReport{}
	for _, sku := range defaultCatalog {
		res := db.Where("name = ?", sku.Name).FirstOrCreate(&sku)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected > 0 {
			report.CreatedSKUs++
		}
	}
	report.Noop = report.CreatedSKUs == 0
	return report, nil
}
