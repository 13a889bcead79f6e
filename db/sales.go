package db

import (
	"context"

	"backoffice/models"
	"backoffice/sales"
)

// Transaction abre uma transação gorm e passa a fn um Store ligado a ela.
// Chamadas aninhadas reaproveitam a transação corrente.
func (s *Store) Transaction(ctx context.Context, fn func(tx sales.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	tx := s.DB.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err := fn(&Store{DB: tx, inTx: true}); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

func (s *Store) GetSale(ctx context.Context, id string) (*models.Sale, error) {
	var sale models.Sale
	err := s.DB.Where("id = ?", id).First(&sale).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (s *Store) SaveSale(ctx context.Context, sale *models.Sale) error {
	return s.DB.Save(sale).Error
}

func (s *Store) CreateSale(ctx context.Context, sale *models.Sale) error {
	return s.DB.Create(sale).Error
}

func (s *Store) SalesByIDs(ctx context.Context, tenantID string, ids []string) ([]models.Sale, error) {
	var out []models.Sale
	if len(ids) == 0 {
		return out, nil
	}
	err := s.DB.Where("tenant_id = ? AND id IN (?)", tenantID, ids).Order("id asc").Find(&out).Error
	return out, err
}

func (s *Store) SetSalesStatus(ctx context.Context, ids []string, status string) error {
	if len(ids) == 0 {
		return nil
	}
	return s.DB.Model(&models.Sale{}).Where("id IN (?)", ids).Updates(map[string]any{"status": status}).Error
}

func (s *Store) SaleCheckpoints(ctx context.Context, saleID string) ([]models.SaleCheckpoint, error) {
	var out []models.SaleCheckpoint
	err := s.DB.Where("sale_id = ?", saleID).Order("created_at asc, id asc").Find(&out).Error
	return out, err
}

func (s *Store) SaveCheckpoint(ctx context.Context, checkpoint *models.SaleCheckpoint) error {
	return s.DB.Save(checkpoint).Error
}

func (s *Store) AppendHistory(ctx context.Context, entry *models.CheckpointHistory) error {
	return s.DB.Create(entry).Error
}

func (s *Store) CheckpointHistory(ctx context.Context, saleID string) ([]models.CheckpointHistory, error) {
	var out []models.CheckpointHistory
	err := s.DB.Where("sale_id = ?", saleID).Order("created_at asc, id asc").Find(&out).Error
	return out, err
}

/************************************************
/**** MARK: PICKUP CLOSINGS ****/
/************************************************/

func (s *Store) AvailablePickupSales(ctx context.Context, tenantID string) ([]models.Sale, error) {
	var out []models.Sale
	err := s.DB.
		Where("tenant_id = ? AND delivery_type = ?", tenantID, models.DELIVERY_TYPE_PICKUP).
		Where("status NOT IN (?)", []string{models.SALE_STATUS_CANCELLED, models.SALE_STATUS_RETURNED}).
		Where("id NOT IN (SELECT sale_id FROM pickup_closing_sales)").
		Order("created_at asc, id asc").
		Find(&out).Error
	return out, err
}

func (s *Store) NextClosingNumber(ctx context.Context, tenantID string) (int, error) {
	var max int
	row := s.DB.Model(&models.PickupClosing{}).
		Where("tenant_id = ?", tenantID).
		Select("COALESCE(MAX(closing_number), 0)").
		Row()
	if err := row.Scan(&max); err != nil {
		return 0, err
	}
	return max + 1, nil
}

func (s *Store) CreateClosing(ctx context.Context, closing *models.PickupClosing, items []models.PickupClosingSale) error {
	if err := s.DB.Create(closing).Error; err != nil {
		return err
	}
	for i := range items {
		if err := s.DB.Create(&items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) GetClosing(ctx context.Context, id string) (*models.PickupClosing, error) {
	var closing models.PickupClosing
	err := s.DB.Where("id = ?", id).First(&closing).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &closing, nil
}

func (s *Store) SaveClosing(ctx context.Context, closing *models.PickupClosing) error {
	return s.DB.Save(closing).Error
}

func (s *Store) ClosingSales(ctx context.Context, closingID string) ([]models.Sale, error) {
	var out []models.Sale
	err := s.DB.
		Where("id IN (SELECT sale_id FROM pickup_closing_sales WHERE closing_id = ?)", closingID).
		Order("id asc").
		Find(&out).Error
	return out, err
}
