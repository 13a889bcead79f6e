package sales

import (
	"context"
	"errors"
	"sort"

	"backoffice/models"
)

// memoryStore is an in-memory Store. Transaction runs fn against itself.
type memoryStore struct {
	sales       map[string]*models.Sale
	checkpoints []*models.SaleCheckpoint
	history     []models.CheckpointHistory
	closings    map[string]*models.PickupClosing
	items       []models.PickupClosingSale
}

func newMemoryStore(sales ...*models.Sale) *memoryStore {
	s := &memoryStore{sales: map[string]*models.Sale{}, closings: map[string]*models.PickupClosing{}}
	for _, sale := range sales {
		s.sales[sale.ID] = sale
	}
	return s
}

func (s *memoryStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return fn(s)
}

func (s *memoryStore) GetSale(ctx context.Context, id string) (*models.Sale, error) {
	sale, ok := s.sales[id]
	if !ok {
		return nil, nil
	}
	cp := *sale
	return &cp, nil
}

func (s *memoryStore) SaveSale(ctx context.Context, sale *models.Sale) error {
	cp := *sale
	s.sales[sale.ID] = &cp
	return nil
}

func (s *memoryStore) SalesByIDs(ctx context.Context, tenantID string, ids []string) ([]models.Sale, error) {
	var out []models.Sale
	for _, id := range ids {
		if sale, ok := s.sales[id]; ok && sale.TenantID == tenantID {
			out = append(out, *sale)
		}
	}
	return out, nil
}

func (s *memoryStore) SetSalesStatus(ctx context.Context, ids []string, status string) error {
	for _, id := range ids {
		if sale, ok := s.sales[id]; ok {
			sale.Status = status
		}
	}
	return nil
}

func (s *memoryStore) SaleCheckpoints(ctx context.Context, saleID string) ([]models.SaleCheckpoint, error) {
	var out []models.SaleCheckpoint
	for _, c := range s.checkpoints {
		if c.SaleID == saleID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *memoryStore) SaveCheckpoint(ctx context.Context, checkpoint *models.SaleCheckpoint) error {
	cp := *checkpoint
	for i, c := range s.checkpoints {
		if c.ID == cp.ID {
			s.checkpoints[i] = &cp
			return nil
		}
		if c.SaleID == cp.SaleID && c.CheckpointType == cp.CheckpointType {
			return errors.New("UNIQUE constraint failed: sale_checkpoints")
		}
	}
	s.checkpoints = append(s.checkpoints, &cp)
	return nil
}

func (s *memoryStore) AppendHistory(ctx context.Context, entry *models.CheckpointHistory) error {
	s.history = append(s.history, *entry)
	return nil
}

func (s *memoryStore) CheckpointHistory(ctx context.Context, saleID string) ([]models.CheckpointHistory, error) {
	var out []models.CheckpointHistory
	for _, h := range s.history {
		if h.SaleID == saleID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (s *memoryStore) inClosing(saleID string) bool {
	for _, it := range s.items {
		if it.SaleID == saleID {
			return true
		}
	}
	return false
}

func (s *memoryStore) AvailablePickupSales(ctx context.Context, tenantID string) ([]models.Sale, error) {
	var out []models.Sale
	for _, sale := range s.sales {
		if sale.TenantID != tenantID || sale.DeliveryType != models.DELIVERY_TYPE_PICKUP || sale.IsTerminal() || s.inClosing(sale.ID) {
			continue
		}
		out = append(out, *sale)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memoryStore) NextClosingNumber(ctx context.Context, tenantID string) (int, error) {
	max := 0
	for _, c := range s.closings {
		if c.TenantID == tenantID && c.ClosingNumber > max {
			max = c.ClosingNumber
		}
	}
	return max + 1, nil
}

func (s *memoryStore) CreateClosing(ctx context.Context, closing *models.PickupClosing, items []models.PickupClosingSale) error {
	for _, it := range items {
		if s.inClosing(it.SaleID) {
			return errors.New("UNIQUE constraint failed: pickup_closing_sales.sale_id")
		}
	}
	cp := *closing
	s.closings[closing.ID] = &cp
	s.items = append(s.items, items...)
	return nil
}

func (s *memoryStore) GetClosing(ctx context.Context, id string) (*models.PickupClosing, error) {
	c, ok := s.closings[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (s *memoryStore) SaveClosing(ctx context.Context, closing *models.PickupClosing) error {
	cp := *closing
	s.closings[closing.ID] = &cp
	return nil
}

func (s *memoryStore) ClosingSales(ctx context.Context, closingID string) ([]models.Sale, error) {
	var out []models.Sale
	for _, it := range s.items {
		if it.ClosingID == closingID {
			if sale, ok := s.sales[it.SaleID]; ok {
				out = append(out, *sale)
			}
		}
	}
	return out, nil
}

func (s *memoryStore) checkpoint(saleID, checkpointType string) *models.SaleCheckpoint {
	for _, c := range s.checkpoints {
		if c.SaleID == saleID && c.CheckpointType == checkpointType {
			return c
		}
	}
	return nil
}
