package sales

import (
	"context"
	"strings"

	"backoffice/metrics"
	"backoffice/models"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const finalClosingNote = "fechamento"

// ClassifyPaymentMethod agrupa a forma de pagamento livre em um dos quatro
// baldes do fechamento.
func ClassifyPaymentMethod(method string) string {
	m := strings.ToLower(strings.TrimSpace(method))
	switch {
	case strings.Contains(m, "pix"):
		return models.PAYMENT_BUCKET_PIX
	case containsAny(m, "cart", "credito", "crédito", "debito", "débito", "card"):
		return models.PAYMENT_BUCKET_CARD
	case containsAny(m, "dinheiro", "cash", "especie", "espécie"):
		return models.PAYMENT_BUCKET_CASH
	}
	return models.PAYMENT_BUCKET_OTHER
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func (s *Service) AvailablePickupSales(ctx context.Context, tenantID string) ([]models.Sale, error) {
	return s.Store.AvailablePickupSales(ctx, tenantID)
}

// CreatePickupClosing calcula os totais uma vez e grava cabeçalho e itens
// na mesma transação.
func (s *Service) CreatePickupClosing(ctx context.Context, tenantID string, actor string, saleIDs []string) (*models.PickupClosing, error) {
	ids := uniqueIDs(saleIDs)
	if len(ids) == 0 {
		return nil, ErrEmptyClosing
	}

	var closing *models.PickupClosing
	err := s.Store.Transaction(ctx, func(tx Store) error {
		sales, err := tx.SalesByIDs(ctx, tenantID, ids)
		if err != nil {
			return err
		}
		if len(sales) != len(ids) {
			return ErrSaleNotFound
		}
		number, err := tx.NextClosingNumber(ctx, tenantID)
		if err != nil {
			return err
		}

		now := s.now()
		c := &models.PickupClosing{
			ID:            models.NewID(),
			TenantID:      tenantID,
			ClosingNumber: number,
			Status:        models.CLOSING_STATUS_PENDING,
			CreatedBy:     actor,
			TotalCard:     decimal.Zero,
			TotalPix:      decimal.Zero,
			TotalCash:     decimal.Zero,
			TotalOther:    decimal.Zero,
			TotalAmount:   decimal.Zero,
			CreatedAt:     &now,
		}
		items := make([]models.PickupClosingSale, 0, len(sales))
		for _, sale := range sales {
			switch ClassifyPaymentMethod(sale.PaymentMethod) {
			case models.PAYMENT_BUCKET_CARD:
				c.TotalCard = c.TotalCard.Add(sale.Total)
			case models.PAYMENT_BUCKET_PIX:
				c.TotalPix = c.TotalPix.Add(sale.Total)
			case models.PAYMENT_BUCKET_CASH:
				c.TotalCash = c.TotalCash.Add(sale.Total)
			default:
				c.TotalOther = c.TotalOther.Add(sale.Total)
			}
			c.TotalAmount = c.TotalAmount.Add(sale.Total)
			items = append(items, models.PickupClosingSale{
				ID:            models.NewID(),
				ClosingID:     c.ID,
				SaleID:        sale.ID,
				Amount:        sale.Total,
				PaymentMethod: sale.PaymentMethod,
				CreatedAt:     &now,
			})
		}
		c.SalesCount = len(items)

		if err := tx.CreateClosing(ctx, c, items); err != nil {
			return err
		}
		closing = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.ClosingTransitions.WithLabelValues(models.CLOSING_STATUS_PENDING).Inc()
	log.Info().Str("closing_id", closing.ID).Int("number", closing.ClosingNumber).Int("sales", closing.SalesCount).Str("total", closing.TotalAmount.StringFixed(2)).Msg("sales: pickup closing created")
	return closing, nil
}

// ConfirmAuxiliar: pending -> confirmed_auxiliar; vendas vão para closed.
func (s *Service) ConfirmAuxiliar(ctx context.Context, closingID string, actor string) (*models.PickupClosing, error) {
	closing, err := s.transition(ctx, closingID, models.CLOSING_STATUS_PENDING, models.CLOSING_STATUS_CONFIRMED_AUXILIAR, func(tx Store, c *models.PickupClosing) error {
		now := s.now()
		c.AuxiliarConfirmedAt = &now
		c.AuxiliarConfirmedBy = &actor

		sales, err := tx.ClosingSales(ctx, c.ID)
		if err != nil {
			return err
		}
		var ids []string
		for _, sale := range sales {
			if sale.IsTerminal() || sale.Status == models.SALE_STATUS_FINALIZED {
				continue
			}
			ids = append(ids, sale.ID)
		}
		if len(ids) == 0 {
			return nil
		}
		return tx.SetSalesStatus(ctx, ids, models.SALE_STATUS_CLOSED)
	})
	return closing, err
}

// ConfirmFinal: confirmed_auxiliar -> confirmed_final; vendas finalizadas e
// checkpoints faltantes preenchidos com agora e o ator.
func (s *Service) ConfirmFinal(ctx context.Context, closingID string, actor string) (*models.PickupClosing, error) {
	closing, err := s.transition(ctx, closingID, models.CLOSING_STATUS_CONFIRMED_AUXILIAR, models.CLOSING_STATUS_CONFIRMED_FINAL, func(tx Store, c *models.PickupClosing) error {
		now := s.now()
		c.FinalConfirmedAt = &now
		c.FinalConfirmedBy = &actor

		sales, err := tx.ClosingSales(ctx, c.ID)
		if err != nil {
			return err
		}
		for i := range sales {
			sale := &sales[i]
			if sale.IsTerminal() {
				continue
			}
			if err := s.finalizeSale(ctx, tx, sale, actor); err != nil {
				return err
			}
		}
		return nil
	})
	return closing, err
}

func (s *Service) finalizeSale(ctx context.Context, tx Store, sale *models.Sale, actor string) error {
	now := s.now()
	rows, err := tx.SaleCheckpoints(ctx, sale.ID)
	if err != nil {
		return err
	}
	note := finalClosingNote
	for _, t := range models.CheckpointOrder {
		if sale.LegacyCompletedAt(t) == nil {
			by := actor
			sale.SetLegacy(t, &now, &by)
		}

		row := findCheckpoint(rows, t)
		if row != nil && row.Completed() {
			continue
		}
		if row == nil {
			if row, err = models.NewSaleCheckpoint(*sale, t); err != nil {
				return err
			}
		}
		by := actor
		row.CompletedAt = &now
		row.CompletedBy = &by
		row.Notes = &note
		if err := tx.SaveCheckpoint(ctx, row); err != nil {
			return err
		}
		if err := appendHistory(ctx, tx, *row, models.CHECKPOINT_ACTION_COMPLETED, actor, &note, now); err != nil {
			return err
		}
	}

	by := actor
	sale.Status = models.SALE_STATUS_FINALIZED
	sale.FinalizedAt = &now
	sale.FinalizedBy = &by
	return tx.SaveSale(ctx, sale)
}

func (s *Service) transition(ctx context.Context, closingID string, from string, to string, apply func(tx Store, c *models.PickupClosing) error) (*models.PickupClosing, error) {
	var closing *models.PickupClosing
	err := s.Store.Transaction(ctx, func(tx Store) error {
		c, err := tx.GetClosing(ctx, closingID)
		if err != nil {
			return err
		}
		if c == nil {
			return ErrClosingNotFound
		}
		if c.Status != from {
			return ErrInvalidClosingTransition
		}
		if err := apply(tx, c); err != nil {
			return err
		}
		c.Status = to
		if err := tx.SaveClosing(ctx, c); err != nil {
			return err
		}
		closing = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.ClosingTransitions.WithLabelValues(to).Inc()
	log.Info().Str("closing_id", closing.ID).Str("from", from).Str("to", to).Msg("sales: pickup closing confirmed")
	return closing, nil
}

func uniqueIDs(ids []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
