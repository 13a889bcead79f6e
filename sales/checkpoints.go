package sales

import (
	"context"
	"time"

	"backoffice/metrics"
	"backoffice/models"

	"github.com/rs/zerolog/log"
)

type Service struct {
	Store Store
	Now   func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// ToggleInput é o corpo de POST /sales/:id/checkpoints/:type.
type ToggleInput struct {
	SaleID         string
	CheckpointType string
	Completed      bool
	Notes          *string
	Actor          string
}

// ToggleCheckpoint completa ou desfaz um checkpoint, grava o histórico,
// espelha os campos legados e ajusta o status. Tudo numa transação.
func (s *Service) ToggleCheckpoint(ctx context.Context, in ToggleInput) (*models.Sale, error) {
	if !models.IsCheckpointType(in.CheckpointType) {
		return nil, ErrInvalidCheckpointType
	}

	var result *models.Sale
	err := s.Store.Transaction(ctx, func(tx Store) error {
		sale, err := tx.GetSale(ctx, in.SaleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return ErrSaleNotFound
		}
		if sale.IsTerminal() {
			return ErrTerminalSale
		}

		rows, err := tx.SaleCheckpoints(ctx, sale.ID)
		if err != nil {
			return err
		}
		row := findCheckpoint(rows, in.CheckpointType)

		if in.Completed {
			err = s.complete(ctx, tx, sale, row, in)
		} else {
			err = s.uncomplete(ctx, tx, sale, row, rows, in)
		}
		if err != nil {
			return err
		}
		if err := tx.SaveSale(ctx, sale); err != nil {
			return err
		}
		result = sale
		return nil
	})
	if err != nil {
		return nil, err
	}

	action := models.CHECKPOINT_ACTION_UNCOMPLETED
	if in.Completed {
		action = models.CHECKPOINT_ACTION_COMPLETED
	}
	metrics.CheckpointToggles.WithLabelValues(in.CheckpointType, action).Inc()
	log.Info().Str("sale_id", in.SaleID).Str("checkpoint", in.CheckpointType).Str("action", action).Str("actor", in.Actor).Str("status", result.Status).Msg("sales: checkpoint toggled")
	return result, nil
}

func (s *Service) complete(ctx context.Context, tx Store, sale *models.Sale, row *models.SaleCheckpoint, in ToggleInput) error {
	if row == nil {
		created, err := models.NewSaleCheckpoint(*sale, in.CheckpointType)
		if err != nil {
			return err
		}
		row = created
	}
	now := s.now()
	actor := in.Actor
	row.CompletedAt = &now
	row.CompletedBy = &actor
	row.Notes = in.Notes
	if err := tx.SaveCheckpoint(ctx, row); err != nil {
		return err
	}
	if err := appendHistory(ctx, tx, *row, models.CHECKPOINT_ACTION_COMPLETED, actor, in.Notes, now); err != nil {
		return err
	}

	sale.SetLegacy(in.CheckpointType, &now, &actor)
	if status, ok := checkpointStatus[in.CheckpointType]; ok {
		sale.Status = status
	}
	return nil
}

func (s *Service) uncomplete(ctx context.Context, tx Store, sale *models.Sale, row *models.SaleCheckpoint, rows []models.SaleCheckpoint, in ToggleInput) error {
	now := s.now()
	// Sem linha não há o que limpar nem histórico a gravar; o legado e o
	// status ainda são acertados.
	if row != nil {
		row.CompletedAt = nil
		row.CompletedBy = nil
		row.Notes = nil
		if err := tx.SaveCheckpoint(ctx, row); err != nil {
			return err
		}
		if err := appendHistory(ctx, tx, *row, models.CHECKPOINT_ACTION_UNCOMPLETED, in.Actor, in.Notes, now); err != nil {
			return err
		}
	}

	sale.SetLegacy(in.CheckpointType, nil, nil)
	if in.CheckpointType == models.CHECKPOINT_PRINTED {
		return nil
	}
	done := completedSet(rows)
	delete(done, in.CheckpointType)
	sale.Status = statusAfterUncomplete(in.CheckpointType, done)
	return nil
}

// Reconcile recalcula status e campos legados a partir dos checkpoints.
func (s *Service) Reconcile(ctx context.Context, saleID string) (*models.Sale, error) {
	var result *models.Sale
	err := s.Store.Transaction(ctx, func(tx Store) error {
		sale, err := tx.GetSale(ctx, saleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return ErrSaleNotFound
		}
		rows, err := tx.SaleCheckpoints(ctx, sale.ID)
		if err != nil {
			return err
		}

		for _, t := range models.CheckpointOrder {
			if row := findCheckpoint(rows, t); row != nil && row.Completed() {
				sale.SetLegacy(t, row.CompletedAt, row.CompletedBy)
			} else {
				sale.SetLegacy(t, nil, nil)
			}
		}
		previous := sale.Status
		sale.Status = DeriveStatus(sale.Status, completedSet(rows))
		if err := tx.SaveSale(ctx, sale); err != nil {
			return err
		}
		if previous != sale.Status {
			log.Info().Str("sale_id", sale.ID).Str("from", previous).Str("to", sale.Status).Msg("sales: status reconciled")
		}
		result = sale
		return nil
	})
	return result, err
}

// SaleCheckpointsView é a leitura de checkpoints e histórico de uma venda.
type SaleCheckpointsView struct {
	Sale        models.Sale                `json:"sale"`
	Checkpoints []models.SaleCheckpoint    `json:"checkpoints"`
	History     []models.CheckpointHistory `json:"history"`
}

func (s *Service) ListCheckpoints(ctx context.Context, saleID string) (*SaleCheckpointsView, error) {
	sale, err := s.Store.GetSale(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, ErrSaleNotFound
	}
	rows, err := s.Store.SaleCheckpoints(ctx, saleID)
	if err != nil {
		return nil, err
	}
	history, err := s.Store.CheckpointHistory(ctx, saleID)
	if err != nil {
		return nil, err
	}
	return &SaleCheckpointsView{Sale: *sale, Checkpoints: rows, History: history}, nil
}

func findCheckpoint(rows []models.SaleCheckpoint, checkpointType string) *models.SaleCheckpoint {
	for i := range rows {
		if rows[i].CheckpointType == checkpointType {
			row := rows[i]
			return &row
		}
	}
	return nil
}

func appendHistory(ctx context.Context, tx Store, row models.SaleCheckpoint, action string, actor string, notes *string, at time.Time) error {
	return tx.AppendHistory(ctx, &models.CheckpointHistory{
		ID:             models.NewID(),
		CheckpointID:   row.ID,
		SaleID:         row.SaleID,
		CheckpointType: row.CheckpointType,
		Action:         action,
		Actor:          actor,
		Notes:          notes,
		CreatedAt:      &at,
	})
}
