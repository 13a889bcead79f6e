package sales

import (
	"context"

	"backoffice/models"
)

// Store é a persistência das vendas, checkpoints e fechamentos.
// Leituras devolvem nil, nil quando o registro não existe.
type Store interface {
	// Transaction executa fn com um Store ligado a uma única transação.
	Transaction(ctx context.Context, fn func(tx Store) error) error

	GetSale(ctx context.Context, id string) (*models.Sale, error)
	SaveSale(ctx context.Context, sale *models.Sale) error
	SalesByIDs(ctx context.Context, tenantID string, ids []string) ([]models.Sale, error)
	SetSalesStatus(ctx context.Context, ids []string, status string) error

	SaleCheckpoints(ctx context.Context, saleID string) ([]models.SaleCheckpoint, error)
	SaveCheckpoint(ctx context.Context, checkpoint *models.SaleCheckpoint) error
	AppendHistory(ctx context.Context, entry *models.CheckpointHistory) error
	CheckpointHistory(ctx context.Context, saleID string) ([]models.CheckpointHistory, error)

	// AvailablePickupSales: retirada, não cancelada/devolvida e fora de
	// qualquer fechamento.
	AvailablePickupSales(ctx context.Context, tenantID string) ([]models.Sale, error)
	NextClosingNumber(ctx context.Context, tenantID string) (int, error)
	CreateClosing(ctx context.Context, closing *models.PickupClosing, items []models.PickupClosingSale) error
	GetClosing(ctx context.Context, id string) (*models.PickupClosing, error)
	SaveClosing(ctx context.Context, closing *models.PickupClosing) error
	ClosingSales(ctx context.Context, closingID string) ([]models.Sale, error)
}
