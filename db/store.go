package db

import (
	"backoffice/sales"
	"backoffice/workers"

	"github.com/jinzhu/gorm"
)

// Store implementa as interfaces de persistência de workers e sales sobre gorm.
// Leituras de um registro devolvem nil, nil quando ele não existe.
type Store struct {
	DB   *gorm.DB
	inTx bool
}

func NewStore(db *gorm.DB) *Store {
	return &Store{DB: db}
}

func notFound(err error) bool {
	return gorm.IsRecordNotFoundError(err)
}

var (
	_ sales.Store                  = (*Store)(nil)
	_ workers.InstanceStore        = (*Store)(nil)
	_ workers.MessageStore         = (*Store)(nil)
	_ workers.LeadStore            = (*Store)(nil)
	_ workers.ConversationStore    = (*Store)(nil)
	_ workers.AutoCloseConfigStore = (*Store)(nil)
)
