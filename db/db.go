package db

import (
	"os"
	"path/filepath"
	"time"

	"backoffice/config"
	"backoffice/models"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"github.com/rs/zerolog/log"
)

func init() {
	gorm.NowFunc = func() time.Time {
		return time.Now().UTC()
	}
}

// Connect abre conexão com o banco (sqlite3 por padrão) e roda o automigrate.
func Connect(conf config.Configuration) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)

	if conf.Database == "postgres" || conf.Database == "postgresql" {
		log.Info().Str("host", conf.DbHost).Str("db", conf.DbName).Msg("db: using postgresql")
		path := "host=" + conf.DbHost + " port=" + conf.DbPort
		path += " user=" + conf.DbUser + " dbname=" + conf.DbName
		path += " password=" + conf.DbPass + " sslmode=disable"
		db, err = gorm.Open("postgres", path)
	} else {
		log.Info().Str("path", conf.DbPath).Msg("db: using sqlite3")
		if err := os.MkdirAll(filepath.Dir(conf.DbPath), 0o755); err != nil {
			return nil, err
		}
		db, err = gorm.Open("sqlite3", conf.DbPath)
	}
	if err != nil {
		log.Error().Err(err).Msg("db: failed to connect")
		return nil, err
	}

	db.LogMode(conf.LogSQL)

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Lead{},
		&models.WhatsAppInstance{},
		&models.ScheduledMessage{},
		&models.Sale{},
		&models.SaleCheckpoint{},
		&models.CheckpointHistory{},
		&models.PickupClosing{},
		&models.PickupClosingSale{},
		&models.Conversation{},
		&models.ConversationMessage{},
		&models.SatisfactionRating{},
		&models.AutoCloseConfig{},
	).Error
}
