package database

import (
	"fmt"
	"resto_manager/config"
	"resto_manager/model"
	"strconv"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() {
	var err error
	p := config.ConfigOr("DB_PORT", "5432")
	port, err := strconv.ParseUint(p, 10, 32)
	if err != nil {
		panic("failed to parse database port")
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		config.Config("DB_HOST"), port, config.Config("DB_USER"), config.Config("DB_PASSWORD"), config.Config("DB_NAME"))

	// TranslateError turns postgres unique violations into
	// gorm.ErrDuplicatedKey, which the order ledger relies on for the
	// idempotency-key race.
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		panic("failed to connect database")
	}

	fmt.Println("Connection Opened to Database")
	DB.AutoMigrate(
		&model.Restaurant{},
		&model.RestaurantCredential{},
		&model.Mesa{},
		&model.MenuItem{},
		&model.Combo{},
		&model.ComboGroup{},
		&model.ComboGroupItem{},
		&model.Pedido{},
		&model.PedidoDetalle{},
		&model.PedidoDetalleComboItem{},
		&model.Pago{},
		&model.CheckoutIntent{},
	)
	fmt.Println("Database Migrated")

	SeedData(DB)
}
