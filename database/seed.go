package database

import (
	"log"
	"resto_manager/model"

	"gorm.io/gorm"
)

// SeedData creates a demo tenant with tables and a small catalog so a fresh
// environment can take orders immediately. Idempotent via FirstOrCreate.
func SeedData(db *gorm.DB) {
	var count int64
	db.Model(&model.Restaurant{}).Count(&count)
	if count > 0 {
		return
	}

	restaurant := model.Restaurant{Name: "Demo Cevichería", BillingEmail: "facturacion@demo.pe"}
	if err := db.Where(model.Restaurant{Name: restaurant.Name}).FirstOrCreate(&restaurant).Error; err != nil {
		log.Println("failed to seed restaurant:", err)
		return
	}

	mesas := []model.Mesa{
		{RestaurantId: restaurant.ID, Label: "Mesa 1", Codigo: "M-001"},
		{RestaurantId: restaurant.ID, Label: "Mesa 2", Codigo: "M-002"},
		{RestaurantId: restaurant.ID, Label: "Mesa 3", Codigo: "M-003"},
		{RestaurantId: restaurant.ID, Label: "Para llevar", Codigo: "M-LLEVAR", IsTakeaway: true},
	}
	for _, mesa := range mesas {
		if err := db.Where(model.Mesa{Codigo: mesa.Codigo}).FirstOrCreate(&mesa).Error; err != nil {
			log.Println("failed to seed mesa:", mesa.Codigo, "error:", err)
		}
	}

	items := []model.MenuItem{
		{RestaurantId: restaurant.ID, Name: "Ceviche clásico", Price: 32.00, IsActive: true},
		{RestaurantId: restaurant.ID, Name: "Lomo saltado", Price: 28.50, IsActive: true},
		{RestaurantId: restaurant.ID, Name: "Causa limeña", Price: 15.00, IsActive: true},
		{RestaurantId: restaurant.ID, Name: "Chicha morada", Price: 8.00, IsActive: true},
	}
	for i := range items {
		if err := db.Where(model.MenuItem{RestaurantId: restaurant.ID, Name: items[i].Name}).
			FirstOrCreate(&items[i]).Error; err != nil {
			log.Println("failed to seed menu item:", items[i].Name, "error:", err)
		}
	}

	combo := model.Combo{RestaurantId: restaurant.ID, Name: "Menú del día", Price: 25.00, IsActive: true}
	if err := db.Where(model.Combo{RestaurantId: restaurant.ID, Name: combo.Name}).FirstOrCreate(&combo).Error; err != nil {
		log.Println("failed to seed combo:", err)
		return
	}
	groups := []model.ComboGroup{
		{ComboId: combo.ID, Name: "Entrada", Position: 1},
		{ComboId: combo.ID, Name: "Segundo", Position: 2},
	}
	for i := range groups {
		if err := db.Where(model.ComboGroup{ComboId: combo.ID, Name: groups[i].Name}).
			FirstOrCreate(&groups[i]).Error; err != nil {
			log.Println("failed to seed combo group:", groups[i].Name, "error:", err)
			continue
		}
	}
	if len(groups) == 2 && len(items) >= 3 {
		pairs := []model.ComboGroupItem{
			{ComboGroupId: groups[0].ID, MenuItemId: items[2].ID},
			{ComboGroupId: groups[1].ID, MenuItemId: items[0].ID},
			{ComboGroupId: groups[1].ID, MenuItemId: items[1].ID},
		}
		for _, pair := range pairs {
			if err := db.Where(model.ComboGroupItem{ComboGroupId: pair.ComboGroupId, MenuItemId: pair.MenuItemId}).
				FirstOrCreate(&pair).Error; err != nil {
				log.Println("failed to seed combo group item:", err)
			}
		}
	}
}
