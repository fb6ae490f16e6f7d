package service

import (
	"fmt"

	"resto_manager/model"
	"resto_manager/notify"

	"github.com/jinzhu/copier"
)

// BuildOrderView maps an order row to what the kitchen display renders.
func BuildOrderView(p *model.Pedido) notify.OrderView {
	view := notify.OrderView{
		OrderId:   p.ID,
		Number:    fmt.Sprintf("P-%06d", p.ID),
		OrderType: p.OrderType,
		Total:     p.Total,
		Status:    p.Status,
		Note:      p.Note,
		CreatedAt: p.CreatedAt,
	}
	if p.Mesa != nil {
		view.MesaLabel = p.Mesa.Label
	}
	for i := range p.Detalles {
		det := &p.Detalles[i]
		var item notify.OrderViewItem
		copier.Copy(&item, det)
		switch {
		case det.MenuItem != nil:
			item.Name = det.MenuItem.Name
		case det.Combo != nil:
			item.Name = det.Combo.Name
		}
		view.Items = append(view.Items, item)
	}
	return view
}
