package helper

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"

	"resto_manager/config"
	"resto_manager/model"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

const receiptTemplate = `<html><body>
<h2>Gracias por tu pedido {{.Number}}</h2>
<table>
{{range .Lines}}<tr><td>{{.Quantity}} x {{.Name}}</td><td>S/ {{printf "%.2f" .Total}}</td></tr>
{{end}}</table>
<p><strong>Total: S/ {{printf "%.2f" .Total}}</strong></p>
{{if .TaxId}}<p>RUC/DNI: {{.TaxId}}</p>{{end}}
</body></html>`

type receiptLine struct {
	Name     string
	Quantity int
	Total    float64
}

type receiptData struct {
	Number string
	Lines  []receiptLine
	Total  float64
	TaxId  string
}

// GomailReceipt mails the order receipt after payment. Sending is best
// effort; a mail failure never touches order state.
type GomailReceipt struct {
	Log *zap.Logger
}

func (g *GomailReceipt) SendReceipt(pedido *model.Pedido) {
	host := config.Config("SMTP_HOST")
	if host == "" || pedido.BillingEmail == "" {
		return
	}

	data := receiptData{
		Number: fmt.Sprintf("P-%06d", pedido.ID),
		Total:  pedido.Total,
		TaxId:  pedido.BillingTaxId,
	}
	for _, det := range pedido.Detalles {
		line := receiptLine{Quantity: det.Quantity, Total: det.LineTotal()}
		switch {
		case det.MenuItem != nil:
			line.Name = det.MenuItem.Name
		case det.Combo != nil:
			line.Name = det.Combo.Name
		default:
			line.Name = "Item"
		}
		data.Lines = append(data.Lines, line)
	}

	tmpl := template.Must(template.New("receipt").Parse(receiptTemplate))
	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		g.Log.Error("receipt template render failed", zap.Error(err))
		return
	}

	port, _ := strconv.Atoi(config.ConfigOr("SMTP_PORT", "587"))

	m := gomail.NewMessage()
	m.SetHeader("From", config.Config("SMTP_FROM"))
	m.SetHeader("To", pedido.BillingEmail)
	m.SetHeader("Subject", "Comprobante de pedido "+data.Number)
	m.SetBody("text/html", body.String())

	d := gomail.NewDialer(host, port, config.Config("SMTP_USERNAME"), config.Config("SMTP_PASSWORD"))
	if err := d.DialAndSend(m); err != nil {
		g.Log.Error("receipt email failed",
			zap.Uint("order_id", pedido.ID),
			zap.Error(err))
	}
}
