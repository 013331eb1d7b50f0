package email

import (
	"fmt"
	"strings"
)

// OrderLine is one order line as it appears in a confirmation email.
type OrderLine struct {
	Name     string
	Quantity int
	Price    float64
}

// BuildCustomerConfirmationBody renders the HTML body of the buyer-facing
// confirmation.
func BuildCustomerConfirmationBody(orderNumber, buyerName string, total float64, lines []OrderLine) string {
	return fmt.Sprintf(`<h2>¡Gracias por tu compra en TurismoPortal!</h2>
<p>Hola %s,</p>
<p>Tu pedido <strong>#%s</strong> ha sido confirmado exitosamente.</p>

<h3>Detalles del pedido:</h3>
<ul>
%s</ul>

<p><strong>Total: $%s</strong></p>

<p>Nos pondremos en contacto contigo pronto para coordinar los detalles de tu viaje.</p>

<p>¡Gracias por elegir TurismoPortal!</p>`,
		buyerName, orderNumber, buildItemList(lines), formatAmount(total))
}

// BuildInternalNotificationBody renders the HTML body sent to the configured
// internal addresses when a new order arrives.
func BuildInternalNotificationBody(orderNumber, buyerName, buyerEmail string, total float64, lines []OrderLine) string {
	return fmt.Sprintf(`<h2>Nuevo Pedido Recibido</h2>
<p><strong>Número de Pedido:</strong> #%s</p>
<p><strong>Cliente:</strong> %s (%s)</p>
<p><strong>Total:</strong> $%s</p>

<h3>Productos:</h3>
<ul>
%s</ul>

<p>Por favor, procesa este pedido en el sistema administrativo.</p>`,
		orderNumber, buyerName, buyerEmail, formatAmount(total), buildItemList(lines))
}

func buildItemList(lines []OrderLine) string {
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(fmt.Sprintf("  <li>%s - Cantidad: %d - $%s</li>\n",
			line.Name, line.Quantity, formatAmount(line.Price)))
	}
	return b.String()
}

// formatAmount renders an amount with thousands separators and two decimals
// only when the amount has them, matching the storefront's display format.
func formatAmount(v float64) string {
	whole := int64(v)
	frac := v - float64(whole)

	s := fmt.Sprintf("%d", whole)
	var out strings.Builder
	start := len(s) % 3
	if start == 0 {
		start = 3
	}
	out.WriteString(s[:start])
	for i := start; i < len(s); i += 3 {
		out.WriteString(",")
		out.WriteString(s[i : i+3])
	}

	if frac > 0.000001 {
		cents := fmt.Sprintf("%.2f", frac)
		out.WriteString(cents[1:]) // ".xx"
	}
	return out.String()
}
