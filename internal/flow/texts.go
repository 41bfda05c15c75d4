package flow

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rootzsu/orderbot/internal/domain"
)

const (
	msgMenu             = "Welcome! Choose an action below."
	msgMenuHint         = "Use the buttons below to continue, or /start to reset."
	msgNoServices       = "No services are available right now. Check back later."
	msgPickService      = "Choose a service:"
	msgPickPayment      = "Choose a payment method:"
	msgServiceGone      = "This service is no longer available. Pick another one:"
	msgMethodGone       = "That payment method is not available for this service."
	msgNeedProof        = "Send a photo or a file with your payment proof."
	msgSubmitFailed     = "Could not save your order. Your proof was not lost, please send it again."
	msgCancelled        = "Order cancelled."
	msgInChat           = "You are connected to support. Send your message, an operator will reply here. Press the button below to leave."
	msgRelayed          = "Message sent. An operator will reply soon."
	msgRelayFailed      = "Could not reach the operators right now, please try again."
	msgNotOperator      = "This section is for operators only."
	msgAdminPanel       = "Operator panel:"
	msgAskUserID        = "Send the numeric user ID:"
	msgBadUserID        = "That does not look like a user ID. Send a number:"
	msgAskBroadcast     = "Send the message to broadcast to all users:"
	msgBroadcastRun     = "Broadcast started. You will get a summary when it finishes."
	msgAskServiceDel    = "Send the ID of the service to delete:"
	msgAskServiceToggle = "Send the ID of the service to switch on or off:"
	msgBadServiceID     = "That does not look like a service ID. Send a number:"
	msgAskReason        = "Send the rejection reason:"
	msgReasonEmpty      = "A reason is required. Send a short explanation:"

	msgAskService = "Send the new service, one field per line:\n" +
		"name\ndescription\nprice USD\nprice BTC\nprice Stars\nprice EUR\nprice UAH\n" +
		"Use \"-\" for a price to skip that currency."
	msgBadService = "Could not parse that. Seven lines are expected, prices must be non-negative numbers or \"-\"."
)

func methodLabel(m domain.PaymentMethod) string {
	if m == domain.CurrencyStars {
		return "Stars"
	}
	return strings.ToUpper(string(m))
}

// amount renders a price in its currency's natural precision.
func amount(m domain.PaymentMethod, v float64) string {
	switch m {
	case domain.CurrencyBTC:
		return strconv.FormatFloat(v, 'f', -1, 64) + " BTC"
	case domain.CurrencyStars:
		return strconv.FormatFloat(v, 'f', 0, 64) + " Stars"
	default:
		return fmt.Sprintf("%.2f %s", v, methodLabel(m))
	}
}

func priceList(services []domain.Service) string {
	var b strings.Builder
	b.WriteString("Available services:\n")
	for _, s := range services {
		b.WriteString("\n")
		b.WriteString(s.Name)
		if s.Description != "" {
			b.WriteString(" - ")
			b.WriteString(s.Description)
		}
		b.WriteString("\n")
		for _, m := range s.PaymentMethods() {
			if v, ok := s.Price(m); ok {
				b.WriteString("  ")
				b.WriteString(amount(m, v))
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}

func paymentInstructions(svc *domain.Service, m domain.PaymentMethod, wallet string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Order: %s\n", svc.Name)
	if v, ok := svc.Price(m); ok {
		fmt.Fprintf(&b, "Amount: %s\n", amount(m, v))
	}
	if m.OperatorSettled() {
		b.WriteString("An operator will collect the payment after review.\n")
	} else if wallet != "" {
		fmt.Fprintf(&b, "Pay to: %s\n", wallet)
	}
	b.WriteString("\n")
	b.WriteString(msgNeedProof)
	return b.String()
}

func orderLine(o domain.Order) string {
	line := fmt.Sprintf("#%d %s, %s, %s", o.ID, o.ServiceName, amount(o.Method, o.PricePaid), o.Status)
	if o.Comment != nil && *o.Comment != "" {
		line += " (" + *o.Comment + ")"
	}
	return line
}

func orderListing(title string, orders []domain.Order) string {
	if len(orders) == 0 {
		return title + "\nNothing here yet."
	}
	var b strings.Builder
	b.WriteString(title)
	for _, o := range orders {
		b.WriteString("\n")
		b.WriteString(orderLine(o))
	}
	return b.String()
}

func userListing(users []domain.User) string {
	if len(users) == 0 {
		return "No users yet."
	}
	var b strings.Builder
	b.WriteString("Users:")
	for _, u := range users {
		fmt.Fprintf(&b, "\n%d %s", u.ID, u.DisplayName())
		if u.Username != nil && *u.Username != "" {
			fmt.Fprintf(&b, " (@%s)", *u.Username)
		}
		if u.Status == domain.UserBanned {
			b.WriteString(" [banned]")
		}
	}
	return b.String()
}
