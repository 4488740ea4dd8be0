package mail

import (
	"context"
	"strings"

	"github.com/hiddentreasuresnetwork/platform/internal/pkg/billing"
)

// BillingNotifier emails subscribers about billing events.
type BillingNotifier struct {
	mailer    *Mailer
	manageURL string
}

var _ billing.Notifier = (*BillingNotifier)(nil)

func NewBillingNotifier(m *Mailer) *BillingNotifier {
	return &BillingNotifier{mailer: m, manageURL: m.Config().AppURL + "/dashboard"}
}

func (n *BillingNotifier) PaymentFailed(ctx context.Context, notice billing.PaymentFailedNotice) error {
	_, err := n.mailer.SendTemplate(ctx, Message{
		To:      notice.Email,
		Subject: "Action needed: your Hidden Treasures Network payment failed",
	}, TemplatePaymentFailed, map[string]interface{}{
		"tier":      tierLabel(notice.Tier),
		"amountDue": notice.AmountDue,
		"currency":  strings.ToUpper(notice.Currency),
		"invoiceId": notice.InvoiceID,
		"manageUrl": n.manageURL,
	})
	return err
}

func (n *BillingNotifier) TrialEnding(ctx context.Context, notice billing.TrialEndingNotice) error {
	_, err := n.mailer.SendTemplate(ctx, Message{
		To:      notice.Email,
		Subject: "Your Hidden Treasures Network trial ends soon",
	}, TemplateTrialEnding, map[string]interface{}{
		"tier":      tierLabel(notice.Tier),
		"trialEnd":  notice.TrialEnd,
		"manageUrl": n.manageURL,
	})
	return err
}

// tierLabel turns a tier id like flight_lead into "Flight Lead".
func tierLabel(id string) string {
	words := strings.Fields(strings.ReplaceAll(id, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
