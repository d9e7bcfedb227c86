package notify

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/saliheu/mahkeme-randevu/internal/model"
)

// Routing keys consumed by the delivery workers (email/SMS senders).
const (
	keyReminder     = "appointment.reminder"
	keyStatusChange = "appointment.status"
	keyCourtSummary = "court.summary"
)

// AMQPNotifier publishes notification events to a topic exchange. The
// actual email/SMS delivery lives in a separate consumer service.
type AMQPNotifier struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func NewAMQPNotifier(url, exchange string) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &AMQPNotifier{conn: conn, ch: ch, exchange: exchange}, nil
}

func (n *AMQPNotifier) SendAppointmentReminder(ctx context.Context, to Recipient, appt AppointmentSummary) error {
	return n.publish(ctx, keyReminder, map[string]any{
		"kind":      "reminder",
		"recipient": to,
		"summary":   appt,
	})
}

func (n *AMQPNotifier) SendStatusChangeNotice(ctx context.Context, to Recipient, appt AppointmentSummary, newStatus model.AppointmentStatus) error {
	return n.publish(ctx, keyStatusChange, map[string]any{
		"kind":       "status_change",
		"recipient":  to,
		"summary":    appt,
		"new_status": newStatus,
	})
}

func (n *AMQPNotifier) SendDailyCourtSummary(ctx context.Context, courtName, courtEmail, date string, appts []AppointmentSummary) error {
	return n.publish(ctx, keyCourtSummary, map[string]any{
		"kind":         "daily_summary",
		"court_name":   courtName,
		"court_email":  courtEmail,
		"date":         date,
		"appointments": appts,
	})
}

func (n *AMQPNotifier) publish(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return n.ch.PublishWithContext(ctx, n.exchange, key, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        b,
	})
}

func (n *AMQPNotifier) Close() error {
	if n.ch != nil {
		_ = n.ch.Close()
	}
	if n.conn != nil {
		return n.conn.Close()
	}
	return nil
}
