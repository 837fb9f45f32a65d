// Package events публикует события учёта скачиваний в RabbitMQ.
package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/magabrotheeeer/gifshop/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/gifshop/internal/models"
)

// RoutingKeyDownloadRecorded ключ маршрутизации учтённого скачивания.
const RoutingKeyDownloadRecorded = "download.recorded"

// Publisher публикует DownloadEvent в exchange.
// amqp.Channel не потокобезопасен для публикации, поэтому вызовы сериализуются.
type Publisher struct {
	mu       sync.Mutex
	ch       rabbitmq.Channel
	exchange string
}

// NewPublisher создаёт Publisher поверх открытого канала.
func NewPublisher(ch rabbitmq.Channel, exchange string) *Publisher {
	return &Publisher{ch: ch, exchange: exchange}
}

// PublishDownload публикует событие о скачивании.
func (p *Publisher) PublishDownload(ctx context.Context, event models.DownloadEvent) error {
	const op = "events.PublishDownload"
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := rabbitmq.PublishMessage(p.ch, p.exchange, RoutingKeyDownloadRecorded, event); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Noop отбрасывает события. Используется, когда RabbitMQ не настроен.
type Noop struct{}

// PublishDownload ничего не делает.
func (Noop) PublishDownload(context.Context, models.DownloadEvent) error { return nil }
