package services

import (
	"context"
	"fmt"

	"github.com/gitshopapp/storefront/internal/email"
	"github.com/gitshopapp/storefront/internal/models"
)

type OrderEmailSender interface {
	SendOrderConfirmation(ctx context.Context, order *models.Order) error
	SendOrderCancelled(ctx context.Context, order *models.Order) error
}

type StoreOrderEmailSender struct {
	provider  email.Provider
	renderer  *email.Renderer
	storeName string
	storeURL  string
}

func NewStoreOrderEmailSender(provider email.Provider, storeName, storeURL string) (*StoreOrderEmailSender, error) {
	if provider == nil {
		return nil, fmt.Errorf("email provider is required")
	}

	renderer, err := email.NewRenderer()
	if err != nil {
		return nil, err
	}

	return &StoreOrderEmailSender{
		provider:  provider,
		renderer:  renderer,
		storeName: storeName,
		storeURL:  storeURL,
	}, nil
}

func (s *StoreOrderEmailSender) SendOrderConfirmation(ctx context.Context, order *models.Order) error {
	return s.send(ctx, email.TemplateOrderConfirmation, order)
}

func (s *StoreOrderEmailSender) SendOrderCancelled(ctx context.Context, order *models.Order) error {
	return s.send(ctx, email.TemplateOrderCancelled, order)
}

func (s *StoreOrderEmailSender) send(ctx context.Context, templateName string, order *models.Order) error {
	if order == nil {
		return fmt.Errorf("order is required")
	}
	if order.Email == "" {
		return fmt.Errorf("order %s has no email address", order.ID)
	}

	message, err := s.renderer.Render(templateName, email.NewOrderInfo(order, s.storeName, s.storeURL))
	if err != nil {
		return err
	}

	if err := s.provider.SendEmail(ctx, message); err != nil {
		return fmt.Errorf("failed to send %s email: %w", templateName, err)
	}
	return nil
}

type noopOrderEmailSender struct{}

func (noopOrderEmailSender) SendOrderConfirmation(context.Context, *models.Order) error {
	return nil
}

func (noopOrderEmailSender) SendOrderCancelled(context.Context, *models.Order) error {
	return nil
}
