package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
)

// TelegramService sends operational notifications to the admin chat.
// All sends are best effort; a delivery failure never fails the request
// that triggered it.
type TelegramService struct {
	botToken    string
	adminChatID string
}

// NewTelegramService creates a new TelegramService.
func NewTelegramService(botToken, adminChatID string) *TelegramService {
	return &TelegramService{
		botToken:    botToken,
		adminChatID: adminChatID,
	}
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage sends a message to the specified chat.
func (s *TelegramService) SendMessage(chatID, text string) error {
	if s.botToken == "" {
		log.Println("[Telegram] Bot token not configured")
		return nil
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", s.botToken)

	msg := telegramMessage{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "HTML",
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("[Telegram] Failed to send message: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[Telegram] Unexpected status: %d", resp.StatusCode)
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}

	return nil
}

// SendToAdmin sends a message to the admin chat.
func (s *TelegramService) SendToAdmin(text string) error {
	if s.adminChatID == "" {
		log.Println("[Telegram] Admin chat ID not configured")
		return nil
	}
	return s.SendMessage(s.adminChatID, text)
}

// OrderNotification carries order data for the new-order message.
type OrderNotification struct {
	OrderNumber string
	Items       []OrderItemNotification
	TotalAmount float64
	Currency    string
	UserName    string
	UserEmail   string
}

// OrderItemNotification is one line of the new-order message.
type OrderItemNotification struct {
	Name     string
	Seller   string
	Quantity int
	Price    float64
}

// NotifyNewOrder announces a freshly placed order in the admin chat.
func (s *TelegramService) NotifyNewOrder(order OrderNotification) error {
	var b strings.Builder
	fmt.Fprintf(&b, "🛒 <b>New order %s</b>\n", order.OrderNumber)
	fmt.Fprintf(&b, "Customer: %s (%s)\n\n", order.UserName, order.UserEmail)
	for _, item := range order.Items {
		fmt.Fprintf(&b, "• %s x%d: %.2f %s", item.Name, item.Quantity, item.Price, order.Currency)
		if item.Seller != "" {
			fmt.Fprintf(&b, " (%s)", item.Seller)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nTotal: <b>%.2f %s</b>", order.TotalAmount, order.Currency)
	return s.SendToAdmin(b.String())
}

// NotifyReturnRequest announces a new return request.
func (s *TelegramService) NotifyReturnRequest(orderNumber, productName, reason string) error {
	text := fmt.Sprintf("↩️ <b>Return requested</b> on order %s\nItem: %s\nReason: %s",
		orderNumber, productName, reason)
	return s.SendToAdmin(text)
}

// NotifyReturnProcessed announces a return decision.
func (s *TelegramService) NotifyReturnProcessed(orderNumber, productName string, approved bool, notes string) error {
	outcome := "rejected"
	if approved {
		outcome = "approved"
	}
	text := fmt.Sprintf("↩️ <b>Return %s</b> on order %s\nItem: %s\nNotes: %s",
		outcome, orderNumber, productName, notes)
	return s.SendToAdmin(text)
}
