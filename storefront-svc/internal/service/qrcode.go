package service

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"
)

const qrSize = 256

type DefaultQRGenerator struct{}

func (g DefaultQRGenerator) Generate(payload string) ([]byte, error) {
	return qrcode.Encode(payload, qrcode.Medium, qrSize)
}

// OrderReceiptURL is what an order receipt QR code points to.
func OrderReceiptURL(baseURL string, orderNumber int) string {
	return fmt.Sprintf("%s/order-history.html?order=%d", strings.TrimRight(baseURL, "/"), orderNumber)
}

func BookingReceiptURL(baseURL, code string) string {
	return fmt.Sprintf("%s/booking.html?code=%s", strings.TrimRight(baseURL, "/"), url.QueryEscape(code))
}
