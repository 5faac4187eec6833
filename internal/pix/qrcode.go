package pix

import (
	"net/url"
	"strings"
)

const qrEndpoint = "https://api.qrserver.com/v1/create-qr-code/"

// QRCodeURL devolve a URL da imagem QR para a chave PIX; vazio quando não há chave.
func QRCodeURL(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	q := url.Values{}
	q.Set("size", "200x200")
	q.Set("data", key)
	return qrEndpoint + "?" + q.Encode()
}
