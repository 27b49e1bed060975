package payment

import (
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const qrImageSize = 256

// QRCodePNG renders the copy-paste PIX code as a base64 PNG, used when the
// gateway response carries no QR payload of its own.
func QRCodePNG(pixCode string) (string, error) {
	if pixCode == "" {
		return "", fmt.Errorf("empty pix code")
	}

	code, err := qrcode.New(pixCode, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("create qr code: %w", err)
	}

	png, err := code.PNG(qrImageSize)
	if err != nil {
		return "", fmt.Errorf("render qr png: %w", err)
	}

	return base64.StdEncoding.EncodeToString(png), nil
}
